package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"
)

var key *rsa.PrivateKey
var algo = httpsig.RSA_SHA256
var ctx = context.Background()

func TestMain(m *testing.M) {
	var err error
	key, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatal().Err(err).Msg("tests setup failure")
		return
	}

	m.Run()
}

func newClient(t *testing.T) *HttpClient {
	t.Helper()
	kId, _ := url.Parse("http://localhost:8080/#main-key")
	c, err := New(&http.Client{}, key, kId)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func verify(t *testing.T, path string, respond func(w http.ResponseWriter, body []byte)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifier, err := httpsig.NewVerifier(r)
		if err != nil {
			t.Error(err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if path != r.URL.Path {
			t.Errorf("expected path %s, got %s", path, r.URL.Path)
		}

		if err = verifier.Verify(&key.PublicKey, algo); err != nil {
			t.Error("signature validation error:", err)
			return
		}
		body, _ := io.ReadAll(r.Body)
		respond(w, body)
	})
}

func TestPost(t *testing.T) {
	client := newClient(t)

	path := "/webhook"
	server := httptest.NewServer(verify(t, path, func(w http.ResponseWriter, body []byte) {
		if string(body) != `{"hello":"world"}` {
			t.Errorf("unexpected request body: %s", body)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	res, err := client.Post(ctx, server.URL+path, []byte(`{"hello":"world"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(res) != "ok" {
		t.Errorf("unexpected response: \"%s\"", res)
	}
}

func TestPostErrorStatus(t *testing.T) {
	client := newClient(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := client.Post(ctx, server.URL, []byte(`{}`)); err == nil {
		t.Error("expected an error for a 403 response")
	}
}

func TestIssueCredential(t *testing.T) {
	client := newClient(t)

	path := "/issue"
	server := httptest.NewServer(verify(t, path, func(w http.ResponseWriter, body []byte) {
		var req issueRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Error(err)
			return
		}
		if string(req.Credential) != `{"type":"cred"}` {
			t.Errorf("unexpected credential: %s", req.Credential)
		}
		json.NewEncoder(w).Encode(issueResponse{Credential: json.RawMessage(`{"type":"cred","proof":{}}`)})
	}))
	defer server.Close()

	signed, err := client.IssueCredential(ctx, server.URL+path, json.RawMessage(`{"type":"cred"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(signed) != `{"type":"cred","proof":{}}` {
		t.Errorf("unexpected signed credential: %s", signed)
	}

	empty := httptest.NewServer(verify(t, path, func(w http.ResponseWriter, body []byte) {
		w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	if _, err := client.IssueCredential(ctx, empty.URL+path, json.RawMessage(`{"type":"cred"}`)); err == nil {
		t.Error("expected an error for a response without a credential")
	}
}
