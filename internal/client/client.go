package client

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"
)

var prefs = []httpsig.Algorithm{httpsig.RSA_SHA256}
var postHeaders = []string{httpsig.RequestTarget, "date", "digest"}

// HttpClient posts signed requests on behalf of the instance: credential
// issuance calls to signing authorities and webhook notifications to
// profiles. Every request carries an HTTP signature made with the instance
// key, so receivers can verify who is calling.
type HttpClient struct {
	client          *http.Client
	key             crypto.PrivateKey
	pubKeyId        *url.URL
	postSigner      httpsig.Signer
	postSignerMutex sync.Mutex
}

func New(client *http.Client, key crypto.PrivateKey, keyId *url.URL) (*HttpClient, error) {
	postSigner, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, postHeaders, httpsig.Signature, 3600)
	if err != nil {
		return nil, err
	}

	return &HttpClient{
		client:     client,
		key:        key,
		pubKeyId:   keyId,
		postSigner: postSigner,
	}, nil
}

// Post sends a signed JSON POST and returns the response body.
func (c *HttpClient) Post(ctx context.Context, to string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, to, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.postSignerMutex.Lock()
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	err = c.postSigner.SignRequest(c.key, c.pubKeyId.String(), req, body)
	c.postSignerMutex.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("error while signing request")
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if res.StatusCode >= http.StatusBadRequest {
		log.Error().Int("code", res.StatusCode).Bytes("response body", content).Msg("delivery error")
		return nil, fmt.Errorf("error %d: %s", res.StatusCode, res.Status)
	}
	return content, err
}

type issueRequest struct {
	Credential json.RawMessage `json:"credential"`
}

type issueResponse struct {
	Credential json.RawMessage `json:"credential"`
}

// IssueCredential asks a signing authority to sign the given credential
// and returns the signed form.
func (c *HttpClient) IssueCredential(ctx context.Context, endpoint string, unsigned json.RawMessage) (json.RawMessage, error) {
	body, err := json.Marshal(issueRequest{Credential: unsigned})
	if err != nil {
		return nil, err
	}

	content, err := c.Post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	var res issueResponse
	if err = json.Unmarshal(content, &res); err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("response body unmarshaling error")
		return nil, err
	}
	if len(res.Credential) == 0 {
		return nil, fmt.Errorf("signing authority %s returned no credential", endpoint)
	}
	return res.Credential, nil
}
