package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"code.superseriousbusiness.org/httpsig"
	"github.com/opencreds/boostnet/internal/utils"
	"github.com/rs/zerolog/log"
)

type key struct{}

// GetCaller returns the profile id the request signature was verified
// against.
func GetCaller(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}

// profileFromKeyId extracts the profile id from a signature keyId, which
// is either the bare id or the profile's URI, optionally with a fragment.
func profileFromKeyId(keyId string) string {
	u, err := url.Parse(keyId)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	s := strings.TrimRight(u.String(), "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// SignatureMiddleware authenticates requests by their HTTP signature. The
// keyId names the calling profile; the signature must verify against the
// public key that profile registered with. Unverified requests pass
// through without a caller, the route decides if that is acceptable.
func SignatureMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verifier, err := httpsig.NewVerifier(r)
			if err != nil {
				h.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			profileID := profileFromKeyId(verifier.KeyId())
			profile, err := handler.service.GetProfile(ctx, profileID)
			if err != nil {
				log.Debug().Str("keyId", verifier.KeyId()).Msg("signature from unknown profile")
				h.ServeHTTP(w, r)
				return
			}
			pub, err := utils.ParsePublicKeyPem(profile.PublicKeyPem)
			if err != nil {
				log.Error().Err(err).Str("profile", profileID).Msg("stored public key unparseable")
				h.ServeHTTP(w, r)
				return
			}
			if err := verifier.Verify(pub, httpsig.RSA_SHA256); err != nil {
				log.Debug().Err(err).Str("profile", profileID).Msg("signature verification failed")
				h.ServeHTTP(w, r)
				return
			}

			r = r.WithContext(context.WithValue(ctx, key{}, profile.ProfileID))
			h.ServeHTTP(w, r)
		})
	}
}

// AuthenticatedMiddleware rejects requests that did not carry a valid
// signature.
func AuthenticatedMiddleware() func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetCaller(r.Context()); !ok {
				writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "request signature required")
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}
