package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

type claimHookBody struct {
	ID          string                    `json:"id,omitempty"`
	Type        domain.HookType           `json:"type"`
	ClaimURI    string                    `json:"claimUri"`
	TargetURI   string                    `json:"targetUri"`
	Permissions *domain.PermissionsUpdate `json:"permissions,omitempty"`
	Created     int64                     `json:"created,omitempty"`
}

func CreateClaimHook(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in claimHookBody
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		id, err := handler.service.CreateClaimHook(r.Context(), caller, service.ClaimHook{
			Type:        in.Type,
			ClaimURI:    in.ClaimURI,
			TargetURI:   in.TargetURI,
			Permissions: in.Permissions,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func GetClaimHooks(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		hooks, err := handler.service.GetClaimHooksForBoost(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		views := make([]claimHookBody, len(hooks))
		for i, h := range hooks {
			views[i] = claimHookBody{
				ID:          h.ID,
				Type:        h.Type,
				ClaimURI:    h.ClaimURI,
				TargetURI:   h.TargetURI,
				Permissions: h.Permissions,
				Created:     h.Created,
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"hooks": views})
	}
}

func DeleteClaimHook(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if err := handler.service.DeleteClaimHook(r.Context(), caller, chi.URLParam(r, "hookId")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GenerateClaimLink(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in struct {
			Challenge  string `json:"challenge"`
			Endpoint   string `json:"endpoint"`
			Name       string `json:"name"`
			TTLSeconds *int64 `json:"ttlSeconds"`
			TotalUses  *int64 `json:"totalUses"`
		}
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		link, err := handler.service.GenerateClaimLink(r.Context(), caller, chi.URLParam(r, "id"), in.Challenge,
			service.SigningAuthorityRef{Endpoint: in.Endpoint, Name: in.Name},
			service.ClaimLinkOptions{TTLSeconds: in.TTLSeconds, TotalUses: in.TotalUses})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"boostUri":   link.BoostURI,
			"challenge":  link.Challenge,
			"ttlSeconds": link.TTLSeconds,
			"remaining":  link.Remaining,
		})
	}
}

func ClaimBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in struct {
			Challenge string `json:"challenge"`
		}
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		uri, err := handler.service.ClaimBoostWithLink(r.Context(), caller, chi.URLParam(r, "id"), in.Challenge)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"uri": uri})
	}
}

func AcceptCredential(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if err := handler.service.AcceptCredential(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
