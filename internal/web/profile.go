package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

type profileBody struct {
	ProfileID      string `json:"profileId"`
	DID            string `json:"did,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	PublicKeyPem   string `json:"publicKeyPem,omitempty"`
	NotifyEndpoint string `json:"notifyEndpoint,omitempty"`
	Created        int64  `json:"created,omitempty"`
}

func profileView(p domain.Profile) profileBody {
	return profileBody{
		ProfileID:      p.ProfileID,
		DID:            p.DID,
		DisplayName:    p.DisplayName,
		PublicKeyPem:   p.PublicKeyPem,
		NotifyEndpoint: p.NotifyEndpoint,
		Created:        p.Created,
	}
}

func profileViews(profiles []domain.Profile) []profileBody {
	views := make([]profileBody, len(profiles))
	for i, p := range profiles {
		views[i] = profileView(p)
	}
	return views
}

func CreateProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in profileBody
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		err := handler.service.CreateProfile(r.Context(), domain.Profile{
			ProfileID:      in.ProfileID,
			DID:            in.DID,
			DisplayName:    in.DisplayName,
			PublicKeyPem:   in.PublicKeyPem,
			NotifyEndpoint: in.NotifyEndpoint,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func GetProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := handler.service.GetProfile(r.Context(), chi.URLParam(r, "profileId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profileView(profile))
	}
}

func RegisterSigningAuthority(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in struct {
			Endpoint string `json:"endpoint"`
			Name     string `json:"name"`
		}
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		if err := handler.service.RegisterSigningAuthority(r.Context(), caller, in.Endpoint, in.Name); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
