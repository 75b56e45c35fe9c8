package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

type boostBody struct {
	URI              string              `json:"uri"`
	Status           domain.BoostStatus  `json:"status"`
	Name             string              `json:"name"`
	Category         string              `json:"category,omitempty"`
	Type             string              `json:"type,omitempty"`
	Credential       json.RawMessage     `json:"credential,omitempty"`
	ClaimPermissions *domain.Permissions `json:"claimPermissions,omitempty"`
	CreatedBy        string              `json:"createdBy"`
	Created          int64               `json:"created"`
}

func boostView(b service.Boost) boostBody {
	return boostBody{
		URI:              b.URI,
		Status:           b.Status,
		Name:             b.Name,
		Category:         b.Category,
		Type:             b.Type,
		Credential:       b.Credential,
		ClaimPermissions: b.ClaimPermissions,
		CreatedBy:        b.CreatedBy,
		Created:          b.Created,
	}
}

func boostViews(boosts []service.Boost) []boostBody {
	views := make([]boostBody, len(boosts))
	for i, b := range boosts {
		views[i] = boostView(b)
	}
	return views
}

type boostInput struct {
	Name             string              `json:"name"`
	Category         string              `json:"category"`
	Type             string              `json:"type"`
	Status           domain.BoostStatus  `json:"status"`
	Credential       json.RawMessage     `json:"credential"`
	ClaimPermissions *domain.Permissions `json:"claimPermissions"`
}

func (in boostInput) toService() service.BoostInput {
	return service.BoostInput{
		Credential:       in.Credential,
		Status:           in.Status,
		Name:             in.Name,
		Category:         in.Category,
		Type:             in.Type,
		ClaimPermissions: in.ClaimPermissions,
	}
}

func CreateBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in boostInput
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		uri, err := handler.service.CreateBoost(r.Context(), caller, in.toService())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"uri": uri})
	}
}

func CreateChildBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in boostInput
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		uri, err := handler.service.CreateChildBoost(r.Context(), caller, chi.URLParam(r, "id"), in.toService())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"uri": uri})
	}
}

func GetBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		boost, err := handler.service.GetBoost(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, boostView(boost))
	}
}

func UpdateBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in struct {
			Name       *string             `json:"name"`
			Category   *string             `json:"category"`
			Type       *string             `json:"type"`
			Credential json.RawMessage     `json:"credential"`
			Status     *domain.BoostStatus `json:"status"`
		}
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		err := handler.service.UpdateBoost(r.Context(), caller, chi.URLParam(r, "id"), service.BoostUpdate{
			Name:       in.Name,
			Category:   in.Category,
			Type:       in.Type,
			Credential: in.Credential,
			Status:     in.Status,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		if err := handler.service.DeleteBoost(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListBoosts(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		query, err := queryParam(r, "query")
		if err != nil {
			writeError(w, err)
			return
		}

		boosts, cursor, err := handler.service.GetPaginatedBoosts(r.Context(), caller, query,
			intParam(r, "limit"), r.URL.Query().Get("cursor"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"boosts": boostViews(boosts),
			"cursor": cursor,
		})
	}
}

func CountBoosts(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		query, err := queryParam(r, "query")
		if err != nil {
			writeError(w, err)
			return
		}

		count, err := handler.service.CountBoosts(r.Context(), caller, query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func MakeBoostParent(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		err := handler.service.MakeBoostParent(r.Context(), caller, chi.URLParam(r, "parentId"), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveBoostParent(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		err := handler.service.RemoveBoostParent(r.Context(), caller, chi.URLParam(r, "parentId"), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listRelatives(handler *Handler, down bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		query, err := queryParam(r, "query")
		if err != nil {
			writeError(w, err)
			return
		}

		var boosts []service.Boost
		var cursor string
		generations := int64Param(r, "generations", 1)
		if down {
			boosts, cursor, err = handler.service.GetBoostChildren(r.Context(), caller, chi.URLParam(r, "id"),
				generations, query, intParam(r, "limit"), r.URL.Query().Get("cursor"))
		} else {
			boosts, cursor, err = handler.service.GetBoostParents(r.Context(), caller, chi.URLParam(r, "id"),
				generations, query, intParam(r, "limit"), r.URL.Query().Get("cursor"))
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"boosts": boostViews(boosts),
			"cursor": cursor,
		})
	}
}

func countRelatives(handler *Handler, down bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		query, err := queryParam(r, "query")
		if err != nil {
			writeError(w, err)
			return
		}

		var count int
		generations := int64Param(r, "generations", 1)
		if down {
			count, err = handler.service.CountBoostChildren(r.Context(), caller, chi.URLParam(r, "id"), generations, query)
		} else {
			count, err = handler.service.CountBoostParents(r.Context(), caller, chi.URLParam(r, "id"), generations, query)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func SendBoost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var in struct {
			ProfileID  string          `json:"profileId"`
			Credential json.RawMessage `json:"credential"`
		}
		if err := decode(w, r, &in); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		uri, err := handler.service.SendBoost(r.Context(), caller, chi.URLParam(r, "id"), in.ProfileID, in.Credential)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"uri": uri})
	}
}
