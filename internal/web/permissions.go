package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

func GetBoostPermissions(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		perms, err := handler.service.GetBoostPermissions(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, perms)
	}
}

func GetOtherBoostPermissions(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		perms, err := handler.service.GetOtherBoostPermissions(r.Context(), caller,
			chi.URLParam(r, "id"), chi.URLParam(r, "profileId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, perms)
	}
}

func UpdateBoostPermissions(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var updates domain.PermissionsUpdate
		if err := decode(w, r, &updates); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		if err := handler.service.UpdateBoostPermissions(r.Context(), caller, chi.URLParam(r, "id"), updates); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateOtherBoostPermissions(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		var updates domain.PermissionsUpdate
		if err := decode(w, r, &updates); err != nil {
			writeError(w, service.ErrBadRequest)
			return
		}

		err := handler.service.UpdateOtherBoostPermissions(r.Context(), caller,
			chi.URLParam(r, "id"), chi.URLParam(r, "profileId"), updates)
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetBoostAdmins(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		admins, err := handler.service.GetBoostAdmins(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"admins": profileViews(admins)})
	}
}

func AddBoostAdmin(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		err := handler.service.AddBoostAdmin(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "profileId"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveBoostAdmin(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		err := handler.service.RemoveBoostAdmin(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "profileId"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
