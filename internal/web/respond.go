package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
	"github.com/rs/zerolog/log"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding error")
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeErrorCode(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrConflict):
		writeErrorCode(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrBadRequest):
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, service.ErrPreconditionFailed):
		writeErrorCode(w, http.StatusPreconditionFailed, "PRECONDITION_FAILED", err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		writeErrorCode(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// Request bodies are small JSON documents; anything bigger is a mistake
// or abuse.
const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// queryParam parses the optional boost or profile query parameter.
func queryParam(r *http.Request, name string) (match.Query, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	q, err := match.ParseQuery([]byte(raw))
	if err != nil {
		return nil, service.ErrBadRequest
	}
	return q, nil
}

func intParam(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func int64Param(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
