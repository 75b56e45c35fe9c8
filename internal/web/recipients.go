package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opencreds/boostnet/internal/service"
)

type recipientBody struct {
	To           profileBody `json:"to"`
	From         string      `json:"from"`
	CredentialID string      `json:"credentialId"`
	Sent         int64       `json:"sent"`
	Received     int64       `json:"received,omitempty"`
}

func GetBoostRecipients(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		query, err := queryParam(r, "profileQuery")
		if err != nil {
			writeError(w, err)
			return
		}

		recipients, cursor, err := handler.service.GetBoostRecipients(r.Context(), caller, chi.URLParam(r, "id"),
			boolParam(r, "includeUnaccepted"), query, intParam(r, "limit"), r.URL.Query().Get("cursor"))
		if err != nil {
			writeError(w, err)
			return
		}

		views := make([]recipientBody, len(recipients))
		for i, rec := range recipients {
			views[i] = recipientBody{
				To:           profileView(rec.To),
				From:         rec.From,
				CredentialID: rec.CredentialID,
				Sent:         rec.Sent,
				Received:     rec.Received,
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"recipients": views,
			"cursor":     cursor,
		})
	}
}

func GetBoostRecipientCount(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		count, err := handler.service.GetBoostRecipientCount(r.Context(), caller, chi.URLParam(r, "id"),
			boolParam(r, "includeUnaccepted"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func recipientOptions(r *http.Request) (service.RecipientOptions, error) {
	boostQuery, err := queryParam(r, "boostQuery")
	if err != nil {
		return service.RecipientOptions{}, err
	}
	profileQuery, err := queryParam(r, "profileQuery")
	if err != nil {
		return service.RecipientOptions{}, err
	}
	return service.RecipientOptions{
		Generations:       int64Param(r, "generations", -1),
		IncludeUnaccepted: boolParam(r, "includeUnaccepted"),
		BoostQuery:        boostQuery,
		ProfileQuery:      profileQuery,
	}, nil
}

func GetConnectedRecipients(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		options, err := recipientOptions(r)
		if err != nil {
			writeError(w, err)
			return
		}

		recipients, err := handler.service.GetConnectedBoostRecipients(r.Context(), caller, chi.URLParam(r, "id"), options)
		if err != nil {
			writeError(w, err)
			return
		}

		type connectedBody struct {
			To       profileBody `json:"to"`
			BoostIDs []string    `json:"boostIds"`
		}
		views := make([]connectedBody, len(recipients))
		for i, rec := range recipients {
			views[i] = connectedBody{To: profileView(rec.To), BoostIDs: rec.BoostIDs}
		}
		writeJSON(w, http.StatusOK, map[string]any{"recipients": views})
	}
}

func CountConnectedRecipients(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		options, err := recipientOptions(r)
		if err != nil {
			writeError(w, err)
			return
		}

		count, err := handler.service.CountBoostRecipientsWithChildren(r.Context(), caller, chi.URLParam(r, "id"), options)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func RevokeBoostRecipient(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := GetCaller(r.Context())
		removed, err := handler.service.RevokeBoostRecipient(r.Context(), caller,
			chi.URLParam(r, "id"), chi.URLParam(r, "profileId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
	}
}
