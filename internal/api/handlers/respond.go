// Package handlers implements the gateway's REST routes: the auth lifecycle
// endpoints and the Gmail, Calendar, and GA4 pass-through surfaces.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/tokenstore"
)

// response is the JSON envelope every route answers with.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := response{Success: false, Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeSessionError maps a token-lifecycle failure to a status code: the
// restart-authorization family answers 401, storage trouble 500, anything
// else (provider calls) 502.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, session.ErrNoRefreshToken):
		writeError(w, http.StatusUnauthorized, "authentication required", err)
	default:
		var storageErr *tokenstore.StorageError
		if errors.As(err, &storageErr) {
			writeError(w, http.StatusInternalServerError, "token storage unavailable", err)
			return
		}
		writeError(w, http.StatusBadGateway, "google api call failed", err)
	}
}
