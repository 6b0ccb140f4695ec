package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/google/gmail"
)

func gmailClient(r *http.Request, sessions *session.Manager) (*gmail.Client, error) {
	client, err := sessions.AuthenticatedClient(r.Context())
	if err != nil {
		return nil, err
	}
	return gmail.NewClient(r.Context(), client.TokenSource())
}

// GmailListHandler serves GET /api/gmail: mailbox listing, or the profile
// summary when ?profile=true.
func GmailListHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := gmailClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		query := r.URL.Query()
		if query.Get("profile") == "true" {
			profile, err := svc.GetProfile(r.Context())
			if err != nil {
				writeSessionError(w, err)
				return
			}
			writeData(w, profile)
			return
		}

		params := gmail.ListParams{
			Query:     query.Get("q"),
			PageToken: query.Get("pageToken"),
		}
		if v := query.Get("maxResults"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid maxResults", err)
				return
			}
			params.MaxResults = n
		}
		if labels := query.Get("labelIds"); labels != "" {
			params.LabelIDs = strings.Split(labels, ",")
		}

		list, err := svc.ListMessages(r.Context(), params)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, list)
	}
}

// GmailSendHandler serves POST /api/gmail: send an email.
func GmailSendHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params gmail.SendParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := params.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		svc, err := gmailClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		sent, err := svc.Send(r.Context(), params)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Email sent successfully", sent)
	}
}

// GmailGetHandler serves GET /api/gmail/{id}: one message, or the whole
// thread when ?type=thread.
func GmailGetHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		svc, err := gmailClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		if r.URL.Query().Get("type") == "thread" {
			messages, err := svc.GetThread(r.Context(), id)
			if err != nil {
				writeSessionError(w, err)
				return
			}
			writeData(w, messages)
			return
		}

		msg, err := svc.GetMessage(r.Context(), id)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, msg)
	}
}

// GmailModifyHandler serves PATCH /api/gmail/{id}: label mutations.
// Currently only {"action":"markRead"}.
func GmailModifyHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if body.Action != "markRead" {
			writeError(w, http.StatusBadRequest, "unknown action: "+body.Action, nil)
			return
		}

		svc, err := gmailClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), id); err != nil {
			writeSessionError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Marked as read", nil)
	}
}
