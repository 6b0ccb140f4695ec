package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/config"
	"github.com/wsgateway/workspace-gateway/internal/util"
)

// LoginHandler redirects the browser to Google's consent screen.
func LoginHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := sessions.AuthorizationURL(r.URL.Query().Get("state"))
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}

// CallbackHandler exchanges the authorization code Google redirects back
// with, persists the session, and reports who just signed in.
func CallbackHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if oauthErr := query.Get("error"); oauthErr != "" {
			writeError(w, http.StatusBadRequest, "google oauth error: "+oauthErr, nil)
			return
		}
		code := query.Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "no authorization code received", nil)
			return
		}

		rec, err := sessions.Exchange(r.Context(), code)
		if err != nil {
			var exchangeErr *session.ExchangeError
			if errors.As(err, &exchangeErr) {
				writeError(w, http.StatusBadRequest, "failed to exchange code for tokens", err)
				return
			}
			writeSessionError(w, err)
			return
		}
		log.Printf("[auth] tokens received, has_refresh_token=%v", rec.RefreshToken != "")

		// Identity is informational here; a resolution failure must not undo
		// a successful exchange.
		var user *session.Identity
		if client, err := sessions.AuthenticatedClient(r.Context()); err == nil {
			if id, err := sessions.Identity(r.Context(), client); err == nil {
				user = id
			} else {
				log.Printf("[auth] identity resolution failed after exchange: %v", err)
			}
		}

		writeJSON(w, http.StatusOK, response{
			Success: true,
			Message: "Authentication successful! Tokens saved.",
			Data: map[string]any{
				"user":   user,
				"scopes": rec.Scopes(),
			},
		})
	}
}

// statusReport is the /api/auth/status payload. The lifecycle booleans are
// part of the contract even when false, so no omitempty on them;
// sessionExpiresAt is null when the record carries no session boundary.
type statusReport struct {
	Authenticated    bool              `json:"authenticated"`
	TokenExpired     bool              `json:"tokenExpired"`
	SessionExpired   bool              `json:"sessionExpired"`
	HasRefreshToken  bool              `json:"hasRefreshToken"`
	SessionExpiresAt *string           `json:"sessionExpiresAt"`
	State            session.State     `json:"state"`
	User             *session.Identity `json:"user,omitempty"`
	Scopes           []string          `json:"scopes,omitempty"`
	Message          string            `json:"message,omitempty"`
}

// StatusHandler reports the derived session state and, when a usable
// session exists, who it belongs to.
func StatusHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := sessions.Record(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}

		if rec == nil {
			writeData(w, statusReport{
				Authenticated: false,
				State:         session.StateNoSession,
				Message:       "Not authenticated. Visit /api/auth/login to authenticate.",
			})
			return
		}

		now := time.Now()
		report := statusReport{
			Authenticated:   true,
			TokenExpired:    rec.AccessTokenExpired(now),
			SessionExpired:  rec.SessionExpired(now),
			HasRefreshToken: rec.RefreshToken != "",
			State:           session.StateOf(rec, now),
			Scopes:          rec.Scopes(),
		}
		if rec.SessionExpiry != 0 {
			expiresAt := time.UnixMilli(rec.SessionExpiry).UTC().Format(time.RFC3339)
			report.SessionExpiresAt = &expiresAt
		}

		// Best effort: a session that cannot produce an identity still
		// reports its lifecycle flags.
		if client, err := sessions.AuthenticatedClient(r.Context()); err == nil {
			if id, err := sessions.Identity(r.Context(), client); err == nil {
				report.User = id
			}
		}

		writeData(w, report)
	}
}

// LogoutHandler revokes the session at Google (best effort) and clears the
// stored record.
func LogoutHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Revoke(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to clear session", err)
			return
		}
		writeMessage(w, http.StatusOK, "Logged out and tokens revoked.", nil)
	}
}

// DebugHandler reports masked configuration and storage reachability to
// diagnose deployment issues. Values are never echoed in full.
func DebugHandler(cfg *config.Config, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storageStatus := "reachable"
		if _, err := sessions.Record(r.Context()); err != nil {
			storageStatus = "error: " + err.Error()
		}

		writeData(w, map[string]any{
			"config": map[string]string{
				"GOOGLE_CLIENT_ID":     util.MaskValue(cfg.OAuth.ClientID, 8),
				"GOOGLE_CLIENT_SECRET": util.MaskValue(cfg.OAuth.ClientSecret, 0),
				"GOOGLE_REDIRECT_URI":  cfg.OAuth.RedirectURL,
				"TOKEN_STORAGE":        cfg.Storage.Backend,
				"TOKEN_STORAGE_KEY":    cfg.Storage.Key,
				"GA4_PROPERTY_ID":      util.MaskValue(cfg.GA4.PropertyID, 4),
			},
			"storage": map[string]string{
				"backend": cfg.Storage.Backend,
				"status":  storageStatus,
			},
		})
	}
}
