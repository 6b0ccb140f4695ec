package session

import (
	"time"

	"github.com/wsgateway/workspace-gateway/internal/tokenstore"
)

// State is the derived lifecycle position of the stored session. It is
// computed from the record and the clock on every read, never persisted.
type State string

const (
	// StateNoSession: no record stored.
	StateNoSession State = "no_session"
	// StateActive: access token valid (or no expiry recorded).
	StateActive State = "active"
	// StateAccessExpired: access token stale but renewable via refresh token.
	StateAccessExpired State = "access_expired"
	// StateSessionExpired: the hard application boundary passed, or the
	// record cannot be renewed because it carries no refresh token. Either
	// way the only exit is a full re-authorization.
	StateSessionExpired State = "session_expired"
)

// StateOf derives the session state for rec at the given instant.
func StateOf(rec *tokenstore.Record, now time.Time) State {
	if rec == nil {
		return StateNoSession
	}
	if rec.SessionExpired(now) {
		return StateSessionExpired
	}
	if !rec.AccessTokenExpired(now) {
		return StateActive
	}
	if rec.RefreshToken == "" {
		return StateSessionExpired
	}
	return StateAccessExpired
}
