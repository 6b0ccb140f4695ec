// Package tokenstore persists the single OAuth credential bundle the gateway
// manages. The backing store is swappable (file, sqlite, memory); every
// backend stores exactly one logical record under a configured storage key.
package tokenstore

import (
	"strings"
	"time"
)

// Record is the persisted credential bundle. Field names mirror the JSON
// shape Google's token endpoint returns, plus the gateway's own
// session_expiry stamp. Timestamps are Unix milliseconds.
type Record struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	ExpiryDate    int64  `json:"expiry_date,omitempty"`
	TokenType     string `json:"token_type,omitempty"`
	Scope         string `json:"scope,omitempty"`
	IDToken       string `json:"id_token,omitempty"`
	SessionExpiry int64  `json:"session_expiry,omitempty"`
}

// AccessTokenExpired reports whether the access token has passed its expiry.
// A record without an expiry date is treated as still valid; Google rejects
// the call if the token is actually dead.
func (r *Record) AccessTokenExpired(now time.Time) bool {
	return r.ExpiryDate != 0 && r.ExpiryDate < now.UnixMilli()
}

// SessionExpired reports whether the application-level session boundary has
// passed. Unlike access-token expiry this is terminal: the user must redo
// the full consent flow.
func (r *Record) SessionExpired(now time.Time) bool {
	return r.SessionExpiry != 0 && r.SessionExpiry < now.UnixMilli()
}

// Scopes splits the space-separated scope string into a slice.
// Returns nil when no scope was recorded.
func (r *Record) Scopes() []string {
	if r.Scope == "" {
		return nil
	}
	return strings.Fields(r.Scope)
}

// Clone returns a copy so callers can mutate without aliasing stored state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
