package session

import "errors"

// Sentinel errors for the "restart the authorization flow" family. They are
// distinguished only so callers can produce precise diagnostics; recovery is
// the same for all three (send the user back through /api/auth/login).
var (
	// ErrNotAuthenticated means no credential record exists.
	ErrNotAuthenticated = errors.New("session: not authenticated, authorize first")

	// ErrSessionExpired means the application session boundary has passed.
	// Refreshing cannot recover this; a full re-consent is required.
	ErrSessionExpired = errors.New("session: session expired, re-authorization required")

	// ErrNoRefreshToken means the record cannot be renewed once the access
	// token dies. Google issues the refresh token only on the first consent,
	// so a record missing it is a dead end.
	ErrNoRefreshToken = errors.New("session: no refresh token available, re-authorization required")

	// ErrNoIDToken means the record carries no id_token to verify; identity
	// resolution falls through to the userinfo endpoint.
	ErrNoIDToken = errors.New("session: record has no id_token")
)

// ExchangeError wraps a provider rejection of an authorization code
// (expired, already used, redirect URI mismatch, revoked client).
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string { return "session: code exchange failed: " + e.Err.Error() }
func (e *ExchangeError) Unwrap() error { return e.Err }

// IdentityError means both identity paths failed: the id_token did not
// verify and the userinfo endpoint call also failed. Callers that tolerate
// a missing identity may proceed with a nil user.
type IdentityError struct {
	VerifyErr   error
	UserInfoErr error
}

func (e *IdentityError) Error() string {
	return "session: identity resolution failed: verify: " + e.VerifyErr.Error() +
		"; userinfo: " + e.UserInfoErr.Error()
}

func (e *IdentityError) Unwrap() error { return e.UserInfoErr }
