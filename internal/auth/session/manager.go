// Package session owns the OAuth token lifecycle: exchanging authorization
// codes, persisting credentials, refreshing stale access tokens while
// preserving the one-time-issued refresh token, and enforcing the
// application-level session boundary on top of Google's own token expiry.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/wsgateway/workspace-gateway/internal/tokenstore"
	"github.com/wsgateway/workspace-gateway/internal/util"
)

// SessionTTL is the application-level session lifetime: three months from
// the code exchange, after which the user must re-consent regardless of
// refresh-token validity.
const SessionTTL = 90 * 24 * time.Hour

// DefaultState is the OAuth state parameter used when the caller supplies
// none.
const DefaultState = "default"

// Credentials is the token set a provider call yields. Zero values mean the
// provider omitted the field (refresh responses normally omit the refresh
// token, for example).
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiryDate   int64 // Unix ms, 0 when the provider gave no expiry
	TokenType    string
	Scope        string
	IDToken      string
}

// Identity is the resolved human identity behind the session.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Provider is the OAuth boundary the manager talks to. The production
// implementation lives in internal/auth/google; tests substitute fakes.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
	Revoke(ctx context.Context, accessToken string) error
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
	UserInfo(ctx context.Context, accessToken string) (*Identity, error)
}

// Manager orchestrates the token lifecycle against one provider and one
// store. It holds configuration, not a live client: each operation builds
// what it needs from the current record.
type Manager struct {
	provider Provider
	store    tokenstore.Store

	// refreshMu serializes the load-refresh-save critical section so two
	// concurrent requests observing a stale token do not both hit the
	// provider's refresh endpoint.
	refreshMu sync.Mutex

	now func() time.Time
}

// NewManager wires a manager from its two collaborators.
func NewManager(provider Provider, store tokenstore.Store) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

// AuthorizationURL builds the consent-screen URL. Pure function of
// configuration; an empty state falls back to DefaultState.
func (m *Manager) AuthorizationURL(state string) string {
	if state == "" {
		state = DefaultState
	}
	return m.provider.AuthCodeURL(state)
}

// Exchange trades a one-time authorization code for a token set, stamps the
// session expiry, and persists the result as a full overwrite. Nothing is
// written when the provider rejects the code.
func (m *Manager) Exchange(ctx context.Context, code string) (*tokenstore.Record, error) {
	creds, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}

	rec := &tokenstore.Record{
		AccessToken:   creds.AccessToken,
		RefreshToken:  creds.RefreshToken,
		ExpiryDate:    creds.ExpiryDate,
		TokenType:     creds.TokenType,
		Scope:         creds.Scope,
		IDToken:       creds.IDToken,
		SessionExpiry: m.now().Add(SessionTTL).UnixMilli(),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	log.Printf("[session] code exchanged, access_token=%s has_refresh_token=%v session_expires=%s",
		util.MaskToken(rec.AccessToken), rec.RefreshToken != "",
		time.UnixMilli(rec.SessionExpiry).Format(time.RFC3339))
	return rec, nil
}

// Client carries the credentials an operation should use. The token source
// is static: refresh is handled eagerly by the manager so the merged record
// can be persisted, not lazily inside the oauth2 transport.
type Client struct {
	rec *tokenstore.Record
}

// Record returns the credential record backing this client.
func (c *Client) Record() *tokenstore.Record { return c.rec }

// TokenSource exposes the access token to Google API service constructors.
func (c *Client) TokenSource() oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken: c.rec.AccessToken,
		TokenType:   c.rec.TokenType,
	}
	if c.rec.ExpiryDate != 0 {
		tok.Expiry = time.UnixMilli(c.rec.ExpiryDate)
	}
	return oauth2.StaticTokenSource(tok)
}

// AuthenticatedClient is the core read path: load the record, enforce the
// session boundary, refresh a stale access token (persisting the merge),
// and hand back a ready-to-use client.
//
// Per invocation this performs at most one provider call (the refresh) and
// at most one store write.
func (m *Manager) AuthenticatedClient(ctx context.Context) (*Client, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	rec, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotAuthenticated
	}

	now := m.now()
	if rec.SessionExpired(now) {
		return nil, ErrSessionExpired
	}
	if rec.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	if rec.AccessTokenExpired(now) {
		creds, err := m.provider.Refresh(ctx, rec.RefreshToken)
		if err != nil {
			return nil, err
		}
		merged := mergeRefreshed(rec, creds)
		if err := m.store.Save(ctx, merged); err != nil {
			return nil, err
		}
		log.Printf("[session] access token refreshed, access_token=%s expires=%s",
			util.MaskToken(merged.AccessToken),
			time.UnixMilli(merged.ExpiryDate).Format(time.RFC3339))
		rec = merged
	}

	return &Client{rec: rec}, nil
}

// mergeRefreshed overlays the refresh response onto the previous record,
// then pins the two long-lived fields back to their original values. The
// provider omits the refresh token on refresh responses, and the session
// boundary must survive every refresh unchanged.
func mergeRefreshed(old *tokenstore.Record, creds *Credentials) *tokenstore.Record {
	merged := old.Clone()
	if creds.AccessToken != "" {
		merged.AccessToken = creds.AccessToken
	}
	if creds.ExpiryDate != 0 {
		merged.ExpiryDate = creds.ExpiryDate
	}
	if creds.TokenType != "" {
		merged.TokenType = creds.TokenType
	}
	if creds.Scope != "" {
		merged.Scope = creds.Scope
	}
	if creds.IDToken != "" {
		merged.IDToken = creds.IDToken
	}
	merged.RefreshToken = old.RefreshToken
	merged.SessionExpiry = old.SessionExpiry
	return merged
}

// Revoke ends the session: provider-side revocation is attempted when an
// access token exists, but its failure only gets logged. The local record is
// deleted regardless; only that deletion can fail the call.
func (m *Manager) Revoke(ctx context.Context) error {
	rec, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if rec != nil && rec.AccessToken != "" {
		if err := m.provider.Revoke(ctx, rec.AccessToken); err != nil {
			log.Printf("[session] provider revocation failed (continuing with local delete): %v", err)
		}
	}
	return m.store.Delete(ctx)
}

// Record loads the stored record without lifecycle enforcement. Returns
// (nil, nil) when no session exists. Used by status-style read paths.
func (m *Manager) Record(ctx context.Context) (*tokenstore.Record, error) {
	return m.store.Load(ctx)
}

// State derives the current lifecycle state from the store and the clock.
func (m *Manager) State(ctx context.Context) (State, error) {
	rec, err := m.store.Load(ctx)
	if err != nil {
		return StateNoSession, err
	}
	return StateOf(rec, m.now()), nil
}

// Identity resolves who the session belongs to. The id_token is the primary
// path (provider-signed, no extra network round trip when cached certs
// suffice); the userinfo endpoint is the fallback.
func (m *Manager) Identity(ctx context.Context, c *Client) (*Identity, error) {
	var verifyErr error
	if c.rec.IDToken != "" {
		id, err := m.provider.VerifyIDToken(ctx, c.rec.IDToken)
		if err == nil {
			return id, nil
		}
		verifyErr = err
	} else {
		verifyErr = ErrNoIDToken
	}

	id, err := m.provider.UserInfo(ctx, c.rec.AccessToken)
	if err != nil {
		return nil, &IdentityError{VerifyErr: verifyErr, UserInfoErr: err}
	}
	return id, nil
}
