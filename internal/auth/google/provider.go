// Package google implements the session.Provider boundary against Google's
// OAuth2 endpoints: code exchange, access-token refresh, revocation, and
// identity resolution via id_token verification or the userinfo endpoint.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
)

// Scopes is the fixed permission set the gateway requests: mail read/send/
// modify, calendar read/write, analytics read, plus the identity scopes.
var Scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/analytics.readonly",
	"openid",
	"email",
	"profile",
}

const (
	revokeURL   = "https://oauth2.googleapis.com/revoke"
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Provider wraps an oauth2.Config for the configured Google client.
type Provider struct {
	cfg *oauth2.Config
}

// NewProvider builds a provider for the given OAuth client registration.
func NewProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     googleoauth.Endpoint,
		},
	}
}

// AuthCodeURL builds the consent URL. Offline access makes Google issue a
// refresh token; forcing the consent prompt makes it re-issue one on repeat
// authorizations instead of only the first.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the authorization code for a token set.
func (p *Provider) Exchange(ctx context.Context, code string) (*session.Credentials, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return tokenToCredentials(tok), nil
}

// Refresh mints a new access token from the refresh token. The response
// normally omits the refresh token; the session manager pins the original.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*session.Credentials, error) {
	src := p.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}
	return tokenToCredentials(tok), nil
}

// Revoke invalidates the access token at Google. Treated as best-effort by
// callers; this only reports what happened.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke returned status %d", resp.StatusCode)
	}
	return nil
}

// VerifyIDToken validates the provider-signed id_token against this client
// id and extracts the identity claims from its payload.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (*session.Identity, error) {
	payload, err := idtoken.Validate(ctx, idToken, p.cfg.ClientID)
	if err != nil {
		return nil, err
	}
	return &session.Identity{
		ID:      payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

// UserInfo fetches the profile from the userinfo endpoint with a bearer
// token. Fallback path when the id_token is missing or fails verification.
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (*session.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &session.Identity{ID: info.ID, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

func tokenToCredentials(tok *oauth2.Token) *session.Credentials {
	creds := &session.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		creds.ExpiryDate = tok.Expiry.UnixMilli()
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		creds.IDToken = id
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		creds.Scope = scope
	}
	return creds
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
