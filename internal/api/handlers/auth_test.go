package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/tokenstore"
)

// stubProvider scripts the provider boundary for handler tests.
type stubProvider struct {
	exchangeCreds *session.Credentials
	exchangeErr   error
	refreshCreds  *session.Credentials
	refreshErr    error
	revokeErr     error
	identity      *session.Identity
	identityErr   error
}

func (s *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (s *stubProvider) Exchange(_ context.Context, code string) (*session.Credentials, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.exchangeCreds, nil
}

func (s *stubProvider) Refresh(_ context.Context, refreshToken string) (*session.Credentials, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.refreshCreds, nil
}

func (s *stubProvider) Revoke(_ context.Context, accessToken string) error { return s.revokeErr }

func (s *stubProvider) VerifyIDToken(_ context.Context, idToken string) (*session.Identity, error) {
	if s.identityErr != nil {
		return nil, s.identityErr
	}
	return s.identity, nil
}

func (s *stubProvider) UserInfo(_ context.Context, accessToken string) (*session.Identity, error) {
	if s.identityErr != nil {
		return nil, s.identityErr
	}
	return s.identity, nil
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestLoginHandler_RedirectsToConsent(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login?state=abc", nil)
	rr := httptest.NewRecorder()
	LoginHandler(sessions)(rr, req)

	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status %d, want 307", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.Contains(loc, "state=abc") {
		t.Fatalf("redirect %s missing state", loc)
	}
}

func TestLoginHandler_DefaultState(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rr := httptest.NewRecorder()
	LoginHandler(sessions)(rr, req)

	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "state=default") {
		t.Fatalf("redirect %s should fall back to default state", loc)
	}
}

func TestCallbackHandler_Success(t *testing.T) {
	provider := &stubProvider{
		exchangeCreds: &session.Credentials{
			AccessToken:  "a1",
			RefreshToken: "r1",
			ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
			Scope:        "openid email",
			IDToken:      "idt",
		},
		identity: &session.Identity{ID: "sub", Email: "user@example.com", Name: "User"},
	}
	store := tokenstore.NewMemoryStore()
	sessions := session.NewManager(provider, store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=good", nil)
	rr := httptest.NewRecorder()
	CallbackHandler(sessions)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeResponse(t, rr)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}

	rec, err := store.Load(context.Background())
	if err != nil || rec == nil {
		t.Fatalf("expected persisted record, got %+v err %v", rec, err)
	}
	if rec.SessionExpiry == 0 {
		t.Fatal("session expiry not stamped")
	}
}

func TestCallbackHandler_MissingCode(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback", nil)
	rr := httptest.NewRecorder()
	CallbackHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestCallbackHandler_ProviderError(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?error=access_denied", nil)
	rr := httptest.NewRecorder()
	CallbackHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
	body := decodeResponse(t, rr)
	if !strings.Contains(body["error"].(string), "access_denied") {
		t.Fatalf("error should name the oauth error, got %v", body)
	}
}

func TestCallbackHandler_RejectedCode(t *testing.T) {
	provider := &stubProvider{exchangeErr: errors.New("invalid_grant")}
	store := tokenstore.NewMemoryStore()
	sessions := session.NewManager(provider, store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=bad", nil)
	rr := httptest.NewRecorder()
	CallbackHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Fatalf("rejected code must not persist a record, got %+v", rec)
	}
}

func TestStatusHandler_NotAuthenticated(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rr := httptest.NewRecorder()
	StatusHandler(sessions)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
	body := decodeResponse(t, rr)
	data := body["data"].(map[string]any)
	if data["authenticated"] != false {
		t.Fatalf("expected authenticated=false, got %v", data)
	}
	if data["state"] != string(session.StateNoSession) {
		t.Fatalf("expected no_session state, got %v", data["state"])
	}
}

func TestStatusHandler_ReportsLifecycleFlags(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	sessionExpiry := time.Now().Add(time.Hour)
	rec := &tokenstore.Record{
		AccessToken:   "a1",
		RefreshToken:  "r1",
		ExpiryDate:    time.Now().Add(-time.Minute).UnixMilli(),
		Scope:         "openid email",
		SessionExpiry: sessionExpiry.UnixMilli(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	provider := &stubProvider{
		refreshCreds: &session.Credentials{AccessToken: "a2", ExpiryDate: time.Now().Add(time.Hour).UnixMilli()},
		identity:     &session.Identity{Email: "user@example.com"},
	}
	sessions := session.NewManager(provider, store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rr := httptest.NewRecorder()
	StatusHandler(sessions)(rr, req)

	body := decodeResponse(t, rr)
	data := body["data"].(map[string]any)
	if data["authenticated"] != true || data["tokenExpired"] != true || data["hasRefreshToken"] != true {
		t.Fatalf("unexpected flags: %v", data)
	}
	if data["sessionExpiresAt"] == "" {
		t.Fatal("sessionExpiresAt missing")
	}
	user, ok := data["user"].(map[string]any)
	if !ok || user["email"] != "user@example.com" {
		t.Fatalf("expected resolved user, got %v", data["user"])
	}
}

func TestStatusHandler_FalseFlagsStayInPayload(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	// Healthy access token, no refresh token: every lifecycle flag is false
	// and must still appear in the body.
	rec := &tokenstore.Record{
		AccessToken:   "a1",
		ExpiryDate:    time.Now().Add(time.Hour).UnixMilli(),
		SessionExpiry: time.Now().Add(time.Hour).UnixMilli(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	sessions := session.NewManager(&stubProvider{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rr := httptest.NewRecorder()
	StatusHandler(sessions)(rr, req)

	body := decodeResponse(t, rr)
	data := body["data"].(map[string]any)
	for _, field := range []string{"tokenExpired", "sessionExpired", "hasRefreshToken"} {
		v, present := data[field]
		if !present {
			t.Errorf("%s missing from status payload", field)
			continue
		}
		if v != false {
			t.Errorf("%s = %v, want false", field, v)
		}
	}
	if _, present := data["sessionExpiresAt"]; !present {
		t.Error("sessionExpiresAt missing from status payload")
	}
}

func TestStatusHandler_NullSessionExpiresAt(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	rec := &tokenstore.Record{
		AccessToken: "a1",
		ExpiryDate:  time.Now().Add(time.Hour).UnixMilli(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	sessions := session.NewManager(&stubProvider{}, store)

	rr := httptest.NewRecorder()
	StatusHandler(sessions)(rr, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	data := decodeResponse(t, rr)["data"].(map[string]any)
	v, present := data["sessionExpiresAt"]
	if !present {
		t.Fatal("sessionExpiresAt should be present (as null) without a session boundary")
	}
	if v != nil {
		t.Fatalf("sessionExpiresAt = %v, want null", v)
	}
}

func TestStatusHandler_IdentityFailureIsTolerated(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	rec := &tokenstore.Record{
		AccessToken:   "a1",
		RefreshToken:  "r1",
		ExpiryDate:    time.Now().Add(time.Hour).UnixMilli(),
		SessionExpiry: time.Now().Add(time.Hour).UnixMilli(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	sessions := session.NewManager(&stubProvider{identityErr: errors.New("userinfo down")}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rr := httptest.NewRecorder()
	StatusHandler(sessions)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 despite identity failure", rr.Code)
	}
	body := decodeResponse(t, rr)
	data := body["data"].(map[string]any)
	if data["authenticated"] != true {
		t.Fatalf("expected authenticated=true, got %v", data)
	}
	if _, present := data["user"]; present {
		t.Fatalf("expected user omitted, got %v", data["user"])
	}
}

func TestLogoutHandler_ClearsSession(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	if err := store.Save(context.Background(), &tokenstore.Record{AccessToken: "a1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Provider-side revocation failure must not fail the logout.
	sessions := session.NewManager(&stubProvider{revokeErr: errors.New("endpoint down")}, store)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	LogoutHandler(sessions)(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rr.Code, rr.Body.String())
	}
	rec, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected record cleared, got %+v", rec)
	}

	// Second logout with nothing stored still succeeds.
	rr = httptest.NewRecorder()
	LogoutHandler(sessions)(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("second logout status %d", rr.Code)
	}
}

func TestGmailHandlers_RequireAuthentication(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
		body    string
	}{
		{"list", GmailListHandler(sessions), http.MethodGet, "/api/gmail", ""},
		{"send", GmailSendHandler(sessions), http.MethodPost, "/api/gmail",
			`{"to":"a@b.c","subject":"s","body":"b"}`},
		{"get", GmailGetHandler(sessions), http.MethodGet, "/api/gmail/m1", ""},
		{"modify", GmailModifyHandler(sessions), http.MethodPatch, "/api/gmail/m1",
			`{"action":"markRead"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rr := httptest.NewRecorder()
			tt.handler(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", rr.Code)
			}
		})
	}
}

func TestGmailSendHandler_ValidatesBody(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/gmail", strings.NewReader(`{"to":"a@b.c"}`))
	rr := httptest.NewRecorder()
	GmailSendHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 for missing fields", rr.Code)
	}
}

func TestGmailModifyHandler_UnknownAction(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPatch, "/api/gmail/m1", strings.NewReader(`{"action":"archive"}`))
	rr := httptest.NewRecorder()
	GmailModifyHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 for unknown action", rr.Code)
	}
}

func TestCalendarCreateHandler_ValidatesBody(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/calendar", strings.NewReader(`{"summary":"x"}`))
	rr := httptest.NewRecorder()
	CalendarCreateHandler(sessions)(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 for missing dates", rr.Code)
	}
}

func TestGA4ReportHandler_UnknownPreset(t *testing.T) {
	sessions := session.NewManager(&stubProvider{}, tokenstore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/ga4?report=bogus", nil)
	rr := httptest.NewRecorder()
	GA4ReportHandler(sessions, "123")(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400 for unknown preset", rr.Code)
	}
}

func TestGA4DisabledHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ga4", nil)
	rr := httptest.NewRecorder()
	GA4DisabledHandler()(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rr.Code)
	}
}
