package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/siddhanthpranavrao/authentication/internal/app/features/authgoogle"
	"github.com/siddhanthpranavrao/authentication/internal/app/store/oauthstate"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"github.com/siddhanthpranavrao/authentication/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return authgoogle.NewHandler(
		userstore.New(db),
		sessionMgr,
		oauthstate.New(db),
		"test-client-id",
		"test-client-secret",
		"http://localhost:8080",
		logger,
	)
}

func newUnconfiguredHandler(t *testing.T) *authgoogle.Handler {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return authgoogle.NewHandler(nil, sessionMgr, nil, "", "", "http://localhost:8080", logger)
}

func TestIsConfigured(t *testing.T) {
	if newUnconfiguredHandler(t).IsConfigured() {
		t.Error("IsConfigured() should return false without client ID and secret")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := newUnconfiguredHandler(t)

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?error=not_configured" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeLogin_RedirectsToConsent(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	loc := rec.Header().Get("Location")
	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if !strings.Contains(u.Host, "google") {
		t.Errorf("consent redirect host: got %q", u.Host)
	}
	if u.Query().Get("state") == "" {
		t.Error("consent redirect is missing the state parameter")
	}
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/google/secrets" {
		t.Errorf("redirect_uri: got %q", got)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h := newUnconfiguredHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/secrets?error=access_denied", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?error=google_denied" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h := newUnconfiguredHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/secrets?code=abc", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/login?error=invalid_state" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/auth/google/secrets?state=forged&code=abc", nil)
	rec := httptest.NewRecorder()

	h.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/login?error=invalid_state" {
		t.Errorf("Location: got %q", loc)
	}
}
