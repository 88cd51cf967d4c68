package auth_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	sessionstore "github.com/siddhanthpranavrao/authentication/internal/app/store/sessions"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"github.com/siddhanthpranavrao/authentication/internal/testutil"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "test-session", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestCurrentUser_None(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("CurrentUser reported a user on a bare request")
	}
}

func TestWithTestUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Someone"})

	u, ok := auth.CurrentUser(req)
	if !ok {
		t.Fatal("CurrentUser did not find injected user")
	}
	if u.ID != "abc" || u.Name != "Someone" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestRequireSignedIn_RedirectsAnonymous(t *testing.T) {
	sm := newSessionManager(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for anonymous request")
	})

	req := httptest.NewRequest("GET", "/submit", nil)
	rec := httptest.NewRecorder()

	sm.RequireSignedIn(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}

	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login?return=") {
		t.Fatalf("Location: got %q, want /login?return=...", loc)
	}
	ret, err := url.QueryUnescape(strings.TrimPrefix(loc, "/login?return="))
	if err != nil {
		t.Fatalf("unescape return: %v", err)
	}
	if ret != "/submit" {
		t.Errorf("return URL: got %q, want %q", ret, "/submit")
	}
}

func TestRequireSignedIn_JSONGets401(t *testing.T) {
	sm := newSessionManager(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for anonymous request")
	})

	req := httptest.NewRequest("GET", "/submit", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	sm.RequireSignedIn(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSignedIn_PassesSignedIn(t *testing.T) {
	sm := newSessionManager(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("GET", "/submit", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "abc", Name: "Someone"})
	rec := httptest.NewRecorder()

	sm.RequireSignedIn(next).ServeHTTP(rec, req)

	if !called {
		t.Error("next handler did not run for signed-in request")
	}
}

func TestLoadSessionUser_NoBackends(t *testing.T) {
	sm := newSessionManager(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("no user should be loaded without backends")
		}
	})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	sm.LoadSessionUser(next).ServeHTTP(rec, req)

	if !called {
		t.Error("next handler did not run")
	}
}

func TestSignInSignOut_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sm := newSessionManager(t)
	sm.SetSessionStore(sessionstore.New(db, sessionstore.DefaultTTL))
	sm.SetUserFetcher(userstore.NewFetcher(db))

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateLocalUser(ctx, "roundtrip", "password-roundtrip")

	// Sign in and capture the cookie.
	req1 := httptest.NewRequest("GET", "/login", nil)
	rec1 := httptest.NewRecorder()
	if err := sm.SignIn(rec1, req1, u.ID); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec1.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn did not set a cookie")
	}

	// A request carrying the cookie resolves to the user.
	req2 := httptest.NewRequest("GET", "/secrets", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()

	var loaded *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cu, ok := auth.CurrentUser(r); ok {
			loaded = cu
		}
	})).ServeHTTP(rec2, req2)

	if loaded == nil {
		t.Fatal("LoadSessionUser did not load the signed-in user")
	}
	if loaded.ID != u.ID.Hex() {
		t.Errorf("loaded user: got %s, want %s", loaded.ID, u.ID.Hex())
	}

	// Sign out; the same cookie must no longer resolve.
	req3 := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range cookies {
		req3.AddCookie(c)
	}
	rec3 := httptest.NewRecorder()
	sm.SignOut(rec3, req3)

	req4 := httptest.NewRequest("GET", "/secrets", nil)
	for _, c := range cookies {
		req4.AddCookie(c)
	}
	rec4 := httptest.NewRecorder()

	loaded = nil
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cu, ok := auth.CurrentUser(r); ok {
			loaded = cu
		}
	})).ServeHTTP(rec4, req4)

	if loaded != nil {
		t.Error("session still resolves after SignOut")
	}
}

func TestLoadSessionUser_TamperedCookie(t *testing.T) {
	db := testutil.SetupTestDB(t)

	sm := newSessionManager(t)
	sm.SetSessionStore(sessionstore.New(db, sessionstore.DefaultTTL))
	sm.SetUserFetcher(userstore.NewFetcher(db))

	req := httptest.NewRequest("GET", "/secrets", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})
	rec := httptest.NewRecorder()

	called := false
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("tampered cookie must not resolve to a user")
		}
	})).ServeHTTP(rec, req)

	if !called {
		t.Error("tampered cookie must fall through as anonymous, not abort")
	}
}
