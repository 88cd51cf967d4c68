// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	sessionstore "github.com/siddhanthpranavrao/authentication/internal/app/store/sessions"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// tokenKey is the only value kept in the cookie session: the opaque token of
// the server-side session record. Everything else lives in MongoDB.
const tokenKey = "session_token"

// SessionUser is the identity injected into r.Context() for signed-in requests.
type SessionUser struct {
	ID   string
	Name string
}

// UserFetcher loads fresh user data for a resolved session on each request.
// Implementations return nil when the id no longer maps to a live user.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionStore is the server-side session backend.
// Implemented by the Mongo sessions store.
type SessionStore interface {
	Create(ctx context.Context, userID primitive.ObjectID) (sessionstore.Session, error)
	Resolve(ctx context.Context, token string) (primitive.ObjectID, bool, error)
	Destroy(ctx context.Context, token string) error
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the signed-in user and a "found?" flag. This is the
// auth gate: handlers and middleware derive everything from it.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie that carries the session token and the
// server-side records behind it. It is injected into handlers explicitly;
// there is no package-global store.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	sessions SessionStore
	users    UserFetcher
	log      *zap.Logger
}

// NewSessionManager builds a SessionManager from the signing key and cookie
// settings. The secure flag controls Secure cookies and the SameSite mode:
// production uses Secure + SameSite=None, local dev over http uses Lax.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store: store,
		name:  sessionName,
		log:   logger,
	}, nil
}

// SetSessionStore wires the server-side session backend.
func (m *SessionManager) SetSessionStore(s SessionStore) { m.sessions = s }

// SetUserFetcher wires the per-request user loader. With a fetcher set, role
// or account changes take effect on the next request, not at next login.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.users = f }

// Store exposes the underlying cookie store (cookie options for tests).
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// GetSession returns the request's cookie session, or a fresh one along with
// the decode error when the cookie is invalid.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// SignIn creates a server-side session for the user and writes its token into
// the cookie. The old token, if any, is destroyed first so a login never
// extends a previous session.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) error {
	if m.sessions == nil {
		return fmt.Errorf("auth: no session store configured")
	}

	sess, err := m.GetSession(r)
	if err != nil {
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err),
				zap.String("user_id", userID.Hex()))
		} else {
			m.log.Error("session store error during sign-in, using fresh session",
				zap.Error(err),
				zap.String("user_id", userID.Hex()))
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if old, ok := sess.Values[tokenKey].(string); ok && old != "" {
		if err := m.sessions.Destroy(ctx, old); err != nil {
			m.log.Warn("destroy previous session failed", zap.Error(err))
		}
	}

	rec, err := m.sessions.Create(ctx, userID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	sess.Values[tokenKey] = rec.Token
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

// SignOut destroys the server-side session record and deletes the cookie.
// A missing or undecodable cookie still results in a deletion cookie so the
// client ends up signed out either way.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) {
	sess, err := m.GetSession(r)
	if err != nil {
		m.log.Warn("session decode failed during sign-out", zap.Error(err))
	}

	if token, ok := sess.Values[tokenKey].(string); ok && token != "" && m.sessions != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if err := m.sessions.Destroy(ctx, token); err != nil {
			m.log.Error("destroy session record failed", zap.Error(err))
		}
	}

	// Ensure the deletion-cookie matches the original store settings.
	if opts := m.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1 // delete immediately

	if err := sess.Save(r, w); err != nil {
		m.log.Error("save deletion cookie failed", zap.Error(err))
	}
}

// LoadSessionUser injects the user into context if the request carries a
// token that resolves to a live user. Stale, tampered, or destroyed tokens
// fall through as anonymous; they never abort the request.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.sessions == nil || m.users == nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, _ := m.GetSession(r)
		token, ok := sess.Values[tokenKey].(string)
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		userID, found, err := m.sessions.Resolve(ctx, token)
		cancel()
		if err != nil {
			m.log.Warn("session resolve failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !found {
			next.ServeHTTP(w, r)
			return
		}

		if u := m.users.FetchUser(r.Context(), userID.Hex()); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - JSON/API callers: 401 Unauthorized with a plain error body.
//   - Everyone else: 303 redirect to /login?return=...
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if wantsJSON(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ret := url.QueryEscape(currentURI(r))
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// wantsJSON spots API callers; everything else (browsers included) gets the
// login redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
