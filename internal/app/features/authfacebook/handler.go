// internal/app/features/authfacebook/handler.go
package authfacebook

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/siddhanthpranavrao/authentication/internal/app/store/oauthstate"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const (
	provider    = "facebook"
	userInfoURL = "https://graph.facebook.com/me?fields=id,name"
	stateExpiry = 10 * time.Minute
)

// Handler handles Facebook OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	StateStore *oauthstate.Store
	Log        *zap.Logger

	AppID       string
	AppSecret   string
	RedirectURL string // e.g. "http://localhost:8080/auth/facebook/secrets"
}

// NewHandler creates a new Facebook OAuth handler. The callback is registered
// with the provider as <baseURL>/auth/facebook/secrets.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	stateStore *oauthstate.Store,
	appID, appSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:       users,
		SessionMgr:  sessionMgr,
		StateStore:  stateStore,
		Log:         logger,
		AppID:       appID,
		AppSecret:   appSecret,
		RedirectURL: baseURL + "/auth/facebook/secrets",
	}
}

// oauth2Config returns the Facebook OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.AppID,
		ClientSecret: h.AppSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}

// IsConfigured returns true if Facebook OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.AppID != "" && h.AppSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/facebook                                                           |
| Initiates the Facebook OAuth flow by redirecting to the consent screen.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Facebook OAuth not configured")
		http.Redirect(w, r, "/login?error=not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(stateExpiry)
	if err := h.StateStore.Save(ctx, state, provider, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Facebook OAuth flow", zap.String("redirect_url", url))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/facebook/secrets                                                   |
| Handles the OAuth callback from Facebook, exchanges code for tokens,         |
| fetches user info, finds-or-creates the user, and creates a session.         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check for errors from Facebook (user denied consent, etc.)
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Facebook OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=facebook_denied", http.StatusSeeOther)
		return
	}

	// Validate state parameter (one-time use, stored server-side)
	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	valid, err := h.StateStore.Validate(ctxTimeout, state, provider)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	// Exchange code for token
	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	// Fetch user info from the Graph API
	fbUser, err := fetchFacebookUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Facebook user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	h.Log.Debug("Facebook user info fetched", zap.String("facebook_id", fbUser.ID))

	// Find or create the user keyed by Facebook ID. Returning visitors get
	// the same record; first-timers get a fresh one.
	u, err := h.Users.FindOrCreateByFacebookID(ctxTimeout, fbUser.ID)
	if err != nil {
		h.Log.Error("find or create user by Facebook ID failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID); err != nil {
		h.Log.Error("sign in after Facebook OAuth failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Log.Info("user logged in via Facebook", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// facebookUserInfo represents user info returned from the Graph API.
type facebookUserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fetchFacebookUserInfo retrieves user information from the Graph API.
func fetchFacebookUserInfo(ctx context.Context, token *oauth2.Token) (*facebookUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info facebookUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	if info.ID == "" {
		return nil, fmt.Errorf("user info missing id")
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
