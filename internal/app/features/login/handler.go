// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/siddhanthpranavrao/authentication/internal/app/features/errors"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/timeouts"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string
	ReturnURL string
}

// loginErrorMessages maps error codes set by the OAuth callbacks to messages
// shown above the form.
var loginErrorMessages = map[string]string{
	"google_denied":   "Google sign-in was cancelled.",
	"facebook_denied": "Facebook sign-in was cancelled.",
	"invalid_state":   "Sign-in session expired. Please try again.",
	"invalid_code":    "Sign-in failed. Please try again.",
	"token_exchange":  "Sign-in failed. Please try again.",
	"user_info":       "Sign-in failed. Please try again.",
	"internal":        "A server error occurred. Please try again.",
	"not_configured":  "That sign-in method is not available.",
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if code := query.Get(r, "error"); code != "" {
		if m, ok := loginErrorMessages[code]; ok {
			msg = m
		} else {
			msg = code
		}
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login"),
		Error:     msg,
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Verify never reveals whether the username or the password was wrong.
	u, err := h.Users.Verify(ctx, username, password)
	switch {
	case errors.Is(err, userstore.ErrInvalidCredentials):
		h.renderFormWithError(w, r, "Invalid username or password.", username)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "verify credentials", err, "A server error occurred. Please try again.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in", err, "Unable to create session. Please try again.", "/login")
		return
	}

	ret := strings.TrimSpace(r.FormValue("return"))
	dest := urlutil.SafeReturn(ret, "", "/secrets")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login"),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	})
}
