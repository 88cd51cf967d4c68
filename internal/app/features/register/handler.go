// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
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

type registerFormData struct {
	viewdata.BaseVM
	Error    string
	Username string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, "Register"),
		Error:  query.Get(r, "error"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter a username and password.", username)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Register(ctx, username, password)
	switch {
	case errors.Is(err, userstore.ErrDuplicateUsername):
		h.renderFormWithError(w, r, "That username is already taken.", username)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "register user", err, "A server error occurred. Please try again.", "/register")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in after register", err, "Registration succeeded but sign-in failed. Please log in.", "/login")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Register"),
		Error:    msg,
		Username: username,
	})
}
