// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles GET /logout.
//
// SignOut destroys the server-side session record and clears the cookie, so
// the token is dead even if the browser keeps a stale copy. Logging out while
// already logged out is harmless.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	h.SessionMgr.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
