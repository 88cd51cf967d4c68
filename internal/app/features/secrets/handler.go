// internal/app/features/secrets/handler.go
package secrets

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/siddhanthpranavrao/authentication/internal/app/features/errors"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/timeouts"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		ErrLog: errLog,
		Log:    logger,
	}
}

type secretsPageData struct {
	viewdata.BaseVM
	Secrets []string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /secrets – public board                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeSecrets lists every stored secret, anonymously. The page is public:
// secrets carry no attribution, so there is nothing to protect behind a login.
func (h *Handler) ServeSecrets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.ListWithSecrets(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list secrets", err, "Unable to load secrets right now.", "/")
		return
	}

	texts := make([]string, 0, len(users))
	for _, u := range users {
		if u.Secret != nil {
			texts = append(texts, *u.Secret)
		}
	}

	templates.Render(w, r, "secrets", secretsPageData{
		BaseVM:  viewdata.NewBaseVM(r, "Secrets"),
		Secrets: texts,
	})
}
