// internal/app/features/submit/handler.go
package submit

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/microcosm-cc/bluemonday"
	uierrors "github.com/siddhanthpranavrao/authentication/internal/app/features/errors"
	userstore "github.com/siddhanthpranavrao/authentication/internal/app/store/users"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/auth"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/timeouts"
	"github.com/siddhanthpranavrao/authentication/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxSecretLen = 500

type Handler struct {
	Users     *userstore.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
	sanitizer *bluemonday.Policy
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:     users,
		ErrLog:    errLog,
		Log:       logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type submitFormData struct {
	viewdata.BaseVM
	Error         string
	CurrentSecret string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /submit                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeSubmit shows the submission form, pre-filled with the user's current
// secret so a resubmission reads as an edit.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	current := ""
	if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if rec, err := h.Users.GetByID(ctx, oid); err == nil && rec.Secret != nil {
			current = *rec.Secret
		}
	}

	templates.Render(w, r, "submit", submitFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Submit a Secret"),
		Error:         query.Get(r, "error"),
		CurrentSecret: current,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /submit                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmitPost stores the submitted secret on the user's record. Each user
// holds exactly one secret; submitting again overwrites the old one.
func (h *Handler) HandleSubmitPost(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/submit")
		return
	}

	secret := strings.TrimSpace(h.sanitizer.Sanitize(r.FormValue("secret")))
	if secret == "" {
		h.renderFormWithError(w, r, "Please enter a secret.")
		return
	}
	if len(secret) > maxSecretLen {
		h.renderFormWithError(w, r, "That secret is too long.")
		return
	}

	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse user id", err, "Please log in again.", "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetSecret(ctx, oid, secret); err != nil {
		h.ErrLog.LogServerError(w, r, "set secret", err, "Unable to save your secret. Please try again.", "/submit")
		return
	}

	h.Log.Info("secret submitted", zap.String("user_id", u.ID))
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string) {
	templates.Render(w, r, "submit", submitFormData{
		BaseVM: viewdata.NewBaseVM(r, "Submit a Secret"),
		Error:  msg,
	})
}
