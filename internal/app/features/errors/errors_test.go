package errors_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siddhanthpranavrao/authentication/internal/app/features/errors"
	"go.uber.org/zap"
)

func TestLogServerError_RedirectsWithMessage(t *testing.T) {
	errLog := errors.NewErrorLogger(zap.NewNop())

	req := httptest.NewRequest("POST", "/submit", nil)
	rec := httptest.NewRecorder()

	errLog.LogServerError(rec, req, "set secret", fmt.Errorf("boom"), "Unable to save.", "/submit")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/submit?error=Unable+to+save." {
		t.Errorf("Location: got %q", loc)
	}
}

func TestLogBadRequest_NoMessage(t *testing.T) {
	errLog := errors.NewErrorLogger(zap.NewNop())

	req := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()

	errLog.LogBadRequest(rec, req, "parse form", fmt.Errorf("bad form"), "", "/login")

	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestLogServerError_PreservesExistingQuery(t *testing.T) {
	errLog := errors.NewErrorLogger(zap.NewNop())

	req := httptest.NewRequest("GET", "/secrets", nil)
	rec := httptest.NewRecorder()

	errLog.LogServerError(rec, req, "list", fmt.Errorf("down"), "Try again.", "/login?return=%2Fsubmit")

	if loc := rec.Header().Get("Location"); loc != "/login?return=%2Fsubmit&error=Try+again." {
		t.Errorf("Location: got %q", loc)
	}
}
