package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
	"github.com/mamadbah2/bubbel/internal/service/records"
	"github.com/mamadbah2/bubbel/internal/service/reporting"
	"github.com/mamadbah2/bubbel/internal/service/timer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", models.ErrFieldNotAllowed), http.StatusBadRequest},
		{models.ErrEndBeforeStart, http.StatusBadRequest},
		{records.ErrInvalidQuantity, http.StatusBadRequest},
		{timer.ErrUntimedKind, http.StatusBadRequest},
		{fmt.Errorf("%w: R009", records.ErrRecordNotFound), http.StatusNotFound},
		{records.ErrProductNotFound, http.StatusNotFound},
		{records.ErrDuplicateRecordID, http.StatusConflict},
		{timer.ErrSessionRunning, http.StatusConflict},
		{timer.ErrNoActiveSession, http.StatusConflict},
		{sheets.ErrNotConfigured, http.StatusServiceUnavailable},
		{ErrArchiveDisabled, http.StatusServiceUnavailable},
		{reporting.ErrIncompleteData, http.StatusBadGateway},
		{&records.PartialEditError{Row: 4, Failed: models.ColNote, Err: errors.New("quota")}, http.StatusBadGateway},
		{errors.New("dial tcp: timeout"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPatchValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Links", "Links"},
		{float64(120), "120"},
		{4.25, "4.25"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := patchValue(tt.in); got != tt.want {
			t.Errorf("patchValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIdentityReusesCookie(t *testing.T) {
	r := gin.New()
	r.Use(ClientIdentity())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, clientID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "known-client"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Body.String() != "known-client" {
		t.Errorf("client id = %q", rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("existing cookie should not be reissued")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != rec.Body.String() || cookies[0].Value == "" {
		t.Errorf("issued cookie = %+v, body %q", cookies, rec.Body.String())
	}
}
