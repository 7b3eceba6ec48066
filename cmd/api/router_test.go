package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landingkit/seminar-signups/internal/entity"
	"github.com/landingkit/seminar-signups/internal/infra/http/handlers"
	"github.com/landingkit/seminar-signups/internal/infra/mail"
	"github.com/landingkit/seminar-signups/internal/infra/memory"
	"github.com/landingkit/seminar-signups/internal/usecase"
)

type recordingMailer struct {
	sent []entity.Email
}

func (m *recordingMailer) Send(_ context.Context, msg entity.Email) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *memory.Sheet, *recordingMailer) {
	t.Helper()
	composer, err := mail.NewComposer(mail.DefaultBranding())
	require.NoError(t, err)

	sheet := memory.NewSheet()
	mailer := &recordingMailer{}
	uc := usecase.NewRegisterUseCase(sheet, mailer, composer, entity.VariantA(), "hello@mathewgibeault.ca", nil)
	uc.Now = func() time.Time { return time.Date(2025, 1, 10, 16, 30, 0, 0, time.UTC) }

	router := newRouter(
		handlers.NewRegistrationHandler(uc, nil, nil),
		handlers.NewHealthHandler(sheet, nil, nil, "test"),
		[]string{"*"},
	)
	return router, sheet, mailer
}

func TestRegisterEndToEnd(t *testing.T) {
	router, sheet, mailer := newTestRouter(t)

	body := `{"firstName":"Test","lastName":"User","email":"test@example.com","phone":"(555) 123-4567",` +
		`"seminarDate":"Tuesday, Jan 14 at 7:00 PM EST","timeline":"6-12 months","timestamp":"2025-01-10T16:30:00.000Z"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out usecase.RegisterOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, usecase.StatusSuccess, out.Status)

	rows := sheet.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Test", rows[0][1])
	assert.Equal(t, "Registered", rows[0][7])

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "test@example.com", mailer.sent[0].To)
	assert.Equal(t, "hello@mathewgibeault.ca", mailer.sent[1].To)
}

func TestRootPathAcceptsRegistrations(t *testing.T) {
	router, sheet, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"firstName":"A","lastName":"B","email":"a@b.co"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sheet.Rows(), 1)
}

func TestPreflightAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/register", nil)
	req.Header.Set("Origin", "https://seminar.mathewgibeault.ca")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
