package alert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/license-monitor/internal/model"
)

type stubAlertService struct {
	sweeps int
}

func (s *stubAlertService) RunExpirySweep(_ context.Context) (*model.SweepResult, error) {
	s.sweeps++
	return &model.SweepResult{Checked: 2, AlertsSent: 1, Message: "check complete"}, nil
}

func (s *stubAlertService) GetSettings(_ context.Context) (*model.AlertSetting, error) {
	return &model.AlertSetting{}, nil
}

func (s *stubAlertService) UpdateSettings(_ context.Context, _ *model.UpdateAlertSettingRequest) (*model.AlertSetting, error) {
	return &model.AlertSetting{}, nil
}

func (s *stubAlertService) ListLogs(_ context.Context) ([]*model.AlertLogDetail, error) {
	return nil, nil
}

func newCheckRouter(secret string) (*gin.Engine, *stubAlertService) {
	gin.SetMode(gin.TestMode)
	svc := &stubAlertService{}
	h := NewHandler(svc, secret)

	engine := gin.New()
	h.RegisterCheckRoute(engine.Group("/api/v1"))
	return engine, svc
}

func checkRequest(engine *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/check", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCheckExpirations_RejectsAnonymous(t *testing.T) {
	engine, svc := newCheckRouter("cron-secret")

	w := checkRequest(engine, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, svc.sweeps)
}

func TestCheckExpirations_AcceptsCronSecret(t *testing.T) {
	engine, svc := newCheckRouter("cron-secret")

	w := checkRequest(engine, "Authorization", "Bearer cron-secret")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.sweeps)
	assert.Contains(t, w.Body.String(), `"alerts_sent":1`)
}

func TestCheckExpirations_RejectsWrongSecret(t *testing.T) {
	engine, svc := newCheckRouter("cron-secret")

	w := checkRequest(engine, "Authorization", "Bearer guess")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, svc.sweeps)
}

func TestCheckExpirations_AcceptsInternalCall(t *testing.T) {
	engine, svc := newCheckRouter("")

	w := checkRequest(engine, "X-Internal-Call", "true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.sweeps)
}

func TestCheckExpirations_NoSecretConfigured(t *testing.T) {
	engine, svc := newCheckRouter("")

	w := checkRequest(engine, "Authorization", "Bearer anything")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, svc.sweeps)
}
