package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/pkg/auth"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
	"github.com/jwalitptl/license-monitor/pkg/logger"
	"github.com/jwalitptl/license-monitor/pkg/ratelimit"
)

const (
	testWebPhone    = "+15550001111"
	testOfficePhone = "+15550002222"
)

type fakeVerifier struct {
	started  []string
	code     string
	startErr error
	checkErr error
}

func (f *fakeVerifier) StartVerification(_ context.Context, phone string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, phone)
	return nil
}

func (f *fakeVerifier) CheckVerification(_ context.Context, _ string, code string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return code == f.code, nil
}

func newAuthFixture(t *testing.T) (Service, *fakeVerifier) {
	t.Helper()
	verifier := &fakeVerifier{code: "123456"}
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 15*time.Minute, 5, 10)
	svc := NewService(verifier, jwtSvc, limiter, testWebPhone, testOfficePhone, logger.Nop())
	return svc, verifier
}

func TestSendCode(t *testing.T) {
	svc, verifier := newAuthFixture(t)

	err := svc.SendCode(context.Background(), &model.SendCodeRequest{Role: "web"})
	require.NoError(t, err)
	require.Len(t, verifier.started, 1)
	assert.Equal(t, testWebPhone, verifier.started[0])

	err = svc.SendCode(context.Background(), &model.SendCodeRequest{Role: "office"})
	require.NoError(t, err)
	assert.Equal(t, testOfficePhone, verifier.started[1])
}

func TestSendCode_InvalidRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	err := svc.SendCode(context.Background(), &model.SendCodeRequest{Role: "superuser"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
}

func TestSendCode_MissingPhoneConfig(t *testing.T) {
	verifier := &fakeVerifier{}
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 15*time.Minute, 5, 10)
	svc := NewService(verifier, jwtSvc, limiter, "", testOfficePhone, logger.Nop())

	err := svc.SendCode(context.Background(), &model.SendCodeRequest{Role: "web"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConfiguration, apperrors.CodeOf(err))
	assert.Empty(t, verifier.started)
}

func TestSendCode_RateLimited(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.SendCode(ctx, &model.SendCodeRequest{Role: "web"}))
	}

	err := svc.SendCode(ctx, &model.SendCodeRequest{Role: "web"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTooManyRequests, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "try again in")

	// the office number has its own budget
	assert.NoError(t, svc.SendCode(ctx, &model.SendCodeRequest{Role: "office"}))
}

func TestVerifyCode_IssuesSession(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, err := svc.VerifyCode(context.Background(), &model.VerifyCodeRequest{Role: "web", Code: "123456"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	role, err := svc.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, model.AdminRoleWeb, role)
}

func TestVerifyCode_WrongCode(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, err := svc.VerifyCode(context.Background(), &model.VerifyCodeRequest{Role: "web", Code: "000000"})
	require.Error(t, err)
	assert.Empty(t, token)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestVerifyCode_VerifierFailure(t *testing.T) {
	svc, verifier := newAuthFixture(t)
	verifier.checkErr = errors.New("twilio unreachable")

	_, err := svc.VerifyCode(context.Background(), &model.VerifyCodeRequest{Role: "web", Code: "123456"})
	require.Error(t, err)
	assert.NotEqual(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestVerifyCode_RateLimitSeparateFromSend(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	// exhaust the send budget; verify attempts must still be allowed
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.SendCode(ctx, &model.SendCodeRequest{Role: "web"}))
	}

	_, err := svc.VerifyCode(ctx, &model.VerifyCodeRequest{Role: "web", Code: "123456"})
	assert.NoError(t, err)
}

func TestValidateSession_RejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateSession("not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestValidateSession_RejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthFixture(t)

	other := auth.NewJWTService("other-secret", time.Hour)
	token, err := other.GenerateSessionToken("web")
	require.NoError(t, err)

	_, err = svc.ValidateSession(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}
