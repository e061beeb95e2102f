package auth

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/notifier"
	"github.com/jwalitptl/license-monitor/pkg/auth"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
	"github.com/jwalitptl/license-monitor/pkg/logger"
	"github.com/jwalitptl/license-monitor/pkg/ratelimit"
)

// Service handles passwordless admin login. A one-time code is sent to the
// phone number registered for the requested role, and a verified code is
// exchanged for a session token.
type Service interface {
	SendCode(ctx context.Context, req *model.SendCodeRequest) error
	VerifyCode(ctx context.Context, req *model.VerifyCodeRequest) (string, error)
	ValidateSession(token string) (model.AdminRole, error)
}

type service struct {
	verifier notifier.OTPVerifier
	jwtSvc   auth.JWTService
	limiter  *ratelimit.Limiter
	phones   map[model.AdminRole]string
	logger   *logger.Logger
}

func NewService(verifier notifier.OTPVerifier, jwtSvc auth.JWTService, limiter *ratelimit.Limiter,
	webAdminPhone, officeAdminPhone string, logger *logger.Logger) Service {
	return &service{
		verifier: verifier,
		jwtSvc:   jwtSvc,
		limiter:  limiter,
		phones: map[model.AdminRole]string{
			model.AdminRoleWeb:    webAdminPhone,
			model.AdminRoleOffice: officeAdminPhone,
		},
		logger: logger,
	}
}

func (s *service) SendCode(ctx context.Context, req *model.SendCodeRequest) error {
	role, phone, err := s.resolvePhone(req.Role)
	if err != nil {
		return err
	}

	if err := s.allow(ctx, phone, ratelimit.OpSendCode); err != nil {
		return err
	}

	if err := s.verifier.StartVerification(ctx, phone); err != nil {
		s.logger.Error(err, "failed to start verification", "role", string(role))
		return fmt.Errorf("failed to send verification code: %w", err)
	}

	s.logger.Info("verification code sent", "role", string(role))
	return nil
}

func (s *service) VerifyCode(ctx context.Context, req *model.VerifyCodeRequest) (string, error) {
	role, phone, err := s.resolvePhone(req.Role)
	if err != nil {
		return "", err
	}

	if err := s.allow(ctx, phone, ratelimit.OpVerifyCode); err != nil {
		return "", err
	}

	approved, err := s.verifier.CheckVerification(ctx, phone, req.Code)
	if err != nil {
		s.logger.Error(err, "failed to check verification", "role", string(role))
		return "", fmt.Errorf("failed to verify code: %w", err)
	}
	if !approved {
		return "", apperrors.Unauthorized(errors.New("invalid or expired verification code"))
	}

	token, err := s.jwtSvc.GenerateSessionToken(string(role))
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.Info("admin logged in", "role", string(role))
	return token, nil
}

func (s *service) ValidateSession(token string) (model.AdminRole, error) {
	roleStr, err := s.jwtSvc.ValidateSessionToken(token)
	if err != nil {
		return "", apperrors.Unauthorized(err)
	}

	role := model.AdminRole(roleStr)
	if !role.Valid() {
		return "", apperrors.Unauthorized(fmt.Errorf("unknown role %q in session", roleStr))
	}
	return role, nil
}

func (s *service) resolvePhone(roleStr string) (model.AdminRole, string, error) {
	role := model.AdminRole(roleStr)
	if !role.Valid() {
		return "", "", apperrors.BadRequest("invalid role, must be 'web' or 'office'", nil)
	}

	phone := s.phones[role]
	if phone == "" {
		return "", "", apperrors.Configuration(
			fmt.Sprintf("no phone number configured for %s", role.Label()), nil)
	}
	return role, phone, nil
}

func (s *service) allow(ctx context.Context, phone string, op ratelimit.Operation) error {
	result, err := s.limiter.Allow(ctx, phone, op)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !result.Allowed {
		seconds := int(math.Ceil(result.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		return apperrors.TooManyRequests(
			fmt.Sprintf("too many attempts, try again in %d seconds", seconds))
	}
	return nil
}
