// Package notifier holds the outbound channels: SMTP email, Twilio SMS, and
// the Twilio Verify OTP flow.
package notifier

import (
	"context"
	"time"

	"github.com/jwalitptl/license-monitor/internal/model"
)

// ExpiryAlert carries everything a channel needs to render one alert.
type ExpiryAlert struct {
	WorkerName      string
	LicenseTypeName string
	LicenseCode     *string
	ExpiryDate      time.Time
	Level           model.AlertLevel
}

type EmailSender interface {
	SendExpiryAlert(ctx context.Context, recipient string, alert ExpiryAlert) error
}

type SMSSender interface {
	SendExpiryAlert(ctx context.Context, recipient string, alert ExpiryAlert) error
}

// OTPVerifier starts and checks one-time-password verifications for the
// login flow.
type OTPVerifier interface {
	StartVerification(ctx context.Context, phone string) error
	CheckVerification(ctx context.Context, phone, code string) (bool, error)
}
