package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/license-monitor/internal/model"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type emailSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewEmailSender(cfg SMTPConfig) EmailSender {
	return &emailSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *emailSender) SendExpiryAlert(_ context.Context, recipient string, alert ExpiryAlert) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return apperrors.Configuration("SMTP not configured", nil)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", emailSubject(alert))
	msg.SetBody("text/plain", emailBody(alert))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func emailSubject(alert ExpiryAlert) string {
	codeStr := ""
	if alert.LicenseCode != nil {
		codeStr = fmt.Sprintf(" (%s)", *alert.LicenseCode)
	}
	if alert.Level == model.AlertLevelExpired {
		return fmt.Sprintf("EXPIRED: %s - %s%s", alert.WorkerName, alert.LicenseTypeName, codeStr)
	}
	return fmt.Sprintf("License Expiring: %s - %s%s", alert.WorkerName, alert.LicenseTypeName, codeStr)
}

func emailBody(alert ExpiryAlert) string {
	codeStr := ""
	if alert.LicenseCode != nil {
		codeStr = fmt.Sprintf(" (%s)", *alert.LicenseCode)
	}
	expiry := alert.ExpiryDate.Format("January 2, 2006")

	if alert.Level == model.AlertLevelExpired {
		return fmt.Sprintf(
			"The following license has EXPIRED:\n\nWorker: %s\nLicense: %s%s\nExpired on: %s\n\nPlease arrange renewal immediately.",
			alert.WorkerName, alert.LicenseTypeName, codeStr, expiry)
	}
	return fmt.Sprintf(
		"The following license is expiring soon:\n\nWorker: %s\nLicense: %s%s\nExpiry Date: %s\nAlert Level: %s\n\nPlease arrange renewal before the expiry date.",
		alert.WorkerName, alert.LicenseTypeName, codeStr, expiry, alert.Level)
}
