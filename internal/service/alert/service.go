package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/notifier"
	"github.com/jwalitptl/license-monitor/internal/repository"
	"github.com/jwalitptl/license-monitor/internal/service/status"
	"github.com/jwalitptl/license-monitor/pkg/logger"
	"github.com/jwalitptl/license-monitor/pkg/metrics"
)

const (
	// sweepHorizonDays bounds the sweep to licenses due inside the widest
	// alert threshold.
	sweepHorizonDays = 90
	// dedupWindow suppresses re-sends while a license sits in the same
	// bucket.
	dedupWindow = 7 * 24 * time.Hour
	// recentLogsLimit caps the audit history view.
	recentLogsLimit = 50
)

type Service interface {
	// RunExpirySweep scans active licenses due within 90 days and dispatches
	// alerts per the configured channels. Safe to call with no arguments'
	// worth of state; re-running inside the dedup window sends nothing new.
	RunExpirySweep(ctx context.Context) (*model.SweepResult, error)
	GetSettings(ctx context.Context) (*model.AlertSetting, error)
	UpdateSettings(ctx context.Context, req *model.UpdateAlertSettingRequest) (*model.AlertSetting, error)
	ListLogs(ctx context.Context) ([]*model.AlertLogDetail, error)
}

type service struct {
	settingsRepo repository.AlertSettingRepository
	licenseRepo  repository.LicenseRepository
	logRepo      repository.AlertLogRepository
	email        notifier.EmailSender
	sms          notifier.SMSSender
	logger       *logger.Logger
	metrics      *metrics.Metrics
	nowFn        func() time.Time
}

func NewService(
	settingsRepo repository.AlertSettingRepository,
	licenseRepo repository.LicenseRepository,
	logRepo repository.AlertLogRepository,
	email notifier.EmailSender,
	sms notifier.SMSSender,
	log *logger.Logger,
	m *metrics.Metrics,
) Service {
	return &service{
		settingsRepo: settingsRepo,
		licenseRepo:  licenseRepo,
		logRepo:      logRepo,
		email:        email,
		sms:          sms,
		logger:       log,
		metrics:      m,
		nowFn:        time.Now,
	}
}

func (s *service) RunExpirySweep(ctx context.Context) (*model.SweepResult, error) {
	timer := prometheus.NewTimer(s.metrics.SweepDuration)
	defer timer.ObserveDuration()

	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert settings: %w", err)
	}

	if !settings.EmailEnabled && !settings.SMSEnabled {
		return &model.SweepResult{Message: "all notifications disabled"}, nil
	}

	now := s.nowFn()
	cutoff := now.AddDate(0, 0, sweepHorizonDays)

	licenses, err := s.licenseRepo.ListActiveExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring licenses: %w", err)
	}

	result := &model.SweepResult{Checked: len(licenses), Message: "check complete"}
	s.metrics.SweepLicensesChecked.Add(float64(len(licenses)))

	for _, license := range licenses {
		info := status.Classify(now, license.ExpiryDate)
		level, ok := status.AlertLevel(info, settings)
		if !ok {
			continue
		}

		recent, err := s.logRepo.HasRecentSuccess(ctx, license.ID, level, now.Add(-dedupWindow))
		if err != nil {
			s.logger.Error(err, "failed to check alert history", "license_id", license.ID.String())
			result.Errors++
			continue
		}
		if recent {
			continue
		}

		alert := notifier.ExpiryAlert{
			WorkerName:      license.WorkerName(),
			LicenseTypeName: license.LicenseTypeName,
			LicenseCode:     license.Code,
			ExpiryDate:      license.ExpiryDate,
			Level:           level,
		}

		if settings.EmailEnabled && settings.RecipientEmail != nil {
			s.dispatch(ctx, license, level, model.AlertChannelEmail, result, func() error {
				return s.email.SendExpiryAlert(ctx, *settings.RecipientEmail, alert)
			})
		}
		if settings.SMSEnabled && settings.RecipientPhone != nil {
			s.dispatch(ctx, license, level, model.AlertChannelSMS, result, func() error {
				return s.sms.SendExpiryAlert(ctx, *settings.RecipientPhone, alert)
			})
		}
	}

	s.logger.Info("expiry sweep finished",
		"checked", result.Checked,
		"alerts_sent", result.AlertsSent,
		"errors", result.Errors)
	return result, nil
}

// dispatch sends on one channel and records the attempt. Failures count
// toward the sweep's error total but never abort it.
func (s *service) dispatch(ctx context.Context, license *model.LicenseDetail, level model.AlertLevel, channel model.AlertChannel, result *model.SweepResult, send func() error) {
	sendErr := send()

	log := &model.AlertLog{
		ID:         uuid.New(),
		LicenseID:  license.ID,
		Channel:    channel,
		AlertLevel: level,
		Success:    sendErr == nil,
		SentAt:     s.nowFn(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		log.Error = &msg
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Error(err, "failed to record alert log",
			"license_id", license.ID.String(),
			"channel", string(channel))
	}

	if sendErr != nil {
		s.logger.Error(sendErr, "alert dispatch failed",
			"license_id", license.ID.String(),
			"channel", string(channel),
			"level", string(level))
		s.metrics.SweepErrors.WithLabelValues(string(channel)).Inc()
		result.Errors++
		return
	}

	s.metrics.SweepAlertsSent.WithLabelValues(string(channel), string(level)).Inc()
	result.AlertsSent++
}

func (s *service) GetSettings(ctx context.Context) (*model.AlertSetting, error) {
	return s.settingsRepo.GetOrCreate(ctx)
}

func (s *service) UpdateSettings(ctx context.Context, req *model.UpdateAlertSettingRequest) (*model.AlertSetting, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert settings: %w", err)
	}

	settings.EmailEnabled = req.EmailEnabled
	settings.SMSEnabled = req.SMSEnabled
	settings.Warning90Days = req.Warning90Days
	settings.Warning60Days = req.Warning60Days
	settings.Warning30Days = req.Warning30Days
	settings.RecipientEmail = optional(req.RecipientEmail)
	settings.RecipientPhone = optional(req.RecipientPhone)

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update alert settings: %w", err)
	}
	return settings, nil
}

func (s *service) ListLogs(ctx context.Context) ([]*model.AlertLogDetail, error) {
	return s.logRepo.ListRecent(ctx, recentLogsLimit)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
