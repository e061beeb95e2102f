package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertLevel string

const (
	AlertLevelExpired AlertLevel = "expired"
	AlertLevel30Days  AlertLevel = "30_days"
	AlertLevel60Days  AlertLevel = "60_days"
	AlertLevel90Days  AlertLevel = "90_days"
)

type AlertChannel string

const (
	AlertChannelEmail AlertChannel = "email"
	AlertChannelSMS   AlertChannel = "sms"
)

// AlertLog is an immutable record of one dispatch attempt on one channel.
type AlertLog struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	LicenseID  uuid.UUID    `db:"license_id" json:"license_id"`
	Channel    AlertChannel `db:"channel" json:"channel"`
	AlertLevel AlertLevel   `db:"alert_level" json:"alert_level"`
	Success    bool         `db:"success" json:"success"`
	Error      *string      `db:"error" json:"error"`
	SentAt     time.Time    `db:"sent_at" json:"sent_at"`
}

// AlertLogDetail joins the log row with license, worker, and type for the
// audit history view.
type AlertLogDetail struct {
	AlertLog
	LicenseTypeName string    `db:"license_type_name" json:"license_type_name"`
	WorkerFirstName string    `db:"worker_first_name" json:"worker_first_name"`
	WorkerLastName  string    `db:"worker_last_name" json:"worker_last_name"`
	ExpiryDate      time.Time `db:"expiry_date" json:"expiry_date"`
}

// AlertSetting is a singleton configuration row, created lazily on first read.
type AlertSetting struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EmailEnabled   bool      `db:"email_enabled" json:"email_enabled"`
	SMSEnabled     bool      `db:"sms_enabled" json:"sms_enabled"`
	Warning90Days  bool      `db:"warning_90_days" json:"warning_90_days"`
	Warning60Days  bool      `db:"warning_60_days" json:"warning_60_days"`
	Warning30Days  bool      `db:"warning_30_days" json:"warning_30_days"`
	RecipientEmail *string   `db:"recipient_email" json:"recipient_email"`
	RecipientPhone *string   `db:"recipient_phone" json:"recipient_phone"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type UpdateAlertSettingRequest struct {
	EmailEnabled   bool   `json:"email_enabled"`
	SMSEnabled     bool   `json:"sms_enabled"`
	Warning90Days  bool   `json:"warning_90_days"`
	Warning60Days  bool   `json:"warning_60_days"`
	Warning30Days  bool   `json:"warning_30_days"`
	RecipientEmail string `json:"recipient_email" binding:"omitempty,email"`
	RecipientPhone string `json:"recipient_phone"`
}

// SweepResult reports one expiry sweep run.
type SweepResult struct {
	Checked    int    `json:"checked"`
	AlertsSent int    `json:"alerts_sent"`
	Errors     int    `json:"errors"`
	Message    string `json:"message,omitempty"`
}

// DashboardStats aggregates license counts per urgency bucket.
type DashboardStats struct {
	TotalWorkers  int              `json:"total_workers"`
	TotalLicenses int              `json:"total_licenses"`
	Expired       int              `json:"expired"`
	Expiring30    int              `json:"expiring_30"`
	Expiring60    int              `json:"expiring_60"`
	Expiring90    int              `json:"expiring_90"`
	Valid         int              `json:"valid"`
	Licenses      []*LicenseDetail `json:"licenses"`
}
