// Package status classifies license expiry dates into urgency buckets. All
// functions are pure: callers supply the reference time.
package status

import (
	"fmt"
	"time"

	"github.com/jwalitptl/license-monitor/internal/model"
)

type Status string

const (
	StatusExpired  Status = "expired"
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusCaution  Status = "caution"
	StatusValid    Status = "valid"
	StatusReplaced Status = "replaced"
)

// Info is the classification of a single license.
type Info struct {
	Status    Status `json:"status"`
	DaysUntil int    `json:"days_until"`
	Label     string `json:"label"`
}

// Classify buckets an expiry date by calendar days remaining. Thresholds,
// lowest bound first: <0 expired, ≤30 critical, ≤60 warning, ≤90 caution,
// otherwise valid.
func Classify(now, expiry time.Time) Info {
	days := daysBetween(now, expiry)

	switch {
	case days < 0:
		return Info{Status: StatusExpired, DaysUntil: days, Label: "Expired"}
	case days <= 30:
		return Info{Status: StatusCritical, DaysUntil: days, Label: daysLabel(days)}
	case days <= 60:
		return Info{Status: StatusWarning, DaysUntil: days, Label: daysLabel(days)}
	case days <= 90:
		return Info{Status: StatusCaution, DaysUntil: days, Label: daysLabel(days)}
	default:
		return Info{Status: StatusValid, DaysUntil: days, Label: "Valid"}
	}
}

// ClassifyLicense classifies a license record. A replaced license reports the
// replaced status regardless of its date; DaysUntil is still computed so
// callers can sort.
func ClassifyLicense(now time.Time, license *model.License) Info {
	if license.Status == model.LicenseStatusReplaced {
		return Info{
			Status:    StatusReplaced,
			DaysUntil: daysBetween(now, license.ExpiryDate),
			Label:     "Replaced",
		}
	}
	return Classify(now, license.ExpiryDate)
}

// Worst returns the most urgent classification among the given licenses,
// skipping replaced records. ok is false when nothing remains to classify.
// Ties keep the earlier entry, so the pick is stable for a given input order.
func Worst(now time.Time, licenses []*model.License) (Info, bool) {
	var worst Info
	found := false
	for _, license := range licenses {
		if license.Status == model.LicenseStatusReplaced {
			continue
		}
		info := Classify(now, license.ExpiryDate)
		if !found || info.DaysUntil < worst.DaysUntil {
			worst = info
			found = true
		}
	}
	return worst, found
}

// AlertLevel maps an urgency bucket to the alert level it should fire at,
// honoring the per-threshold setting flags. Expired licenses always alert.
// ok is false when the bucket needs no alert.
func AlertLevel(info Info, settings *model.AlertSetting) (model.AlertLevel, bool) {
	switch info.Status {
	case StatusExpired:
		return model.AlertLevelExpired, true
	case StatusCritical:
		if settings.Warning30Days {
			return model.AlertLevel30Days, true
		}
	case StatusWarning:
		if settings.Warning60Days {
			return model.AlertLevel60Days, true
		}
	case StatusCaution:
		if settings.Warning90Days {
			return model.AlertLevel90Days, true
		}
	}
	return "", false
}

// daysBetween is the whole calendar-day difference from now to expiry,
// negative once the expiry date has passed.
func daysBetween(now, expiry time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiryDay := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiryDay.Sub(nowDay).Hours() / 24)
}

func daysLabel(days int) string {
	return fmt.Sprintf("%dd left", days)
}
