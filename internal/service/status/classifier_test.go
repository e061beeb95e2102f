package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/license-monitor/internal/model"
)

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func expiryIn(days int) time.Time {
	return testNow.AddDate(0, 0, days)
}

func TestClassify_Buckets(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		status    Status
		label     string
	}{
		{"ten days past", -10, StatusExpired, "Expired"},
		{"yesterday", -1, StatusExpired, "Expired"},
		{"today", 0, StatusCritical, "0d left"},
		{"mid critical", 25, StatusCritical, "25d left"},
		{"critical upper bound", 30, StatusCritical, "30d left"},
		{"warning lower bound", 31, StatusWarning, "31d left"},
		{"warning upper bound", 60, StatusWarning, "60d left"},
		{"caution lower bound", 61, StatusCaution, "61d left"},
		{"caution upper bound", 90, StatusCaution, "90d left"},
		{"valid", 91, StatusValid, "Valid"},
		{"far future", 400, StatusValid, "Valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Classify(testNow, expiryIn(tt.days))
			assert.Equal(t, tt.status, info.Status)
			assert.Equal(t, tt.days, info.DaysUntil)
			assert.Equal(t, tt.label, info.Label)
		})
	}
}

func TestClassify_ExpiredIffInPast(t *testing.T) {
	for days := -120; days <= 120; days++ {
		info := Classify(testNow, expiryIn(days))
		assert.Equal(t, days < 0, info.Status == StatusExpired, "days=%d", days)
		if days >= 0 && days <= 30 {
			assert.Equal(t, StatusCritical, info.Status, "days=%d", days)
		}
	}
}

func TestClassify_TimeOfDayIgnored(t *testing.T) {
	// classification works on calendar days, so a late-evening expiry on the
	// same date still counts as today
	expiry := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	info := Classify(testNow, expiry)
	assert.Equal(t, 0, info.DaysUntil)
	assert.Equal(t, StatusCritical, info.Status)
}

func TestClassifyLicense_ReplacedOverride(t *testing.T) {
	license := &model.License{
		ExpiryDate: expiryIn(200),
		Status:     model.LicenseStatusReplaced,
	}
	info := ClassifyLicense(testNow, license)
	assert.Equal(t, StatusReplaced, info.Status)
	assert.Equal(t, "Replaced", info.Label)
	assert.Equal(t, 200, info.DaysUntil)
}

func TestClassifyLicense_ActiveUsesDate(t *testing.T) {
	license := &model.License{
		ExpiryDate: expiryIn(25),
		Status:     model.LicenseStatusActive,
	}
	info := ClassifyLicense(testNow, license)
	assert.Equal(t, StatusCritical, info.Status)
	assert.Equal(t, 25, info.DaysUntil)
	assert.Equal(t, "25d left", info.Label)
}

func TestWorst(t *testing.T) {
	active := func(days int) *model.License {
		return &model.License{ExpiryDate: expiryIn(days), Status: model.LicenseStatusActive}
	}
	replaced := func(days int) *model.License {
		return &model.License{ExpiryDate: expiryIn(days), Status: model.LicenseStatusReplaced}
	}

	t.Run("picks most urgent", func(t *testing.T) {
		info, ok := Worst(testNow, []*model.License{active(120), active(5), active(45)})
		assert.True(t, ok)
		assert.Equal(t, 5, info.DaysUntil)
		assert.Equal(t, StatusCritical, info.Status)
	})

	t.Run("ignores replaced", func(t *testing.T) {
		info, ok := Worst(testNow, []*model.License{replaced(-30), active(45)})
		assert.True(t, ok)
		assert.Equal(t, 45, info.DaysUntil)
	})

	t.Run("empty after filtering", func(t *testing.T) {
		_, ok := Worst(testNow, []*model.License{replaced(10)})
		assert.False(t, ok)

		_, ok = Worst(testNow, nil)
		assert.False(t, ok)
	})

	t.Run("tie keeps first", func(t *testing.T) {
		first := active(10)
		second := active(10)
		infoA, _ := Worst(testNow, []*model.License{first, second})
		infoB, _ := Worst(testNow, []*model.License{first, second})
		assert.Equal(t, infoA, infoB)
	})
}

func TestAlertLevel(t *testing.T) {
	allOn := &model.AlertSetting{Warning90Days: true, Warning60Days: true, Warning30Days: true}
	allOff := &model.AlertSetting{}

	tests := []struct {
		name     string
		info     Info
		settings *model.AlertSetting
		level    model.AlertLevel
		ok       bool
	}{
		{"expired always fires", Info{Status: StatusExpired}, allOff, model.AlertLevelExpired, true},
		{"critical gated on", Info{Status: StatusCritical}, allOn, model.AlertLevel30Days, true},
		{"critical gated off", Info{Status: StatusCritical}, allOff, "", false},
		{"warning gated on", Info{Status: StatusWarning}, allOn, model.AlertLevel60Days, true},
		{"warning gated off", Info{Status: StatusWarning}, allOff, "", false},
		{"caution gated on", Info{Status: StatusCaution}, allOn, model.AlertLevel90Days, true},
		{"caution gated off", Info{Status: StatusCaution}, allOff, "", false},
		{"valid never fires", Info{Status: StatusValid}, allOn, "", false},
		{"replaced never fires", Info{Status: StatusReplaced}, allOn, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := AlertLevel(tt.info, tt.settings)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, level)
		})
	}
}
