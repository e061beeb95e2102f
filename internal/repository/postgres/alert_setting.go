package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
)

type alertSettingRepository struct {
	db *sqlx.DB
}

func NewAlertSettingRepository(db *sqlx.DB) repository.AlertSettingRepository {
	return &alertSettingRepository{db: db}
}

func (r *alertSettingRepository) GetOrCreate(ctx context.Context) (*model.AlertSetting, error) {
	var settings model.AlertSetting
	err := r.db.GetContext(ctx, &settings, `SELECT * FROM alert_settings LIMIT 1`)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get alert settings: %w", err)
	}

	// first read seeds the defaults: channels off, all warning levels on
	settings = model.AlertSetting{
		ID:            uuid.New(),
		EmailEnabled:  false,
		SMSEnabled:    false,
		Warning90Days: true,
		Warning60Days: true,
		Warning30Days: true,
		UpdatedAt:     time.Now(),
	}
	insert := `
		INSERT INTO alert_settings (id, email_enabled, sms_enabled, warning_90_days, warning_60_days, warning_30_days, recipient_email, recipient_phone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := r.db.ExecContext(ctx, insert,
		settings.ID,
		settings.EmailEnabled,
		settings.SMSEnabled,
		settings.Warning90Days,
		settings.Warning60Days,
		settings.Warning30Days,
		settings.RecipientEmail,
		settings.RecipientPhone,
		settings.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create default alert settings: %w", err)
	}
	return &settings, nil
}

func (r *alertSettingRepository) Update(ctx context.Context, settings *model.AlertSetting) error {
	query := `
		UPDATE alert_settings
		SET email_enabled = $1, sms_enabled = $2, warning_90_days = $3, warning_60_days = $4,
		    warning_30_days = $5, recipient_email = $6, recipient_phone = $7, updated_at = $8
		WHERE id = $9
	`
	settings.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		settings.EmailEnabled,
		settings.SMSEnabled,
		settings.Warning90Days,
		settings.Warning60Days,
		settings.Warning30Days,
		settings.RecipientEmail,
		settings.RecipientPhone,
		settings.UpdatedAt,
		settings.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert settings: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("alert settings not found")
	}
	return nil
}
