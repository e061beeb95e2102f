package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
)

type alertLogRepository struct {
	db *sqlx.DB
}

func NewAlertLogRepository(db *sqlx.DB) repository.AlertLogRepository {
	return &alertLogRepository{db: db}
}

func (r *alertLogRepository) Create(ctx context.Context, log *model.AlertLog) error {
	query := `
		INSERT INTO alert_logs (id, license_id, channel, alert_level, success, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if log.SentAt.IsZero() {
		log.SentAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.LicenseID,
		log.Channel,
		log.AlertLevel,
		log.Success,
		log.Error,
		log.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert log: %w", err)
	}
	return nil
}

func (r *alertLogRepository) HasRecentSuccess(ctx context.Context, licenseID uuid.UUID, level model.AlertLevel, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alert_logs
			WHERE license_id = $1 AND alert_level = $2 AND success = TRUE AND sent_at >= $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, licenseID, level, since); err != nil {
		return false, fmt.Errorf("failed to check recent alerts: %w", err)
	}
	return exists, nil
}

func (r *alertLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.AlertLogDetail, error) {
	query := `
		SELECT al.id, al.license_id, al.channel, al.alert_level, al.success, al.error, al.sent_at,
		       lt.name AS license_type_name,
		       w.first_name AS worker_first_name,
		       w.last_name AS worker_last_name,
		       l.expiry_date
		FROM alert_logs al
		JOIN licenses l ON l.id = al.license_id
		JOIN license_types lt ON lt.id = l.license_type_id
		JOIN workers w ON w.id = l.worker_id
		ORDER BY al.sent_at DESC
		LIMIT $1
	`
	logs := []*model.AlertLogDetail{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list alert logs: %w", err)
	}
	return logs, nil
}
