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

type licenseRepository struct {
	db *sqlx.DB
}

func NewLicenseRepository(db *sqlx.DB) repository.LicenseRepository {
	return &licenseRepository{db: db}
}

const licenseDetailColumns = `
	l.id, l.worker_id, l.license_type_id, l.code, l.issue_date, l.expiry_date,
	l.status, l.notes, l.created_at, l.updated_at,
	lt.name AS license_type_name,
	w.first_name AS worker_first_name,
	w.last_name AS worker_last_name,
	w.position AS worker_position
`

func (r *licenseRepository) Get(ctx context.Context, id uuid.UUID) (*model.License, error) {
	query := `SELECT * FROM licenses WHERE id = $1`
	var license model.License
	err := r.db.GetContext(ctx, &license, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("license not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return &license, nil
}

func (r *licenseRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.LicenseDetail, error) {
	query := `
		SELECT ` + licenseDetailColumns + `
		FROM licenses l
		JOIN license_types lt ON lt.id = l.license_type_id
		JOIN workers w ON w.id = l.worker_id
		WHERE l.id = $1
	`
	var detail model.LicenseDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("license not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get license detail: %w", err)
	}
	return &detail, nil
}

func (r *licenseRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*model.License, error) {
	query := `SELECT * FROM licenses WHERE worker_id = $1 ORDER BY expiry_date ASC`
	licenses := []*model.License{}
	if err := r.db.SelectContext(ctx, &licenses, query, workerID); err != nil {
		return nil, fmt.Errorf("failed to list worker licenses: %w", err)
	}
	return licenses, nil
}

func (r *licenseRepository) ListDetails(ctx context.Context) ([]*model.LicenseDetail, error) {
	query := `
		SELECT ` + licenseDetailColumns + `
		FROM licenses l
		JOIN license_types lt ON lt.id = l.license_type_id
		JOIN workers w ON w.id = l.worker_id
		ORDER BY l.expiry_date ASC
	`
	details := []*model.LicenseDetail{}
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("failed to list license details: %w", err)
	}
	return details, nil
}

func (r *licenseRepository) ListActive(ctx context.Context) ([]*model.License, error) {
	query := `SELECT * FROM licenses WHERE status = $1`
	licenses := []*model.License{}
	if err := r.db.SelectContext(ctx, &licenses, query, model.LicenseStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list active licenses: %w", err)
	}
	return licenses, nil
}

func (r *licenseRepository) ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]*model.LicenseDetail, error) {
	query := `
		SELECT ` + licenseDetailColumns + `
		FROM licenses l
		JOIN license_types lt ON lt.id = l.license_type_id
		JOIN workers w ON w.id = l.worker_id
		WHERE l.status = $1 AND l.expiry_date <= $2
		ORDER BY l.expiry_date ASC
	`
	details := []*model.LicenseDetail{}
	if err := r.db.SelectContext(ctx, &details, query, model.LicenseStatusActive, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list expiring licenses: %w", err)
	}
	return details, nil
}

func (r *licenseRepository) FindExact(ctx context.Context, workerID, typeID uuid.UUID, issue, expiry time.Time, code *string) (*model.License, error) {
	query := `
		SELECT * FROM licenses
		WHERE worker_id = $1 AND license_type_id = $2 AND issue_date = $3 AND expiry_date = $4
		  AND code IS NOT DISTINCT FROM $5
		LIMIT 1
	`
	var license model.License
	err := r.db.GetContext(ctx, &license, query, workerID, typeID, issue, expiry, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find license: %w", err)
	}
	return &license, nil
}

func (r *licenseRepository) GetActiveForType(ctx context.Context, workerID, typeID uuid.UUID) (*model.License, error) {
	query := `
		SELECT * FROM licenses
		WHERE worker_id = $1 AND license_type_id = $2 AND status = $3
		LIMIT 1
	`
	var license model.License
	err := r.db.GetContext(ctx, &license, query, workerID, typeID, model.LicenseStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active license: %w", err)
	}
	return &license, nil
}

// CreateWithSupersede demotes the pair's active rows and inserts the new one
// in a single transaction, so either both changes land or neither does.
func (r *licenseRepository) CreateWithSupersede(ctx context.Context, license *model.License, supersede bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if supersede {
		demote := `
			UPDATE licenses SET status = $1, updated_at = $2
			WHERE worker_id = $3 AND license_type_id = $4 AND status = $5
		`
		if _, err := tx.ExecContext(ctx, demote,
			model.LicenseStatusReplaced,
			time.Now(),
			license.WorkerID,
			license.LicenseTypeID,
			model.LicenseStatusActive,
		); err != nil {
			return fmt.Errorf("failed to demote active licenses: %w", err)
		}
	}

	insert := `
		INSERT INTO licenses (id, worker_id, license_type_id, code, issue_date, expiry_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	license.CreatedAt = time.Now()
	license.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx, insert,
		license.ID,
		license.WorkerID,
		license.LicenseTypeID,
		license.Code,
		license.IssueDate,
		license.ExpiryDate,
		license.Status,
		license.Notes,
		license.CreatedAt,
		license.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert license: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit license creation: %w", err)
	}
	return nil
}

func (r *licenseRepository) Update(ctx context.Context, license *model.License) error {
	query := `
		UPDATE licenses
		SET license_type_id = $1, code = $2, issue_date = $3, expiry_date = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	license.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		license.LicenseTypeID,
		license.Code,
		license.IssueDate,
		license.ExpiryDate,
		license.Notes,
		license.UpdatedAt,
		license.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update license: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("license not found")
	}
	return nil
}

func (r *licenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM licenses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}
	return nil
}

func (r *licenseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM licenses`); err != nil {
		return 0, fmt.Errorf("failed to count licenses: %w", err)
	}
	return count, nil
}

func (r *licenseRepository) CountByType(ctx context.Context, typeID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM licenses WHERE license_type_id = $1`, typeID); err != nil {
		return 0, fmt.Errorf("failed to count licenses by type: %w", err)
	}
	return count, nil
}
