package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
)

type requiredTypeRepository struct {
	db *sqlx.DB
}

func NewRequiredTypeRepository(db *sqlx.DB) repository.RequiredTypeRepository {
	return &requiredTypeRepository{db: db}
}

func (r *requiredTypeRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*model.RequiredLicenseType, error) {
	query := `
		SELECT rt.id, rt.worker_id, rt.license_type_id, lt.name AS license_type_name
		FROM worker_required_license_types rt
		JOIN license_types lt ON lt.id = rt.license_type_id
		WHERE rt.worker_id = $1
		ORDER BY lt.name ASC
	`
	entries := []*model.RequiredLicenseType{}
	if err := r.db.SelectContext(ctx, &entries, query, workerID); err != nil {
		return nil, fmt.Errorf("failed to list required types: %w", err)
	}
	return entries, nil
}

func (r *requiredTypeRepository) ListAll(ctx context.Context) ([]*model.RequiredLicenseType, error) {
	query := `
		SELECT rt.id, rt.worker_id, rt.license_type_id, lt.name AS license_type_name
		FROM worker_required_license_types rt
		JOIN license_types lt ON lt.id = rt.license_type_id
		ORDER BY lt.name ASC
	`
	entries := []*model.RequiredLicenseType{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list required types: %w", err)
	}
	return entries, nil
}

func (r *requiredTypeRepository) ReplaceForWorker(ctx context.Context, workerID uuid.UUID, typeIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM worker_required_license_types WHERE worker_id = $1`, workerID); err != nil {
		return fmt.Errorf("failed to clear required types: %w", err)
	}

	insert := `
		INSERT INTO worker_required_license_types (id, worker_id, license_type_id)
		VALUES ($1, $2, $3)
	`
	for _, typeID := range typeIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.New(), workerID, typeID); err != nil {
			return fmt.Errorf("failed to insert required type %s: %w", typeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit required type replacement: %w", err)
	}
	return nil
}
