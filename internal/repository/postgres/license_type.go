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

type licenseTypeRepository struct {
	db *sqlx.DB
}

func NewLicenseTypeRepository(db *sqlx.DB) repository.LicenseTypeRepository {
	return &licenseTypeRepository{db: db}
}

func (r *licenseTypeRepository) Create(ctx context.Context, lt *model.LicenseType) error {
	query := `
		INSERT INTO license_types (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	lt.CreatedAt = time.Now()
	lt.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, lt.ID, lt.Name, lt.Description, lt.CreatedAt, lt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create license type: %w", err)
	}
	return nil
}

func (r *licenseTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.LicenseType, error) {
	query := `SELECT * FROM license_types WHERE id = $1`
	var lt model.LicenseType
	err := r.db.GetContext(ctx, &lt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("license type not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get license type: %w", err)
	}
	return &lt, nil
}

func (r *licenseTypeRepository) GetByName(ctx context.Context, name string) (*model.LicenseType, error) {
	query := `SELECT * FROM license_types WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var lt model.LicenseType
	err := r.db.GetContext(ctx, &lt, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get license type by name: %w", err)
	}
	return &lt, nil
}

func (r *licenseTypeRepository) List(ctx context.Context) ([]*model.LicenseType, error) {
	query := `SELECT * FROM license_types ORDER BY name ASC`
	types := []*model.LicenseType{}
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list license types: %w", err)
	}
	return types, nil
}

func (r *licenseTypeRepository) Update(ctx context.Context, lt *model.LicenseType) error {
	query := `UPDATE license_types SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	lt.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, lt.Name, lt.Description, lt.UpdatedAt, lt.ID)
	if err != nil {
		return fmt.Errorf("failed to update license type: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("license type not found")
	}
	return nil
}

func (r *licenseTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM license_types WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete license type: %w", err)
	}
	return nil
}
