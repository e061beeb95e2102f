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

type workerRepository struct {
	db *sqlx.DB
}

func NewWorkerRepository(db *sqlx.DB) repository.WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) error {
	query := `
		INSERT INTO workers (id, first_name, last_name, email, phone, position, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	worker.CreatedAt = time.Now()
	worker.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		worker.ID,
		worker.FirstName,
		worker.LastName,
		worker.Email,
		worker.Phone,
		worker.Position,
		worker.Notes,
		worker.CreatedAt,
		worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

func (r *workerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	query := `SELECT * FROM workers WHERE id = $1`
	var worker model.Worker
	err := r.db.GetContext(ctx, &worker, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("worker not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &worker, nil
}

func (r *workerRepository) List(ctx context.Context, filters *model.WorkerFilters) ([]*model.Worker, error) {
	query := `SELECT * FROM workers`
	args := []interface{}{}
	if filters != nil && filters.Search != "" {
		query += ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR position ILIKE $1`
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY last_name ASC, first_name ASC`

	workers := []*model.Worker{}
	if err := r.db.SelectContext(ctx, &workers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) error {
	query := `
		UPDATE workers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, position = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	worker.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		worker.FirstName,
		worker.LastName,
		worker.Email,
		worker.Phone,
		worker.Position,
		worker.Notes,
		worker.UpdatedAt,
		worker.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update worker: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("worker not found")
	}
	return nil
}

func (r *workerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// licenses and requirement rows go with the worker via FK cascade
	query := `DELETE FROM workers WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	return nil
}

func (r *workerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM workers`); err != nil {
		return 0, fmt.Errorf("failed to count workers: %w", err)
	}
	return count, nil
}
