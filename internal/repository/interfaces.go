package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/model"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	List(ctx context.Context, filters *model.WorkerFilters) ([]*model.Worker, error)
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type LicenseRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.License, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.LicenseDetail, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*model.License, error)
	ListDetails(ctx context.Context) ([]*model.LicenseDetail, error)
	ListActive(ctx context.Context) ([]*model.License, error)
	// ListActiveExpiringBefore returns active licenses with expiry on or
	// before the cutoff, joined with worker and type, expiry ascending.
	ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]*model.LicenseDetail, error)
	// FindExact looks up a record matching every identifying field, any
	// status. Returns nil, nil when absent.
	FindExact(ctx context.Context, workerID, typeID uuid.UUID, issue, expiry time.Time, code *string) (*model.License, error)
	// GetActiveForType returns the single active license for the pair, or
	// nil, nil when the worker holds none of this type.
	GetActiveForType(ctx context.Context, workerID, typeID uuid.UUID) (*model.License, error)
	// CreateWithSupersede inserts the license and, when supersede is set,
	// demotes the pair's currently active rows to replaced in the same
	// transaction.
	CreateWithSupersede(ctx context.Context, license *model.License, supersede bool) error
	Update(ctx context.Context, license *model.License) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	CountByType(ctx context.Context, typeID uuid.UUID) (int, error)
}

type LicenseTypeRepository interface {
	Create(ctx context.Context, lt *model.LicenseType) error
	Get(ctx context.Context, id uuid.UUID) (*model.LicenseType, error)
	// GetByName matches case-insensitively. Returns nil, nil when absent.
	GetByName(ctx context.Context, name string) (*model.LicenseType, error)
	List(ctx context.Context) ([]*model.LicenseType, error)
	Update(ctx context.Context, lt *model.LicenseType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RequiredTypeRepository interface {
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*model.RequiredLicenseType, error)
	ListAll(ctx context.Context) ([]*model.RequiredLicenseType, error)
	// ReplaceForWorker swaps the worker's full requirement set atomically.
	ReplaceForWorker(ctx context.Context, workerID uuid.UUID, typeIDs []uuid.UUID) error
}

type AlertLogRepository interface {
	Create(ctx context.Context, log *model.AlertLog) error
	// HasRecentSuccess reports whether a successful alert for the same
	// (license, level) was sent at or after since.
	HasRecentSuccess(ctx context.Context, licenseID uuid.UUID, level model.AlertLevel, since time.Time) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*model.AlertLogDetail, error)
}

type AlertSettingRepository interface {
	// GetOrCreate returns the singleton settings row, creating the default
	// one on first read.
	GetOrCreate(ctx context.Context) (*model.AlertSetting, error)
	Update(ctx context.Context, settings *model.AlertSetting) error
}
