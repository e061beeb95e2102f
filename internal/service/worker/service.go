package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateWorkerRequest) (*model.Worker, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	List(ctx context.Context, filters *model.WorkerFilters) ([]*model.Worker, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CreateWorkerRequest) (*model.Worker, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RequiredTypes(ctx context.Context, workerID uuid.UUID) ([]*model.RequiredLicenseType, error)
	SetRequiredTypes(ctx context.Context, workerID uuid.UUID, typeIDs []string) ([]*model.RequiredLicenseType, error)
	// MissingLicenses reports every required license type not covered by an
	// active license, across all workers.
	MissingLicenses(ctx context.Context) ([]*model.MissingLicense, error)
}

type service struct {
	repo         repository.WorkerRepository
	licenseRepo  repository.LicenseRepository
	requiredRepo repository.RequiredTypeRepository
}

func NewService(repo repository.WorkerRepository, licenseRepo repository.LicenseRepository, requiredRepo repository.RequiredTypeRepository) Service {
	return &service{
		repo:         repo,
		licenseRepo:  licenseRepo,
		requiredRepo: requiredRepo,
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateWorkerRequest) (*model.Worker, error) {
	worker := &model.Worker{
		Base:      model.Base{ID: uuid.New()},
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     optional(req.Email),
		Phone:     optional(req.Phone),
		Position:  optional(req.Position),
		Notes:     optional(req.Notes),
	}
	if err := s.repo.Create(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}
	return worker, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	worker, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("worker", err)
	}

	licenses, err := s.licenseRepo.ListByWorker(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker licenses: %w", err)
	}
	worker.Licenses = licenses
	return worker, nil
}

func (s *service) List(ctx context.Context, filters *model.WorkerFilters) ([]*model.Worker, error) {
	workers, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.CreateWorkerRequest) (*model.Worker, error) {
	worker, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("worker", err)
	}

	worker.FirstName = req.FirstName
	worker.LastName = req.LastName
	worker.Email = optional(req.Email)
	worker.Phone = optional(req.Phone)
	worker.Position = optional(req.Position)
	worker.Notes = optional(req.Notes)

	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, fmt.Errorf("failed to update worker: %w", err)
	}
	return worker, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	return nil
}

func (s *service) RequiredTypes(ctx context.Context, workerID uuid.UUID) ([]*model.RequiredLicenseType, error) {
	return s.requiredRepo.ListByWorker(ctx, workerID)
}

func (s *service) SetRequiredTypes(ctx context.Context, workerID uuid.UUID, typeIDs []string) ([]*model.RequiredLicenseType, error) {
	if _, err := s.repo.Get(ctx, workerID); err != nil {
		return nil, apperrors.NotFound("worker", err)
	}

	parsed := make([]uuid.UUID, 0, len(typeIDs))
	for _, raw := range typeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid license type id %q", raw), err)
		}
		parsed = append(parsed, id)
	}

	if err := s.requiredRepo.ReplaceForWorker(ctx, workerID, parsed); err != nil {
		return nil, fmt.Errorf("failed to replace required types: %w", err)
	}
	return s.requiredRepo.ListByWorker(ctx, workerID)
}

func (s *service) MissingLicenses(ctx context.Context) ([]*model.MissingLicense, error) {
	required, err := s.requiredRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	active, err := s.licenseRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active licenses: %w", err)
	}
	missing := FindMissing(required, active)

	// attach worker names for the report
	for _, entry := range missing {
		w, err := s.repo.Get(ctx, entry.WorkerID)
		if err != nil {
			continue
		}
		entry.WorkerName = w.FullName()
	}
	return missing, nil
}

// FindMissing returns one entry for each required (worker, type) pair with no
// active license covering it. Pure set difference: no duplicates, no
// omissions, input order preserved.
func FindMissing(required []*model.RequiredLicenseType, activeLicenses []*model.License) []*model.MissingLicense {
	type pairKey struct {
		workerID uuid.UUID
		typeID   uuid.UUID
	}

	covered := make(map[pairKey]struct{}, len(activeLicenses))
	for _, l := range activeLicenses {
		covered[pairKey{l.WorkerID, l.LicenseTypeID}] = struct{}{}
	}

	missing := []*model.MissingLicense{}
	for _, entry := range required {
		if _, ok := covered[pairKey{entry.WorkerID, entry.LicenseTypeID}]; ok {
			continue
		}
		missing = append(missing, &model.MissingLicense{
			WorkerID:        entry.WorkerID,
			LicenseTypeID:   entry.LicenseTypeID,
			LicenseTypeName: entry.LicenseTypeName,
		})
	}
	return missing
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
