package licensetype

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

type Service interface {
	// Create is idempotent on the case-insensitive name: an existing type is
	// returned rather than duplicated.
	Create(ctx context.Context, req *model.CreateLicenseTypeRequest) (*model.LicenseType, bool, error)
	List(ctx context.Context) ([]*model.LicenseType, error)
	Get(ctx context.Context, id uuid.UUID) (*model.LicenseType, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CreateLicenseTypeRequest) (*model.LicenseType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        repository.LicenseTypeRepository
	licenseRepo repository.LicenseRepository
}

func NewService(repo repository.LicenseTypeRepository, licenseRepo repository.LicenseRepository) Service {
	return &service{repo: repo, licenseRepo: licenseRepo}
}

func (s *service) Create(ctx context.Context, req *model.CreateLicenseTypeRequest) (*model.LicenseType, bool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, false, apperrors.BadRequest("license type name is required", nil)
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up license type: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	lt := &model.LicenseType{
		Base:        model.Base{ID: uuid.New()},
		Name:        name,
		Description: optional(strings.TrimSpace(req.Description)),
	}
	if err := s.repo.Create(ctx, lt); err != nil {
		return nil, false, fmt.Errorf("failed to create license type: %w", err)
	}
	return lt, true, nil
}

func (s *service) List(ctx context.Context) ([]*model.LicenseType, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.LicenseType, error) {
	lt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("license type", err)
	}
	return lt, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.CreateLicenseTypeRequest) (*model.LicenseType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.BadRequest("license type name is required", nil)
	}

	lt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("license type", err)
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up license type: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, apperrors.Conflict("a license type with this name already exists", nil)
	}

	lt.Name = name
	lt.Description = optional(strings.TrimSpace(req.Description))
	if err := s.repo.Update(ctx, lt); err != nil {
		return nil, fmt.Errorf("failed to update license type: %w", err)
	}
	return lt, nil
}

// Delete refuses while any license still references the type.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	lt, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.NotFound("license type", err)
	}

	count, err := s.licenseRepo.CountByType(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count licenses for type: %w", err)
	}
	if count > 0 {
		return apperrors.BadRequest(
			fmt.Sprintf("cannot delete %q because it has %d license(s) associated with it", lt.Name, count), nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete license type: %w", err)
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
