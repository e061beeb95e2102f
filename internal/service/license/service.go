package license

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
	"github.com/jwalitptl/license-monitor/internal/service/status"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
	"github.com/jwalitptl/license-monitor/pkg/validator"
)

// CreateResult reports how a new license landed: Superseded is set when an
// older active record was demoted, and the License itself carries the
// replaced status when it arrived with an earlier expiry than the one on file.
type CreateResult struct {
	License    *model.License `json:"license"`
	Superseded bool           `json:"superseded"`
}

type Service interface {
	Create(ctx context.Context, req *model.CreateLicenseRequest) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*model.LicenseDetail, error)
	List(ctx context.Context, filters *model.LicenseFilters) ([]*model.LicenseDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateLicenseRequest) (*model.License, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     repository.LicenseRepository
	typeRepo repository.LicenseTypeRepository
	nowFn    func() time.Time
}

func NewService(repo repository.LicenseRepository, typeRepo repository.LicenseTypeRepository) Service {
	return &service{
		repo:     repo,
		typeRepo: typeRepo,
		nowFn:    time.Now,
	}
}

// Create inserts a license, enforcing the one-active-per-(worker, type)
// invariant. The record with the latest expiry date wins the active slot; an
// upload with an earlier expiry than the current active one is stored
// directly as replaced.
func (s *service) Create(ctx context.Context, req *model.CreateLicenseRequest) (*CreateResult, error) {
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid worker id", err)
	}
	typeID, err := uuid.Parse(req.LicenseTypeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid license type id", err)
	}
	issueDate, err := validator.ParseDate(req.IssueDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid issue date", err)
	}
	expiryDate, err := validator.ParseDate(req.ExpiryDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid expiry date", err)
	}

	code := optional(req.Code)

	duplicate, err := s.repo.FindExact(ctx, workerID, typeID, issueDate, expiryDate, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate license: %w", err)
	}
	if duplicate != nil {
		typeName := req.LicenseTypeID
		if lt, err := s.typeRepo.Get(ctx, typeID); err == nil {
			typeName = lt.Name
		}
		return nil, apperrors.Conflict(fmt.Sprintf("this exact %q license already exists", typeName), nil)
	}

	existingActive, err := s.repo.GetActiveForType(ctx, workerID, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active license: %w", err)
	}

	// latest expiry wins; on an exact tie the new record takes over
	newIsActive := existingActive == nil || !expiryDate.Before(existingActive.ExpiryDate)

	license := &model.License{
		Base:          model.Base{ID: uuid.New()},
		WorkerID:      workerID,
		LicenseTypeID: typeID,
		Code:          code,
		IssueDate:     issueDate,
		ExpiryDate:    expiryDate,
		Notes:         optional(req.Notes),
		Status:        model.LicenseStatusActive,
	}
	if !newIsActive {
		license.Status = model.LicenseStatusReplaced
	}

	supersede := newIsActive && existingActive != nil
	if err := s.repo.CreateWithSupersede(ctx, license, supersede); err != nil {
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	return &CreateResult{License: license, Superseded: supersede}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.LicenseDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("license", err)
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, filters *model.LicenseFilters) ([]*model.LicenseDetail, error) {
	now := s.nowFn()

	if filters != nil && filters.Bucket != "" {
		// Expiry dates are stored at midnight, so raw timestamp comparison
		// against a mid-day now misfiles a license expiring today. Bucket
		// membership follows the calendar-day classifier: the repo query is
		// only a coarse prefilter.
		switch filters.Bucket {
		case "expired":
			details, err := s.repo.ListActiveExpiringBefore(ctx, now)
			if err != nil {
				return nil, err
			}
			expired := details[:0]
			for _, d := range details {
				if status.Classify(now, d.ExpiryDate).Status == status.StatusExpired {
					expired = append(expired, d)
				}
			}
			return expired, nil
		case "expiring":
			details, err := s.repo.ListActiveExpiringBefore(ctx, now.AddDate(0, 0, 90))
			if err != nil {
				return nil, err
			}
			// due soon, today included
			upcoming := details[:0]
			for _, d := range details {
				if status.Classify(now, d.ExpiryDate).Status != status.StatusExpired {
					upcoming = append(upcoming, d)
				}
			}
			return upcoming, nil
		default:
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown bucket %q", filters.Bucket), nil)
		}
	}

	return s.repo.ListDetails(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateLicenseRequest) (*model.License, error) {
	license, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("license", err)
	}

	typeID, err := uuid.Parse(req.LicenseTypeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid license type id", err)
	}
	issueDate, err := validator.ParseDate(req.IssueDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid issue date", err)
	}
	expiryDate, err := validator.ParseDate(req.ExpiryDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid expiry date", err)
	}

	license.LicenseTypeID = typeID
	license.Code = optional(req.Code)
	license.IssueDate = issueDate
	license.ExpiryDate = expiryDate
	license.Notes = optional(req.Notes)

	if err := s.repo.Update(ctx, license); err != nil {
		return nil, fmt.Errorf("failed to update license: %w", err)
	}
	return license, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
