package dashboard

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/license-monitor/internal/model"
	"github.com/jwalitptl/license-monitor/internal/repository"
	"github.com/jwalitptl/license-monitor/internal/service/status"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second
)

// Service aggregates the fleet-wide license picture. Stats are cached
// briefly since every page load hits this endpoint.
type Service interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

type service struct {
	workerRepo  repository.WorkerRepository
	licenseRepo repository.LicenseRepository
	cache       *gocache.Cache
	nowFn       func() time.Time
}

func NewService(workerRepo repository.WorkerRepository, licenseRepo repository.LicenseRepository) Service {
	return &service{
		workerRepo:  workerRepo,
		licenseRepo: licenseRepo,
		cache:       gocache.New(statsCacheTTL, 2*statsCacheTTL),
		nowFn:       time.Now,
	}
}

func (s *service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	if cached, found := s.cache.Get(statsCacheKey); found {
		return cached.(*model.DashboardStats), nil
	}

	totalWorkers, err := s.workerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count workers: %w", err)
	}

	details, err := s.licenseRepo.ListDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}

	now := s.nowFn()
	stats := &model.DashboardStats{
		TotalWorkers: totalWorkers,
		Licenses:     details,
	}

	for _, detail := range details {
		if detail.Status != model.LicenseStatusActive {
			continue
		}
		stats.TotalLicenses++

		switch status.Classify(now, detail.ExpiryDate).Status {
		case status.StatusExpired:
			stats.Expired++
		case status.StatusCritical:
			stats.Expiring30++
		case status.StatusWarning:
			stats.Expiring60++
		case status.StatusCaution:
			stats.Expiring90++
		default:
			stats.Valid++
		}
	}

	s.cache.Set(statsCacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}
