package license

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/license-monitor/internal/model"
	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

// fakeLicenseRepo keeps licenses in memory and mirrors the supersede
// transaction semantics of the postgres implementation.
type fakeLicenseRepo struct {
	licenses []*model.License
	failTx   bool
}

func (f *fakeLicenseRepo) Get(_ context.Context, id uuid.UUID) (*model.License, error) {
	for _, l := range f.licenses {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeLicenseRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.LicenseDetail, error) {
	for _, l := range f.licenses {
		if l.ID == id {
			return &model.LicenseDetail{License: *l}, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeLicenseRepo) ListByWorker(_ context.Context, workerID uuid.UUID) ([]*model.License, error) {
	var out []*model.License
	for _, l := range f.licenses {
		if l.WorkerID == workerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLicenseRepo) ListDetails(_ context.Context) ([]*model.LicenseDetail, error) {
	var out []*model.LicenseDetail
	for _, l := range f.licenses {
		out = append(out, &model.LicenseDetail{License: *l})
	}
	return out, nil
}

func (f *fakeLicenseRepo) ListActive(_ context.Context) ([]*model.License, error) {
	var out []*model.License
	for _, l := range f.licenses {
		if l.Status == model.LicenseStatusActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLicenseRepo) ListActiveExpiringBefore(_ context.Context, cutoff time.Time) ([]*model.LicenseDetail, error) {
	var out []*model.LicenseDetail
	for _, l := range f.licenses {
		if l.Status == model.LicenseStatusActive && !l.ExpiryDate.After(cutoff) {
			out = append(out, &model.LicenseDetail{License: *l})
		}
	}
	return out, nil
}

func (f *fakeLicenseRepo) FindExact(_ context.Context, workerID, typeID uuid.UUID, issue, expiry time.Time, code *string) (*model.License, error) {
	for _, l := range f.licenses {
		if l.WorkerID == workerID && l.LicenseTypeID == typeID &&
			l.IssueDate.Equal(issue) && l.ExpiryDate.Equal(expiry) && strPtrEqual(l.Code, code) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLicenseRepo) GetActiveForType(_ context.Context, workerID, typeID uuid.UUID) (*model.License, error) {
	for _, l := range f.licenses {
		if l.WorkerID == workerID && l.LicenseTypeID == typeID && l.Status == model.LicenseStatusActive {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLicenseRepo) CreateWithSupersede(_ context.Context, license *model.License, supersede bool) error {
	if f.failTx {
		return assert.AnError
	}
	if supersede {
		for _, l := range f.licenses {
			if l.WorkerID == license.WorkerID && l.LicenseTypeID == license.LicenseTypeID && l.Status == model.LicenseStatusActive {
				l.Status = model.LicenseStatusReplaced
			}
		}
	}
	f.licenses = append(f.licenses, license)
	return nil
}

func (f *fakeLicenseRepo) Update(_ context.Context, license *model.License) error { return nil }
func (f *fakeLicenseRepo) Delete(_ context.Context, id uuid.UUID) error           { return nil }
func (f *fakeLicenseRepo) Count(_ context.Context) (int, error)                   { return len(f.licenses), nil }
func (f *fakeLicenseRepo) CountByType(_ context.Context, typeID uuid.UUID) (int, error) {
	count := 0
	for _, l := range f.licenses {
		if l.LicenseTypeID == typeID {
			count++
		}
	}
	return count, nil
}

type fakeTypeRepo struct {
	types map[uuid.UUID]*model.LicenseType
}

func (f *fakeTypeRepo) Create(_ context.Context, lt *model.LicenseType) error { return nil }
func (f *fakeTypeRepo) Get(_ context.Context, id uuid.UUID) (*model.LicenseType, error) {
	if lt, ok := f.types[id]; ok {
		return lt, nil
	}
	return nil, assert.AnError
}
func (f *fakeTypeRepo) GetByName(_ context.Context, name string) (*model.LicenseType, error) {
	return nil, nil
}
func (f *fakeTypeRepo) List(_ context.Context) ([]*model.LicenseType, error)  { return nil, nil }
func (f *fakeTypeRepo) Update(_ context.Context, lt *model.LicenseType) error { return nil }
func (f *fakeTypeRepo) Delete(_ context.Context, id uuid.UUID) error          { return nil }

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func newTestService() (Service, *fakeLicenseRepo, uuid.UUID, uuid.UUID) {
	repo := &fakeLicenseRepo{}
	workerID := uuid.New()
	typeID := uuid.New()
	typeRepo := &fakeTypeRepo{types: map[uuid.UUID]*model.LicenseType{
		typeID: {Base: model.Base{ID: typeID}, Name: "Working at Heights"},
	}}
	return NewService(repo, typeRepo), repo, workerID, typeID
}

func createReq(workerID, typeID uuid.UUID, issue, expiry, code string) *model.CreateLicenseRequest {
	return &model.CreateLicenseRequest{
		WorkerID:      workerID.String(),
		LicenseTypeID: typeID.String(),
		IssueDate:     issue,
		ExpiryDate:    expiry,
		Code:          code,
	}
}

func TestCreate_FirstLicenseIsActive(t *testing.T) {
	svc, repo, workerID, typeID := newTestService()

	result, err := svc.Create(context.Background(), createReq(workerID, typeID, "2024-01-01", "2025-01-01", "WAH-1"))
	require.NoError(t, err)

	assert.Equal(t, model.LicenseStatusActive, result.License.Status)
	assert.False(t, result.Superseded)
	assert.Len(t, repo.licenses, 1)
}

func TestCreate_ExactDuplicateRejected(t *testing.T) {
	svc, repo, workerID, typeID := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", "WAH-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", "WAH-1"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	assert.Len(t, repo.licenses, 1, "duplicate must not be inserted")
}

func TestCreate_DuplicateCheckIgnoresStatus(t *testing.T) {
	svc, _, workerID, typeID := newTestService()
	ctx := context.Background()

	// first record gets demoted to replaced by the second
	_, err := svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", "WAH-1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createReq(workerID, typeID, "2024-06-01", "2026-01-01", "WAH-2"))
	require.NoError(t, err)

	// re-uploading the replaced record is still an exact duplicate
	_, err = svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", "WAH-1"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestCreate_NewerExpirySupersedes(t *testing.T) {
	svc, repo, workerID, typeID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", ""))
	require.NoError(t, err)

	second, err := svc.Create(ctx, createReq(workerID, typeID, "2024-06-01", "2026-01-01", ""))
	require.NoError(t, err)

	assert.True(t, second.Superseded)
	assert.Equal(t, model.LicenseStatusActive, second.License.Status)
	assert.Equal(t, model.LicenseStatusReplaced, first.License.Status)

	active := 0
	for _, l := range repo.licenses {
		if l.Status == model.LicenseStatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "exactly one active license per (worker, type)")
}

func TestCreate_OlderExpiryInsertedAsReplaced(t *testing.T) {
	svc, _, workerID, typeID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2026-01-01", ""))
	require.NoError(t, err)

	second, err := svc.Create(ctx, createReq(workerID, typeID, "2023-01-01", "2024-06-01", ""))
	require.NoError(t, err)

	assert.False(t, second.Superseded)
	assert.Equal(t, model.LicenseStatusReplaced, second.License.Status)
	assert.Equal(t, model.LicenseStatusActive, first.License.Status, "older upload must not demote the current active")
}

func TestCreate_EqualExpiryNewWins(t *testing.T) {
	svc, _, workerID, typeID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, createReq(workerID, typeID, "2024-01-01", "2025-01-01", "A"))
	require.NoError(t, err)

	second, err := svc.Create(ctx, createReq(workerID, typeID, "2024-02-01", "2025-01-01", "B"))
	require.NoError(t, err)

	assert.True(t, second.Superseded)
	assert.Equal(t, model.LicenseStatusActive, second.License.Status)
	assert.Equal(t, model.LicenseStatusReplaced, first.License.Status)
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc, repo, workerID, typeID := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.CreateLicenseRequest
	}{
		{"bad worker id", createReq(uuid.Nil, typeID, "2024-01-01", "2025-01-01", "")},
		{"malformed issue date", createReq(workerID, typeID, "01/01/2024", "2025-01-01", "")},
		{"malformed expiry date", createReq(workerID, typeID, "2024-01-01", "soon", "")},
	}
	tests[0].req.WorkerID = "not-a-uuid"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
		})
	}
	assert.Empty(t, repo.licenses, "validation failures must not write")
}

func activeLicense(workerID, typeID uuid.UUID, expiry time.Time) *model.License {
	return &model.License{
		Base:          model.Base{ID: uuid.New()},
		WorkerID:      workerID,
		LicenseTypeID: typeID,
		IssueDate:     expiry.AddDate(-1, 0, 0),
		ExpiryDate:    expiry,
		Status:        model.LicenseStatusActive,
	}
}

func newListFixture(now time.Time, licenses ...*model.License) Service {
	repo := &fakeLicenseRepo{licenses: licenses}
	return &service{
		repo:     repo,
		typeRepo: &fakeTypeRepo{},
		nowFn:    func() time.Time { return now },
	}
}

func TestList_ExpiredBucketUsesCalendarDays(t *testing.T) {
	// Stored expiry dates sit at midnight; a mid-day clock must not push a
	// license expiring today into the expired bucket.
	now := time.Date(2025, 7, 10, 14, 30, 0, 0, time.UTC)
	workerID, typeID := uuid.New(), uuid.New()

	today := activeLicense(workerID, typeID, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
	yesterday := activeLicense(workerID, typeID, time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC))
	svc := newListFixture(now, today, yesterday)

	details, err := svc.List(context.Background(), &model.LicenseFilters{Bucket: "expired"})
	require.NoError(t, err)

	require.Len(t, details, 1)
	assert.Equal(t, yesterday.ID, details[0].ID)
}

func TestList_ExpiringBucketIncludesToday(t *testing.T) {
	now := time.Date(2025, 7, 10, 14, 30, 0, 0, time.UTC)
	workerID, typeID := uuid.New(), uuid.New()

	today := activeLicense(workerID, typeID, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))
	yesterday := activeLicense(workerID, typeID, time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC))
	in30 := activeLicense(workerID, typeID, time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC))
	farOut := activeLicense(workerID, typeID, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	svc := newListFixture(now, today, yesterday, in30, farOut)

	details, err := svc.List(context.Background(), &model.LicenseFilters{Bucket: "expiring"})
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{today.ID, in30.ID}, ids)
}

func TestList_UnknownBucketRejected(t *testing.T) {
	svc := newListFixture(time.Now())

	_, err := svc.List(context.Background(), &model.LicenseFilters{Bucket: "overdue"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
}

func TestCreate_EmptyCodeStoredAsNull(t *testing.T) {
	svc, repo, workerID, typeID := newTestService()

	_, err := svc.Create(context.Background(), createReq(workerID, typeID, "2024-01-01", "2025-01-01", ""))
	require.NoError(t, err)
	assert.Nil(t, repo.licenses[0].Code)
}
