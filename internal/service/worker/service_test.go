package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/license-monitor/internal/model"
)

func required(workerID, typeID uuid.UUID, name string) *model.RequiredLicenseType {
	return &model.RequiredLicenseType{
		ID:              uuid.New(),
		WorkerID:        workerID,
		LicenseTypeID:   typeID,
		LicenseTypeName: name,
	}
}

func active(workerID, typeID uuid.UUID) *model.License {
	return &model.License{
		Base:          model.Base{ID: uuid.New()},
		WorkerID:      workerID,
		LicenseTypeID: typeID,
		Status:        model.LicenseStatusActive,
	}
}

func TestFindMissing_UncoveredRequirement(t *testing.T) {
	workerID := uuid.New()
	typeA := uuid.New()
	typeB := uuid.New()

	missing := FindMissing(
		[]*model.RequiredLicenseType{
			required(workerID, typeA, "Working at Heights"),
			required(workerID, typeB, "First Aid / CPR"),
		},
		[]*model.License{active(workerID, typeA)},
	)

	assert.Len(t, missing, 1)
	assert.Equal(t, typeB, missing[0].LicenseTypeID)
	assert.Equal(t, "First Aid / CPR", missing[0].LicenseTypeName)
}

func TestFindMissing_FullyCovered(t *testing.T) {
	workerID := uuid.New()
	typeA := uuid.New()

	missing := FindMissing(
		[]*model.RequiredLicenseType{required(workerID, typeA, "Forklift Operator")},
		[]*model.License{active(workerID, typeA)},
	)
	assert.Empty(t, missing)
}

func TestFindMissing_NoActiveLicenses(t *testing.T) {
	workerID := uuid.New()
	typeA := uuid.New()

	missing := FindMissing(
		[]*model.RequiredLicenseType{required(workerID, typeA, "Crane Operator")},
		nil,
	)
	assert.Len(t, missing, 1)
}

func TestFindMissing_OtherWorkersLicenseDoesNotCover(t *testing.T) {
	workerA := uuid.New()
	workerB := uuid.New()
	typeID := uuid.New()

	missing := FindMissing(
		[]*model.RequiredLicenseType{required(workerA, typeID, "Confined Space Entry")},
		[]*model.License{active(workerB, typeID)},
	)
	assert.Len(t, missing, 1)
	assert.Equal(t, workerA, missing[0].WorkerID)
}

func TestFindMissing_ExactOutput(t *testing.T) {
	// every required pair appears in the output iff it has no active license
	workers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	types := []uuid.UUID{uuid.New(), uuid.New()}

	var req []*model.RequiredLicenseType
	for _, w := range workers {
		for _, ty := range types {
			req = append(req, required(w, ty, "x"))
		}
	}
	// cover worker0/type0 and worker2/type1
	actives := []*model.License{
		active(workers[0], types[0]),
		active(workers[2], types[1]),
	}

	missing := FindMissing(req, actives)
	assert.Len(t, missing, 4)
	for _, m := range missing {
		covered := (m.WorkerID == workers[0] && m.LicenseTypeID == types[0]) ||
			(m.WorkerID == workers[2] && m.LicenseTypeID == types[1])
		assert.False(t, covered, "covered pair leaked into output")
	}
}

func TestFindMissing_EmptyRequirements(t *testing.T) {
	assert.Empty(t, FindMissing(nil, []*model.License{active(uuid.New(), uuid.New())}))
}
