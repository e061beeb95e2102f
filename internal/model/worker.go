package model

import "github.com/google/uuid"

type Worker struct {
	Base
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     *string `db:"email" json:"email"`
	Phone     *string `db:"phone" json:"phone"`
	Position  *string `db:"position" json:"position"`
	Notes     *string `db:"notes" json:"notes"`

	// Populated on detail/list reads, not a column
	Licenses []*License `db:"-" json:"licenses,omitempty"`
}

func (w *Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// RequiredLicenseType declares that a worker must hold a license of the
// given type, independent of whether a matching active license exists.
type RequiredLicenseType struct {
	ID              uuid.UUID `db:"id" json:"id"`
	WorkerID        uuid.UUID `db:"worker_id" json:"worker_id"`
	LicenseTypeID   uuid.UUID `db:"license_type_id" json:"license_type_id"`
	LicenseTypeName string    `db:"license_type_name" json:"license_type_name"`
}

// MissingLicense is a required license type with no active license covering it.
type MissingLicense struct {
	WorkerID        uuid.UUID `db:"worker_id" json:"worker_id"`
	WorkerName      string    `db:"worker_name" json:"worker_name"`
	LicenseTypeID   uuid.UUID `db:"license_type_id" json:"license_type_id"`
	LicenseTypeName string    `db:"license_type_name" json:"license_type_name"`
}

type CreateWorkerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Notes     string `json:"notes"`
}

type SetRequiredTypesRequest struct {
	LicenseTypeIDs []string `json:"license_type_ids"`
}

type WorkerFilters struct {
	Search string `form:"q"`
}
