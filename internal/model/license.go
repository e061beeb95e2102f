package model

import (
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	// LicenseStatusActive is the single current license for a (worker, type)
	// pair. At most one active row may exist per pair.
	LicenseStatusActive LicenseStatus = "active"
	// LicenseStatusReplaced marks a license superseded by a newer record of
	// the same type. The transition is one-way.
	LicenseStatusReplaced LicenseStatus = "replaced"
)

type LicenseType struct {
	Base
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
}

type License struct {
	Base
	WorkerID      uuid.UUID     `db:"worker_id" json:"worker_id"`
	LicenseTypeID uuid.UUID     `db:"license_type_id" json:"license_type_id"`
	Code          *string       `db:"code" json:"code"`
	IssueDate     time.Time     `db:"issue_date" json:"issue_date"`
	ExpiryDate    time.Time     `db:"expiry_date" json:"expiry_date"`
	Status        LicenseStatus `db:"status" json:"status"`
	Notes         *string       `db:"notes" json:"notes"`
}

// LicenseDetail is a license joined with its worker and type, as read by the
// dashboard, report, and sweep queries.
type LicenseDetail struct {
	License
	LicenseTypeName string  `db:"license_type_name" json:"license_type_name"`
	WorkerFirstName string  `db:"worker_first_name" json:"worker_first_name"`
	WorkerLastName  string  `db:"worker_last_name" json:"worker_last_name"`
	WorkerPosition  *string `db:"worker_position" json:"worker_position"`
}

func (l *LicenseDetail) WorkerName() string {
	return l.WorkerFirstName + " " + l.WorkerLastName
}

type CreateLicenseRequest struct {
	WorkerID      string `json:"worker_id" binding:"required,uuid"`
	LicenseTypeID string `json:"license_type_id" binding:"required,uuid"`
	Code          string `json:"code"`
	IssueDate     string `json:"issue_date" binding:"required"`
	ExpiryDate    string `json:"expiry_date" binding:"required"`
	Notes         string `json:"notes"`
}

type UpdateLicenseRequest struct {
	LicenseTypeID string `json:"license_type_id" binding:"required,uuid"`
	Code          string `json:"code"`
	IssueDate     string `json:"issue_date" binding:"required"`
	ExpiryDate    string `json:"expiry_date" binding:"required"`
	Notes         string `json:"notes"`
}

type CreateLicenseTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// LicenseFilters narrows license list reads to an urgency bucket.
type LicenseFilters struct {
	// Bucket is "expired" (past expiry) or "expiring" (due within 90 days).
	Bucket string `form:"bucket"`
}
