package types

import (
	"errors"
	"time"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// Submission is one user's complete facility-payment application.
// Immutable once created except for Status and Notes.
type Submission struct {
	ID          string           `db:"id" json:"id"`
	IdentityNo  string           `db:"identity_no" json:"tcNo"`
	FullName    string           `db:"full_name" json:"fullName"`
	Email       *string          `db:"email" json:"email"`
	Address     *string          `db:"address" json:"address"`
	StudentNo   string           `db:"student_no" json:"studentNo"`
	UserType    UserCategory     `db:"user_type" json:"userType"`
	FacilityID  string           `db:"facility_id" json:"facilityId"`
	ReceiptPath string           `db:"receipt_path" json:"receiptPath"`
	ExtraData   *string          `db:"extra_data" json:"extraData"` // JSON object of dynamic field values
	Status      SubmissionStatus `db:"status" json:"status"`
	Notes       *string          `db:"notes" json:"notes"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`

	Facility *Facility        `db:"-" json:"facility,omitempty"`
	Consents []*ConsentRecord `db:"-" json:"consents,omitempty"`

	// AmountCents is the price owed for this submission, resolved from
	// the facility's per-category prices at read time. Zero when the
	// facility row is gone.
	AmountCents int64 `db:"-" json:"amountCents"`
}

// ConsentRecord is proof that a specific policy document was acknowledged
// by a submitter, with provenance. Never mutated after creation.
type ConsentRecord struct {
	ID           string    `db:"id" json:"id"`
	SubmissionID string    `db:"submission_id" json:"-"`
	DocumentName string    `db:"document_name" json:"documentName"`
	IPAddress    string    `db:"ip_address" json:"ipAddress"`
	UserAgent    *string   `db:"user_agent" json:"userAgent"`
	ConsentAt    time.Time `db:"consent_at" json:"consentAt"`
}

var ErrSubmissionNotFound = errors.New("submission not found")
