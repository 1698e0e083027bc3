package types

import (
	"errors"
	"fmt"
	"time"
)

// UserCategory is the submitter's billing class. It selects which of a
// facility's per-category prices applies.
type UserCategory string

const (
	UserCategoryInternalStudent UserCategory = "internal_student"
	UserCategoryExternalStudent UserCategory = "external_student"
	UserCategoryAcademicStaff   UserCategory = "academic_staff"
	UserCategoryAdminStaff      UserCategory = "admin_staff"
)

// UserCategories lists every category the deployment bills for, in
// display order. Every facility carries a price for each.
var UserCategories = []UserCategory{
	UserCategoryInternalStudent,
	UserCategoryExternalStudent,
	UserCategoryAcademicStaff,
	UserCategoryAdminStaff,
}

func (c UserCategory) Valid() bool {
	for _, known := range UserCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Facility struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`

	InternalStudentPriceCents int64 `db:"internal_student_price_cents" json:"internalStudentPriceCents"`
	ExternalStudentPriceCents int64 `db:"external_student_price_cents" json:"externalStudentPriceCents"`
	AcademicStaffPriceCents   int64 `db:"academic_staff_price_cents" json:"academicStaffPriceCents"`
	AdminStaffPriceCents      int64 `db:"admin_staff_price_cents" json:"adminStaffPriceCents"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

var ErrFacilityNotFound = errors.New("facility not found")

// FacilityInUseError is returned when a facility delete is refused
// because submissions still reference it.
type FacilityInUseError struct {
	FacilityID      string
	SubmissionCount int64
}

func (e *FacilityInUseError) Error() string {
	return fmt.Sprintf("facility %s is referenced by %d submission(s)", e.FacilityID, e.SubmissionCount)
}
