// Package pricing maps a (facility, user category) pair to the amount the
// submitter owes. Prices live on the facility row and are resolved at read
// time, so editing a facility changes the displayed amount for historical
// submissions too; see DESIGN.md for why that is left as is.
package pricing

import "facilitypay/pkg/types"

// Resolve returns the facility's price in cents for the given category.
// An unrecognized category falls back to the internal-student price.
func Resolve(facility *types.Facility, category types.UserCategory) int64 {
	switch category {
	case types.UserCategoryInternalStudent:
		return facility.InternalStudentPriceCents
	case types.UserCategoryExternalStudent:
		return facility.ExternalStudentPriceCents
	case types.UserCategoryAcademicStaff:
		return facility.AcademicStaffPriceCents
	case types.UserCategoryAdminStaff:
		return facility.AdminStaffPriceCents
	default:
		return facility.InternalStudentPriceCents
	}
}

// Table returns every category's price for a facility, in display order.
func Table(facility *types.Facility) map[types.UserCategory]int64 {
	out := make(map[types.UserCategory]int64, len(types.UserCategories))
	for _, category := range types.UserCategories {
		out[category] = Resolve(facility, category)
	}
	return out
}
