package pricing

import (
	"testing"

	"facilitypay/pkg/types"
)

func testFacility() *types.Facility {
	return &types.Facility{
		ID:                        "fac1",
		Name:                      "Indoor Pool",
		InternalStudentPriceCents: 75000,
		ExternalStudentPriceCents: 150000,
		AcademicStaffPriceCents:   350000,
		AdminStaffPriceCents:      250000,
	}
}

func TestResolve(t *testing.T) {
	f := testFacility()

	tests := []struct {
		category types.UserCategory
		want     int64
	}{
		{types.UserCategoryInternalStudent, 75000},
		{types.UserCategoryExternalStudent, 150000},
		{types.UserCategoryAcademicStaff, 350000},
		{types.UserCategoryAdminStaff, 250000},
		// Unknown categories fall back to the internal-student price.
		{types.UserCategory("visitor"), 75000},
		{types.UserCategory(""), 75000},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := Resolve(f, tt.category); got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.category, got, tt.want)
			}
		})
	}
}

func TestTableCoversEveryCategory(t *testing.T) {
	table := Table(testFacility())

	if len(table) != len(types.UserCategories) {
		t.Fatalf("Table() has %d entries, want %d", len(table), len(types.UserCategories))
	}
	for _, category := range types.UserCategories {
		price, ok := table[category]
		if !ok {
			t.Errorf("Table() missing category %q", category)
		}
		if price < 0 {
			t.Errorf("Table()[%q] = %d, want non-negative", category, price)
		}
	}
}
