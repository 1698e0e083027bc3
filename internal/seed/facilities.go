package seed

import (
	"context"
	"fmt"

	"facilitypay/internal/store"
	"facilitypay/internal/utils"
	"facilitypay/pkg/types"

	"github.com/sirupsen/logrus"
)

// SeedFacilities inserts a starter facility so the public form is usable
// right after first deploy. Skipped entirely once any facility exists;
// real facilities are managed through the admin surface.
func SeedFacilities(ctx context.Context, repo *store.FacilityRepository) error {
	existing, err := repo.Facilities(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list facilities: %w", err)
	}
	if len(existing) > 0 {
		logrus.WithField("count", len(existing)).Info("facilities already present, skipping seed")
		return nil
	}

	facilities := []*types.Facility{
		{
			Name:        "Swimming Pool",
			Description: utils.StringPtr("Semester access to the campus swimming pool"),

			InternalStudentPriceCents: 25000,
			ExternalStudentPriceCents: 50000,
			AcademicStaffPriceCents:   40000,
			AdminStaffPriceCents:      40000,

			IsActive: true,
		},
		{
			Name:        "Fitness Center",
			Description: utils.StringPtr("Semester access to the campus fitness center"),

			InternalStudentPriceCents: 20000,
			ExternalStudentPriceCents: 40000,
			AcademicStaffPriceCents:   30000,
			AdminStaffPriceCents:      30000,

			IsActive: true,
		},
	}

	for _, facility := range facilities {
		if err := repo.CreateFacility(ctx, facility); err != nil {
			return fmt.Errorf("failed to seed facility %q: %w", facility.Name, err)
		}
	}

	logrus.WithField("count", len(facilities)).Info("facilities seeded")
	return nil
}
