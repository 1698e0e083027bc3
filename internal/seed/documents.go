package seed

import (
	"context"
	"fmt"
	"time"

	"facilitypay/internal/store"
	"facilitypay/internal/utils"
	"facilitypay/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// SeedDocuments registers the standard policy documents the form asks
// submitters to acknowledge. The referenced PDFs still have to be
// uploaded through the admin surface; until then the rows only drive the
// consent checklist.
func SeedDocuments(ctx context.Context, repo *store.DocumentRepository) error {
	existing, err := repo.Documents(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(existing) > 0 {
		logrus.WithField("count", len(existing)).Info("documents already present, skipping seed")
		return nil
	}

	documents := []*types.ConsentDocument{
		{
			Name:      "kvkk",
			Title:     "Personal Data Protection Notice",
			FilePath:  "/api/documents/kvkk.pdf",
			SortOrder: 1,
			IsActive:  true,
		},
		{
			Name:      "usage_terms",
			Title:     "Facility Usage Terms",
			FilePath:  "/api/documents/usage_terms.pdf",
			SortOrder: 2,
			IsActive:  true,
		},
	}

	for _, document := range documents {
		if err := repo.CreateDocument(ctx, document); err != nil {
			return fmt.Errorf("failed to seed document %q: %w", document.Name, err)
		}
	}

	logrus.WithField("count", len(documents)).Info("consent documents seeded")
	return nil
}

type systemField struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Order    int
}

// The built-in inputs of the payment form, mirrored as system rows so
// the admin surface can show and order them next to custom fields. The
// machine names are fixed by the form wire format and never re-slugged.
var systemFields = []systemField{
	{Name: "tcNo", Label: "National Identity Number", Type: types.FormFieldTypeText, Required: true, Order: 1},
	{Name: "fullName", Label: "Full Name", Type: types.FormFieldTypeText, Required: true, Order: 2},
	{Name: "email", Label: "Email", Type: types.FormFieldTypeText, Required: false, Order: 3},
	{Name: "address", Label: "Address", Type: types.FormFieldTypeText, Required: false, Order: 4},
	{Name: "studentNo", Label: "Student Number", Type: types.FormFieldTypeText, Required: true, Order: 5},
}

// SeedSystemFormFields writes the system rows directly; the repository's
// create path would re-derive machine names from labels, and these names
// must stay exactly as the form client sends them.
func SeedSystemFormFields(ctx context.Context, pool *pgxpool.Pool) error {
	for _, field := range systemFields {
		_, err := pool.Exec(ctx,
			`INSERT INTO facilitypay.form_fields
			   (id, name, label, type, required, sort_order, is_active, is_system, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE, TRUE, $7)
			 ON CONFLICT (name) DO NOTHING`,
			utils.NanoID(), field.Name, field.Label, field.Type, field.Required, field.Order, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to seed system form field %q: %w", field.Name, err)
		}
	}

	logrus.WithField("count", len(systemFields)).Info("system form fields seeded")
	return nil
}
