package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"facilitypay/internal/utils"
	"facilitypay/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const formFieldTableName = "facilitypay.form_fields"

var formFieldColumns = utils.StructTagValues(types.FormField{})

// turkishReplacer transliterates the letters the legacy slugger handled
// before the catch-all strip.
var turkishReplacer = strings.NewReplacer(
	"ğ", "g", "ü", "u", "ş", "s", "ı", "i", "ö", "o", "ç", "c",
	"Ğ", "g", "Ü", "u", "Ş", "s", "İ", "i", "Ö", "o", "Ç", "c",
)

var machineNameStrip = regexp.MustCompile(`[^a-z0-9]`)

// MachineName derives a URL/key-safe field name from a display label.
func MachineName(label string) string {
	name := strings.ToLower(turkishReplacer.Replace(label))
	return machineNameStrip.ReplaceAllString(name, "_")
}

type FormFieldRepository struct {
	pool *pgxpool.Pool
}

func NewFormFieldRepository(pool *pgxpool.Pool) *FormFieldRepository {
	return &FormFieldRepository{pool: pool}
}

func (r *FormFieldRepository) FormField(ctx context.Context, fieldID string) (*types.FormField, error) {

	query, args, err := psql().Select(formFieldColumns...).From(formFieldTableName).
		Where(sq.Eq{"id": fieldID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate form field query: %w", err)
	}

	var field = new(types.FormField)
	err = pgxscan.Get(ctx, r.pool, field, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFormFieldNotFound
		}
		return nil, fmt.Errorf("failed to fetch form field: %w", err)
	}

	return field, nil
}

func (r *FormFieldRepository) FormFields(ctx context.Context, onlyActive bool) ([]*types.FormField, error) {

	builder := psql().Select(formFieldColumns...).From(formFieldTableName).
		OrderBy("sort_order asc")
	if onlyActive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate form fields query: %w", err)
	}

	var fields = make([]*types.FormField, 0)
	err = pgxscan.Select(ctx, r.pool, &fields, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch form fields: %w", err)
	}

	return fields, nil
}

// CreateFormField slugs the machine name from the label and places the
// field after the current last sort position.
func (r *FormFieldRepository) CreateFormField(ctx context.Context, field *types.FormField) error {

	field.ID = utils.NanoID()
	field.Name = MachineName(field.Label)
	field.CreatedAt = time.Now()

	maxQuery, maxArgs, err := psql().Select("coalesce(max(sort_order), 0)").
		From(formFieldTableName).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate sort order query: %w", err)
	}

	var lastOrder int
	if err := r.pool.QueryRow(ctx, maxQuery, maxArgs...).Scan(&lastOrder); err != nil {
		return fmt.Errorf("failed to fetch last sort order: %w", err)
	}
	field.SortOrder = lastOrder + 1

	query, args, err := psql().Insert(formFieldTableName).
		SetMap(utils.StructToMap(field)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert form field query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create form field")
}

func (r *FormFieldRepository) SetFormFieldActive(ctx context.Context, fieldID string, active bool) error {

	query, args, err := psql().Update(formFieldTableName).
		Set("is_active", active).
		Where(sq.Eq{"id": fieldID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate toggle form field query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to toggle form field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrFormFieldNotFound
	}

	return nil
}

// DeleteFormField removes a field. System fields are protected.
func (r *FormFieldRepository) DeleteFormField(ctx context.Context, fieldID string) error {

	field, err := r.FormField(ctx, fieldID)
	if err != nil {
		return err
	}
	if field.IsSystem {
		return types.ErrFormFieldIsSystem
	}

	query, args, err := psql().Delete(formFieldTableName).
		Where(sq.Eq{"id": fieldID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete form field query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete form field")
}
