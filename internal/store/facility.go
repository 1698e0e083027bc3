package store

import (
	"context"
	"fmt"
	"time"

	"facilitypay/internal/utils"
	"facilitypay/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const facilityTableName = "facilitypay.facilities"

var facilityColumns = utils.StructTagValues(types.Facility{})

type FacilityRepository struct {
	pool *pgxpool.Pool
}

func NewFacilityRepository(pool *pgxpool.Pool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

func (r *FacilityRepository) Facility(ctx context.Context, facilityID string) (*types.Facility, error) {

	query, args, err := psql().Select(facilityColumns...).From(facilityTableName).
		Where(sq.Eq{"id": facilityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate facility query: %w", err)
	}

	var facility = new(types.Facility)
	err = pgxscan.Get(ctx, r.pool, facility, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to fetch facility: %w", err)
	}

	return facility, nil
}

func (r *FacilityRepository) Facilities(ctx context.Context, onlyActive bool) ([]*types.Facility, error) {

	builder := psql().Select(facilityColumns...).From(facilityTableName).
		OrderBy("created_at asc")
	if onlyActive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate facilities query: %w", err)
	}

	var facilities = make([]*types.Facility, 0)
	err = pgxscan.Select(ctx, r.pool, &facilities, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch facilities: %w", err)
	}

	return facilities, nil
}

func (r *FacilityRepository) CreateFacility(ctx context.Context, facility *types.Facility) error {

	now := time.Now()
	facility.ID = utils.NanoID()
	facility.CreatedAt = now
	facility.UpdatedAt = now

	query, args, err := psql().Insert(facilityTableName).
		SetMap(utils.StructToMap(facility)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert facility query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create facility")
}

func (r *FacilityRepository) UpdateFacility(ctx context.Context, facilityID string, facility *types.Facility) error {

	facility.ID = facilityID
	facility.UpdatedAt = time.Now()

	query, args, err := psql().Update(facilityTableName).
		SetMap(utils.StructToMap(facility)).
		Where(sq.Eq{"id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update facility query for %s: %w", facilityID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrFacilityNotFound
	}

	return nil
}

// DeleteFacility refuses to delete a facility any submission references;
// the error carries the blocking count for the admin surface.
func (r *FacilityRepository) DeleteFacility(ctx context.Context, facilityID string) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin facility delete: %w", err)
	}
	defer tx.Rollback(ctx)

	countQuery, countArgs, err := psql().Select("count(*)").
		From(submissionTableName).
		Where(sq.Eq{"facility_id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate facility reference count query: %w", err)
	}

	var referencing int64
	if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&referencing); err != nil {
		return fmt.Errorf("failed to count referencing submissions: %w", err)
	}

	if referencing > 0 {
		return &types.FacilityInUseError{FacilityID: facilityID, SubmissionCount: referencing}
	}

	query, args, err := psql().Delete(facilityTableName).
		Where(sq.Eq{"id": facilityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete facility query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrFacilityNotFound
	}

	return tx.Commit(ctx)
}
