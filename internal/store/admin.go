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

const adminTableName = "facilitypay.admins"

var adminColumns = utils.StructTagValues(types.Admin{})

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) AdminByEmail(ctx context.Context, email string) (*types.Admin, error) {

	query, args, err := psql().Select(adminColumns...).From(adminTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin query: %w", err)
	}

	var admin = new(types.Admin)
	err = pgxscan.Get(ctx, r.pool, admin, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}

	return admin, nil
}

func (r *AdminRepository) Admins(ctx context.Context) ([]*types.Admin, error) {

	query, args, err := psql().Select(adminColumns...).From(adminTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admins query: %w", err)
	}

	var admins = make([]*types.Admin, 0)
	err = pgxscan.Select(ctx, r.pool, &admins, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admins: %w", err)
	}

	return admins, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {

	query, args, err := psql().Select("count(*)").From(adminTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate admin count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}

func (r *AdminRepository) CreateAdmin(ctx context.Context, admin *types.Admin) error {

	admin.ID = utils.NanoID()
	admin.CreatedAt = time.Now()
	if admin.Role == "" {
		admin.Role = "admin"
	}

	query, args, err := psql().Insert(adminTableName).
		SetMap(utils.StructToMap(admin)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert admin query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create admin")
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, adminID, passwordHash string) error {

	query, args, err := psql().Update(adminTableName).
		Set("password_hash", passwordHash).
		Where(sq.Eq{"id": adminID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update password query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAdminNotFound
	}

	return nil
}

// DeleteAdmin removes an account unless it is the last one left. Every
// admin row is locked before counting, so two concurrent deletes cannot
// both see a count of two and empty the table between them.
func (r *AdminRepository) DeleteAdmin(ctx context.Context, adminID string) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin admin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, "SELECT id FROM "+adminTableName+" FOR UPDATE")
	if err != nil {
		return fmt.Errorf("failed to lock admin rows: %w", err)
	}

	var count int64
	for rows.Next() {
		count++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if count <= 1 {
		return types.ErrLastAdmin
	}

	query, args, err := psql().Delete(adminTableName).
		Where(sq.Eq{"id": adminID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete admin query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrAdminNotFound
	}

	return tx.Commit(ctx)
}
