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

const documentTableName = "facilitypay.consent_documents"

var documentColumns = utils.StructTagValues(types.ConsentDocument{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Document(ctx context.Context, documentID string) (*types.ConsentDocument, error) {

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"id": documentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var document = new(types.ConsentDocument)
	err = pgxscan.Get(ctx, r.pool, document, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return document, nil
}

// Documents lists consent documents ascending by sort order; onlyActive
// narrows to the set a submitter must acknowledge.
func (r *DocumentRepository) Documents(ctx context.Context, onlyActive bool) ([]*types.ConsentDocument, error) {

	builder := psql().Select(documentColumns...).From(documentTableName).
		OrderBy("sort_order asc")
	if onlyActive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var documents = make([]*types.ConsentDocument, 0)
	err = pgxscan.Select(ctx, r.pool, &documents, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return documents, nil
}

func (r *DocumentRepository) CountActive(ctx context.Context) (int, error) {

	query, args, err := psql().Select("count(*)").From(documentTableName).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate active document count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active documents: %w", err)
	}

	return count, nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, document *types.ConsentDocument) error {

	document.ID = utils.NanoID()
	document.CreatedAt = time.Now()

	query, args, err := psql().Insert(documentTableName).
		SetMap(utils.StructToMap(document)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create document")
}

// UpdateDocumentMeta changes name, title, order and active flag without
// touching the stored file.
func (r *DocumentRepository) UpdateDocumentMeta(ctx context.Context, documentID, name, title string, sortOrder int, isActive bool) error {

	query, args, err := psql().Update(documentTableName).
		Set("name", name).
		Set("title", title).
		Set("sort_order", sortOrder).
		Set("is_active", isActive).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update document query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}

// DeleteDocument removes the row only. Historical consent records keep
// the document name and are never touched; the stored file is the
// caller's to clean up.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, documentID string) error {

	query, args, err := psql().Delete(documentTableName).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}
