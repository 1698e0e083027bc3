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

const (
	submissionTableName = "facilitypay.submissions"
	consentTableName    = "facilitypay.consent_records"
)

var (
	submissionColumns = utils.StructTagValues(types.Submission{})
	consentColumns    = utils.StructTagValues(types.ConsentRecord{})
)

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// CreateSubmission persists a submission and its consent records as one
// transaction. A submission must never exist with a partial consent
// trail, so any failure rolls the whole unit back.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, submission *types.Submission, consents []*types.ConsentRecord) error {

	now := time.Now()
	submission.ID = utils.NanoID()
	submission.Status = types.SubmissionStatusPending
	submission.CreatedAt = now
	submission.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin submission transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql().Insert(submissionTableName).
		SetMap(utils.StructToMap(submission)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert submission query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	for _, consentRecord := range consents {
		consentRecord.ID = utils.NanoID()
		consentRecord.SubmissionID = submission.ID

		query, args, err := psql().Insert(consentTableName).
			SetMap(utils.StructToMap(consentRecord)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert consent query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert consent record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}

	submission.Consents = consents
	return nil
}

func (r *SubmissionRepository) Submission(ctx context.Context, submissionID string) (*types.Submission, error) {

	query, args, err := psql().Select(submissionColumns...).From(submissionTableName).
		Where(sq.Eq{"id": submissionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submission query: %w", err)
	}

	var submission = new(types.Submission)
	err = pgxscan.Get(ctx, r.pool, submission, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}

	consents, err := r.consentsForSubmissions(ctx, []string{submission.ID})
	if err != nil {
		return nil, err
	}
	submission.Consents = consents[submission.ID]

	return submission, nil
}

// Submissions lists every submission newest first, with consent trails
// attached.
func (r *SubmissionRepository) Submissions(ctx context.Context) ([]*types.Submission, error) {

	query, args, err := psql().Select(submissionColumns...).From(submissionTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate submissions query: %w", err)
	}

	var submissions = make([]*types.Submission, 0)
	err = pgxscan.Select(ctx, r.pool, &submissions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	if len(submissions) == 0 {
		return submissions, nil
	}

	ids := make([]string, 0, len(submissions))
	for _, submission := range submissions {
		ids = append(ids, submission.ID)
	}

	consents, err := r.consentsForSubmissions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, submission := range submissions {
		submission.Consents = consents[submission.ID]
	}

	return submissions, nil
}

func (r *SubmissionRepository) consentsForSubmissions(ctx context.Context, submissionIDs []string) (map[string][]*types.ConsentRecord, error) {

	query, args, err := psql().Select(consentColumns...).From(consentTableName).
		Where(sq.Eq{"submission_id": submissionIDs}).
		OrderBy("consent_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate consent records query: %w", err)
	}

	var records []*types.ConsentRecord
	err = pgxscan.Select(ctx, r.pool, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch consent records: %w", err)
	}

	out := make(map[string][]*types.ConsentRecord, len(submissionIDs))
	for _, record := range records {
		out[record.SubmissionID] = append(out[record.SubmissionID], record)
	}
	return out, nil
}

// UpdateStatus moves a submission through review, including reverting
// back to pending.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, submissionID string, status types.SubmissionStatus) error {

	query, args, err := psql().Update(submissionTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": submissionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update status query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrSubmissionNotFound
	}

	return nil
}

// UpdateNotes replaces the reviewer remarks on a submission.
func (r *SubmissionRepository) UpdateNotes(ctx context.Context, submissionID string, notes *string) error {

	query, args, err := psql().Update(submissionTableName).
		Set("notes", notes).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": submissionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update notes query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update submission notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrSubmissionNotFound
	}

	return nil
}
