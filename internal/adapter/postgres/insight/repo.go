// Package insight implements the insight repository using PostgreSQL.
// Insights are derived rows and are deleted for real, no soft delete.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/contentpipe/backend/internal/adapter/postgres"
	"github.com/contentpipe/backend/internal/domain"
	"github.com/contentpipe/backend/internal/repository"
)

var _ repository.Repository[domain.Insight, domain.NewInsight, domain.InsightPatch, domain.InsightFilter] = (*Repo)(nil)

// Repo provides insight persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new insight repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const insightColumns = `id, transcript_id, kind, content, confidence, created_at, updated_at`

const createSQL = `
INSERT INTO insights (id, transcript_id, kind, content, confidence, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + insightColumns

const getByIDSQL = `
SELECT ` + insightColumns + `
FROM insights
WHERE id = $1`

const findByTranscriptSQL = `
SELECT ` + insightColumns + `
FROM insights
WHERE transcript_id = $1
ORDER BY created_at ASC, id ASC`

const deleteSQL = `
DELETE FROM insights
WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an insight by primary key.
// Returns domain.ErrNotFound if the insight does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Insight, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	ins, err := scanInsight(row)
	if err != nil {
		return nil, postgres.MapError(err, "insight", id)
	}

	return ins, nil
}

// List returns insights matching the filter plus the total match count.
// Ordered by the filter's sort key (created_at ASC by default) with id as tiebreak.
func (r *Repo) List(ctx context.Context, filter domain.InsightFilter) ([]*domain.Insight, int, error) {
	f := normalize(filter)
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	where := whereClauses(f)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("insights").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count insights: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count insights: %w", err)
	}

	pageSQL, pageArgs, err := postgres.Builder().
		Select(insightColumns).
		From("insights").
		Where(where).
		OrderBy(orderBy(f)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list insights: %w", err)
	}

	rows, err := querier.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	insights, err := scanInsights(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list insights: %w", err)
	}

	return insights, total, nil
}

// FindByTranscript returns all insights derived from the given transcript,
// oldest first.
func (r *Repo) FindByTranscript(ctx context.Context, transcriptID uuid.UUID) ([]*domain.Insight, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findByTranscriptSQL, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("find insights by transcript: %w", err)
	}
	defer rows.Close()

	insights, err := scanInsights(rows)
	if err != nil {
		return nil, fmt.Errorf("find insights by transcript: %w", err)
	}

	return insights, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new insight and returns the persisted domain.Insight.
// The referenced transcript must exist; a dangling transcript_id results in
// domain.ErrForeignKey.
func (r *Repo) Create(ctx context.Context, input domain.NewInsight) (*domain.Insight, error) {
	if errs := validateNew(input); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	id := uuid.New()
	row := querier.QueryRow(ctx, createSQL,
		id,
		input.TranscriptID,
		string(input.Kind),
		input.Content,
		input.Confidence,
		now,
		now,
	)

	created, err := scanInsight(row)
	if err != nil {
		return nil, postgres.MapError(err, "insight", id)
	}

	return created, nil
}

// Update applies the non-nil patch fields and returns the updated insight.
// Returns domain.ErrNotFound if the insight does not exist.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.InsightPatch) (*domain.Insight, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}
	if errs := validatePatch(patch); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Update("insights").
		Set("updated_at", time.Now().UTC().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + insightColumns)

	if patch.Kind != nil {
		b = b.Set("kind", string(*patch.Kind))
	}
	if patch.Content != nil {
		b = b.Set("content", *patch.Content)
	}
	if patch.Confidence != nil {
		b = b.Set("confidence", *patch.Confidence)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update insight: %w", err)
	}

	updated, err := scanInsight(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "insight", id)
	}

	return updated, nil
}

// Delete removes an insight. Deleting an absent insight is a no-op.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteSQL, id); err != nil {
		return postgres.MapError(err, "insight", id)
	}

	return nil
}

// DeleteStrict removes an insight and returns domain.ErrNotFound if no row
// matched.
func (r *Repo) DeleteStrict(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "insight", id)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("insight %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanInsight(row pgx.Row) (*domain.Insight, error) {
	var (
		id           uuid.UUID
		transcriptID uuid.UUID
		kind         string
		content      string
		confidence   *float64
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&id, &transcriptID, &kind, &content, &confidence, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.Insight{
		ID:           id,
		TranscriptID: transcriptID,
		Kind:         domain.InsightKind(kind),
		Content:      content,
		Confidence:   confidence,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func scanInsights(rows pgx.Rows) ([]*domain.Insight, error) {
	var insights []*domain.Insight
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if insights == nil {
		insights = []*domain.Insight{}
	}

	return insights, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validateNew(input domain.NewInsight) []domain.FieldError {
	var errs []domain.FieldError

	if !input.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "invalid insight kind"})
	}
	if strings.TrimSpace(input.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if input.Confidence != nil && (*input.Confidence < 0 || *input.Confidence > 1) {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}

	return errs
}

func validatePatch(patch domain.InsightPatch) []domain.FieldError {
	var errs []domain.FieldError

	if patch.Kind != nil && !patch.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "invalid insight kind"})
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "cannot be empty"})
	}
	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 1) {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}

	return errs
}
