// Package transcript implements the transcript repository using PostgreSQL.
// Transcripts are soft-deleted: Delete sets deleted_at and every read
// excludes flagged rows; HardDeleteOld purges them permanently.
package transcript

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

var _ repository.Repository[domain.Transcript, domain.NewTranscript, domain.TranscriptPatch, domain.TranscriptFilter] = (*Repo)(nil)

// Repo provides transcript persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new transcript repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const transcriptColumns = `id, source_ref, content, content_hash, language, word_count, confidence, duration_seconds, ingested_at, created_at, updated_at, deleted_at`

const createSQL = `
INSERT INTO transcripts (id, source_ref, content, content_hash, language, word_count, confidence, duration_seconds, ingested_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + transcriptColumns

const getByIDSQL = `
SELECT ` + transcriptColumns + `
FROM transcripts
WHERE id = $1 AND deleted_at IS NULL`

const findBySourceSQL = `
SELECT ` + transcriptColumns + `
FROM transcripts
WHERE source_ref = $1 AND deleted_at IS NULL
ORDER BY created_at ASC, id ASC`

const findByContentHashSQL = `
SELECT ` + transcriptColumns + `
FROM transcripts
WHERE source_ref = $1 AND content_hash = $2 AND deleted_at IS NULL`

const softDeleteSQL = `
UPDATE transcripts
SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`

const hardDeleteOldSQL = `
DELETE FROM transcripts t
WHERE t.deleted_at IS NOT NULL
  AND t.deleted_at < $1
  AND NOT EXISTS (SELECT 1 FROM insights i WHERE i.transcript_id = t.id)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a transcript by primary key.
// Returns domain.ErrNotFound if the transcript does not exist or is soft-deleted.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transcript, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	tr, err := scanTranscript(row)
	if err != nil {
		return nil, postgres.MapError(err, "transcript", id)
	}

	return tr, nil
}

// List returns transcripts matching the filter plus the total match count.
// Ordered by the filter's sort key (created_at ASC by default) with id as tiebreak.
func (r *Repo) List(ctx context.Context, filter domain.TranscriptFilter) ([]*domain.Transcript, int, error) {
	f := normalize(filter)
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	where := whereClauses(f)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("transcripts").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count transcripts: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transcripts: %w", err)
	}

	pageSQL, pageArgs, err := postgres.Builder().
		Select(transcriptColumns).
		From("transcripts").
		Where(where).
		OrderBy(orderBy(f)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list transcripts: %w", err)
	}

	rows, err := querier.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	transcripts, err := scanTranscripts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list transcripts: %w", err)
	}

	return transcripts, total, nil
}

// FindBySource returns all live transcripts ingested from the given source
// reference, oldest first.
func (r *Repo) FindBySource(ctx context.Context, sourceRef string) ([]*domain.Transcript, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findBySourceSQL, sourceRef)
	if err != nil {
		return nil, fmt.Errorf("find transcripts by source: %w", err)
	}
	defer rows.Close()

	transcripts, err := scanTranscripts(rows)
	if err != nil {
		return nil, fmt.Errorf("find transcripts by source: %w", err)
	}

	return transcripts, nil
}

// FindByContentHash returns the live transcript previously ingested from the
// given source with identical content. Ingest callers use it as a dedup
// probe before Create instead of relying on the conflict error. The partial
// unique index guarantees at most one live match.
// Returns domain.ErrNotFound when no duplicate exists.
func (r *Repo) FindByContentHash(ctx context.Context, sourceRef, contentHash string) (*domain.Transcript, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, findByContentHashSQL, sourceRef, contentHash)

	tr, err := scanTranscript(row)
	if err != nil {
		return nil, postgres.MapError(err, "transcript", uuid.Nil)
	}

	return tr, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new transcript and returns the persisted domain.Transcript.
// ContentHash and WordCount are derived from the content here; IngestedAt
// defaults to the creation time when zero. Re-ingesting identical content
// from the same source results in domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, input domain.NewTranscript) (*domain.Transcript, error) {
	input.SourceRef = strings.TrimSpace(input.SourceRef)
	if strings.TrimSpace(input.Language) == "" {
		input.Language = "en"
	}

	if errs := validateNew(input); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	ingestedAt := input.IngestedAt.UTC().Truncate(time.Microsecond)
	if input.IngestedAt.IsZero() {
		ingestedAt = now
	}

	id := uuid.New()
	row := querier.QueryRow(ctx, createSQL,
		id,
		input.SourceRef,
		input.Content,
		domain.ContentHash(input.Content),
		input.Language,
		domain.CountWords(input.Content),
		input.Confidence,
		input.DurationSeconds,
		ingestedAt,
		now,
		now,
	)

	created, err := scanTranscript(row)
	if err != nil {
		return nil, postgres.MapError(err, "transcript", id)
	}

	return created, nil
}

// Update applies the non-nil patch fields and returns the updated transcript.
// Content is not updatable. Returns domain.ErrNotFound if the transcript does
// not exist or is soft-deleted.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.TranscriptPatch) (*domain.Transcript, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}
	if errs := validatePatch(patch); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Update("transcripts").
		Set("updated_at", time.Now().UTC().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING " + transcriptColumns)

	if patch.SourceRef != nil {
		b = b.Set("source_ref", strings.TrimSpace(*patch.SourceRef))
	}
	if patch.Language != nil {
		b = b.Set("language", *patch.Language)
	}
	if patch.Confidence != nil {
		b = b.Set("confidence", *patch.Confidence)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update transcript: %w", err)
	}

	updated, err := scanTranscript(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "transcript", id)
	}

	return updated, nil
}

// Delete soft-deletes a transcript. Deleting an absent or already deleted
// transcript is a no-op.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, softDeleteSQL, id); err != nil {
		return postgres.MapError(err, "transcript", id)
	}

	return nil
}

// DeleteStrict soft-deletes a transcript and returns domain.ErrNotFound if no
// live row matched.
func (r *Repo) DeleteStrict(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, softDeleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "transcript", id)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("transcript %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// HardDeleteOld permanently removes transcripts soft-deleted before the
// cutoff. Rows still referenced by insights are kept so the foreign key
// stays intact. Returns the number of purged rows.
func (r *Repo) HardDeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, hardDeleteOldSQL, olderThan)
	if err != nil {
		return 0, fmt.Errorf("hard delete old transcripts: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanTranscript scans a single transcript row from pgx.Row.
func scanTranscript(row pgx.Row) (*domain.Transcript, error) {
	var (
		id              uuid.UUID
		sourceRef       string
		content         string
		contentHash     string
		language        string
		wordCount       int
		confidence      *float64
		durationSeconds *float64
		ingestedAt      time.Time
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       *time.Time
	)

	if err := row.Scan(&id, &sourceRef, &content, &contentHash, &language, &wordCount,
		&confidence, &durationSeconds, &ingestedAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	return &domain.Transcript{
		ID:              id,
		SourceRef:       sourceRef,
		Content:         content,
		ContentHash:     contentHash,
		Language:        language,
		WordCount:       wordCount,
		Confidence:      confidence,
		DurationSeconds: durationSeconds,
		IngestedAt:      ingestedAt,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}, nil
}

// scanTranscripts scans multiple transcript rows from pgx.Rows.
func scanTranscripts(rows pgx.Rows) ([]*domain.Transcript, error) {
	var transcripts []*domain.Transcript
	for rows.Next() {
		tr, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if transcripts == nil {
		transcripts = []*domain.Transcript{}
	}

	return transcripts, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validateNew(input domain.NewTranscript) []domain.FieldError {
	var errs []domain.FieldError

	if input.SourceRef == "" {
		errs = append(errs, domain.FieldError{Field: "source_ref", Message: "required"})
	}
	if strings.TrimSpace(input.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if input.Confidence != nil && (*input.Confidence < 0 || *input.Confidence > 1) {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}
	if input.DurationSeconds != nil && *input.DurationSeconds <= 0 {
		errs = append(errs, domain.FieldError{Field: "duration_seconds", Message: "must be positive"})
	}

	return errs
}

func validatePatch(patch domain.TranscriptPatch) []domain.FieldError {
	var errs []domain.FieldError

	if patch.SourceRef != nil && strings.TrimSpace(*patch.SourceRef) == "" {
		errs = append(errs, domain.FieldError{Field: "source_ref", Message: "cannot be empty"})
	}
	if patch.Language != nil && strings.TrimSpace(*patch.Language) == "" {
		errs = append(errs, domain.FieldError{Field: "language", Message: "cannot be empty"})
	}
	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 1) {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}

	return errs
}
