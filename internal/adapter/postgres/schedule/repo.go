// Package schedule implements the scheduled post repository using PostgreSQL.
// A schedule moves PENDING -> SENT | FAILED | CANCELLED exactly once. Every
// transition is a conditional UPDATE on the PENDING state; a partial unique
// index keeps at most one PENDING schedule per post.
package schedule

import (
	"context"
	"errors"
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

var _ repository.Repository[domain.ScheduledPost, domain.NewSchedule, domain.SchedulePatch, domain.ScheduleFilter] = (*Repo)(nil)

// Repo provides scheduled post persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const scheduleColumns = `id, post_id, channel, publish_at, status, sent_at, failure_reason, created_at, updated_at`

const createSQL = `
INSERT INTO scheduled_posts (id, post_id, channel, publish_at, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'PENDING', $5, $6)
RETURNING ` + scheduleColumns

const getByIDSQL = `
SELECT ` + scheduleColumns + `
FROM scheduled_posts
WHERE id = $1`

const findDueSQL = `
SELECT ` + scheduleColumns + `
FROM scheduled_posts
WHERE status = 'PENDING' AND publish_at <= $1
ORDER BY publish_at ASC, id ASC`

const countByStatusSQL = `
SELECT status, count(*)
FROM scheduled_posts
GROUP BY status`

const markSentSQL = `
UPDATE scheduled_posts
SET status = 'SENT', sent_at = now(), updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + scheduleColumns

const markFailedSQL = `
UPDATE scheduled_posts
SET status = 'FAILED', failure_reason = $2, updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + scheduleColumns

const cancelSQL = `
UPDATE scheduled_posts
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + scheduleColumns

const statusProbeSQL = `
SELECT status FROM scheduled_posts WHERE id = $1`

const deleteSQL = `
DELETE FROM scheduled_posts
WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a schedule by primary key.
// Returns domain.ErrNotFound if the schedule does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	sp, err := scanSchedule(row)
	if err != nil {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return sp, nil
}

// List returns schedules matching the filter plus the total match count.
// Ordered by the filter's sort key (created_at ASC by default) with id as tiebreak.
func (r *Repo) List(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.ScheduledPost, int, error) {
	f := normalize(filter)
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	where := whereClauses(f)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("scheduled_posts").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count schedules: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	pageSQL, pageArgs, err := postgres.Builder().
		Select(scheduleColumns).
		From("scheduled_posts").
		Where(where).
		OrderBy(orderBy(f)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list schedules: %w", err)
	}

	rows, err := querier.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	schedules, err := scanSchedules(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	return schedules, total, nil
}

// FindDue returns PENDING schedules whose publish time has passed, soonest
// first. limit <= 0 means no limit. Terminal schedules are never returned.
func (r *Repo) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledPost, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sql := findDueSQL
	args := []any{now}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find due schedules: %w", err)
	}
	defer rows.Close()

	schedules, err := scanSchedules(rows)
	if err != nil {
		return nil, fmt.Errorf("find due schedules: %w", err)
	}

	return schedules, nil
}

// CountByStatus returns schedule counts grouped by status.
// Only non-zero groups are present in the map.
func (r *Repo) CountByStatus(ctx context.Context) (map[domain.ScheduleStatus]int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, countByStatusSQL)
	if err != nil {
		return nil, fmt.Errorf("count schedules by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ScheduleStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.ScheduleStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new PENDING schedule and returns the persisted
// domain.ScheduledPost. PublishAt must be strictly in the future. A dangling
// post_id results in domain.ErrForeignKey; a second PENDING schedule for the
// same post in domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, input domain.NewSchedule) (*domain.ScheduledPost, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	if errs := validateNew(input, now); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	row := querier.QueryRow(ctx, createSQL,
		id,
		input.PostID,
		string(input.Channel),
		input.PublishAt.UTC().Truncate(time.Microsecond),
		now,
		now,
	)

	created, err := scanSchedule(row)
	if err != nil {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return created, nil
}

// Update applies the non-nil patch fields while the schedule is still
// PENDING. A patched PublishAt must be strictly in the future. Returns
// domain.ErrNotFound for an absent schedule and domain.ErrInvalidState for
// one already in a terminal state.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.SchedulePatch) (*domain.ScheduledPost, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if errs := validatePatch(patch, now); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Update("scheduled_posts").
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where("status = 'PENDING'").
		Suffix("RETURNING " + scheduleColumns)

	if patch.Channel != nil {
		b = b.Set("channel", string(*patch.Channel))
	}
	if patch.PublishAt != nil {
		b = b.Set("publish_at", patch.PublishAt.UTC().Truncate(time.Microsecond))
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update schedule: %w", err)
	}

	updated, err := scanSchedule(querier.QueryRow(ctx, sql, args...))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return nil, probeStatus(ctx, querier, id)
}

// MarkSent moves a PENDING schedule to SENT and stamps sent_at.
func (r *Repo) MarkSent(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sent, err := scanSchedule(querier.QueryRow(ctx, markSentSQL, id))
	if err == nil {
		return sent, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return nil, probeStatus(ctx, querier, id)
}

// MarkFailed moves a PENDING schedule to FAILED and records the reason,
// which must be non-empty.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*domain.ScheduledPost, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("failure_reason", "required")
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	failed, err := scanSchedule(querier.QueryRow(ctx, markFailedSQL, id, reason))
	if err == nil {
		return failed, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return nil, probeStatus(ctx, querier, id)
}

// Cancel moves a PENDING schedule to CANCELLED.
func (r *Repo) Cancel(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	cancelled, err := scanSchedule(querier.QueryRow(ctx, cancelSQL, id))
	if err == nil {
		return cancelled, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "schedule", id)
	}

	return nil, probeStatus(ctx, querier, id)
}

// Delete removes a schedule regardless of state. Deleting an absent schedule
// is a no-op.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteSQL, id); err != nil {
		return postgres.MapError(err, "schedule", id)
	}

	return nil
}

// DeleteStrict removes a schedule and returns domain.ErrNotFound if no row
// matched.
func (r *Repo) DeleteStrict(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "schedule", id)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("schedule %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// probeStatus explains why a PENDING-only update matched no rows: the
// schedule is either absent (ErrNotFound) or already terminal
// (ErrInvalidState).
func probeStatus(ctx context.Context, querier postgres.Querier, id uuid.UUID) error {
	var status string
	if err := querier.QueryRow(ctx, statusProbeSQL, id).Scan(&status); err != nil {
		return postgres.MapError(err, "schedule", id)
	}

	return fmt.Errorf("schedule %s: status %s: %w", id, status, domain.ErrInvalidState)
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanSchedule(row pgx.Row) (*domain.ScheduledPost, error) {
	var (
		id            uuid.UUID
		postID        uuid.UUID
		channel       string
		publishAt     time.Time
		status        string
		sentAt        *time.Time
		failureReason *string
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(&id, &postID, &channel, &publishAt, &status, &sentAt,
		&failureReason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.ScheduledPost{
		ID:            id,
		PostID:        postID,
		Channel:       domain.Channel(channel),
		PublishAt:     publishAt,
		Status:        domain.ScheduleStatus(status),
		SentAt:        sentAt,
		FailureReason: failureReason,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func scanSchedules(rows pgx.Rows) ([]*domain.ScheduledPost, error) {
	var schedules []*domain.ScheduledPost
	for rows.Next() {
		sp, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if schedules == nil {
		schedules = []*domain.ScheduledPost{}
	}

	return schedules, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validateNew(input domain.NewSchedule, now time.Time) []domain.FieldError {
	var errs []domain.FieldError

	if !input.Channel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "channel", Message: "invalid channel"})
	}
	if !input.PublishAt.After(now) {
		errs = append(errs, domain.FieldError{Field: "publish_at", Message: "must be in the future"})
	}

	return errs
}

func validatePatch(patch domain.SchedulePatch, now time.Time) []domain.FieldError {
	var errs []domain.FieldError

	if patch.Channel != nil && !patch.Channel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "channel", Message: "invalid channel"})
	}
	if patch.PublishAt != nil && !patch.PublishAt.After(now) {
		errs = append(errs, domain.FieldError{Field: "publish_at", Message: "must be in the future"})
	}

	return errs
}
