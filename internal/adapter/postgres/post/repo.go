// Package post implements the post repository using PostgreSQL.
// Posts start as DRAFT and move to PUBLISHED exactly once through Publish;
// a regular Update never touches the status.
package post

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

var _ repository.Repository[domain.Post, domain.NewPost, domain.PostPatch, domain.PostFilter] = (*Repo)(nil)

// Repo provides post persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new post repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const postColumns = `id, insight_id, title, content, status, published_at, created_at, updated_at`

const createSQL = `
INSERT INTO posts (id, insight_id, title, content, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'DRAFT', $5, $6)
RETURNING ` + postColumns

const getByIDSQL = `
SELECT ` + postColumns + `
FROM posts
WHERE id = $1`

const findByInsightSQL = `
SELECT ` + postColumns + `
FROM posts
WHERE insight_id = $1
ORDER BY created_at ASC, id ASC`

const publishSQL = `
UPDATE posts
SET status = 'PUBLISHED', published_at = now(), updated_at = now()
WHERE id = $1 AND status = 'DRAFT'
RETURNING ` + postColumns

const statusProbeSQL = `
SELECT status FROM posts WHERE id = $1`

const deleteSQL = `
DELETE FROM posts
WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a post by primary key.
// Returns domain.ErrNotFound if the post does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)

	p, err := scanPost(row)
	if err != nil {
		return nil, postgres.MapError(err, "post", id)
	}

	return p, nil
}

// List returns posts matching the filter plus the total match count.
// Ordered by the filter's sort key (created_at ASC by default) with id as tiebreak.
func (r *Repo) List(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, int, error) {
	f := normalize(filter)
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	where := whereClauses(f)

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("posts").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count posts: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	pageSQL, pageArgs, err := postgres.Builder().
		Select(postColumns).
		From("posts").
		Where(where).
		OrderBy(orderBy(f)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list posts: %w", err)
	}

	rows, err := querier.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return posts, total, nil
}

// FindByInsight returns all posts derived from the given insight, oldest first.
func (r *Repo) FindByInsight(ctx context.Context, insightID uuid.UUID) ([]*domain.Post, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findByInsightSQL, insightID)
	if err != nil {
		return nil, fmt.Errorf("find posts by insight: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("find posts by insight: %w", err)
	}

	return posts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new post in DRAFT status and returns the persisted
// domain.Post. When InsightID is set it must reference an existing insight;
// a dangling id results in domain.ErrForeignKey.
func (r *Repo) Create(ctx context.Context, input domain.NewPost) (*domain.Post, error) {
	if errs := validateNew(input); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	id := uuid.New()
	row := querier.QueryRow(ctx, createSQL,
		id,
		input.InsightID,
		input.Title,
		input.Content,
		now,
		now,
	)

	created, err := scanPost(row)
	if err != nil {
		return nil, postgres.MapError(err, "post", id)
	}

	return created, nil
}

// Update applies the non-nil patch fields and returns the updated post.
// Only Title and Content are patchable; status changes go through Publish.
// Returns domain.ErrNotFound if the post does not exist.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch domain.PostPatch) (*domain.Post, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "no fields to update")
	}
	if errs := validatePatch(patch); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder().
		Update("posts").
		Set("updated_at", time.Now().UTC().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + postColumns)

	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Content != nil {
		b = b.Set("content", *patch.Content)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update post: %w", err)
	}

	updated, err := scanPost(querier.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "post", id)
	}

	return updated, nil
}

// Publish moves a DRAFT post to PUBLISHED and stamps published_at.
// Publishing is not idempotent: a post that is already PUBLISHED results in
// domain.ErrInvalidState, an absent post in domain.ErrNotFound.
func (r *Repo) Publish(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, publishSQL, id)

	published, err := scanPost(row)
	if err == nil {
		return published, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "post", id)
	}

	// Zero rows updated: the post is absent or not a draft. Probe which.
	var status string
	if probeErr := querier.QueryRow(ctx, statusProbeSQL, id).Scan(&status); probeErr != nil {
		return nil, postgres.MapError(probeErr, "post", id)
	}

	return nil, fmt.Errorf("post %s: publish from %s: %w", id, status, domain.ErrInvalidState)
}

// Delete removes a post regardless of status. Deleting an absent post is a
// no-op. Posts still referenced by scheduled posts cannot be removed and
// result in domain.ErrForeignKey.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteSQL, id); err != nil {
		return postgres.MapError(err, "post", id)
	}

	return nil
}

// DeleteStrict removes a post and returns domain.ErrNotFound if no row matched.
func (r *Repo) DeleteStrict(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "post", id)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanPost(row pgx.Row) (*domain.Post, error) {
	var (
		id          uuid.UUID
		insightID   *uuid.UUID
		title       *string
		content     string
		status      string
		publishedAt *time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := row.Scan(&id, &insightID, &title, &content, &status, &publishedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.Post{
		ID:          id,
		InsightID:   insightID,
		Title:       title,
		Content:     content,
		Status:      domain.PostStatus(status),
		PublishedAt: publishedAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []*domain.Post{}
	}

	return posts, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func validateNew(input domain.NewPost) []domain.FieldError {
	var errs []domain.FieldError

	if strings.TrimSpace(input.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "cannot be empty"})
	}

	return errs
}

func validatePatch(patch domain.PostPatch) []domain.FieldError {
	var errs []domain.FieldError

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "cannot be empty"})
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "cannot be empty"})
	}

	return errs
}
