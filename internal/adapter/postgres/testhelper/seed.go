package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentpipe/backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedTranscript creates a transcript row with unique source_ref and content.
// Returns a filled domain.Transcript.
func SeedTranscript(t *testing.T, pool *pgxpool.Pool) domain.Transcript {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	content := "seed transcript body " + suffix
	confidence := 0.9

	tr := domain.Transcript{
		ID:          uuid.New(),
		SourceRef:   "seed://recordings/" + suffix,
		Content:     content,
		ContentHash: domain.ContentHash(content),
		Language:    "en",
		WordCount:   domain.CountWords(content),
		Confidence:  &confidence,
		IngestedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO transcripts (id, source_ref, content, content_hash, language, word_count, confidence, ingested_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tr.ID, tr.SourceRef, tr.Content, tr.ContentHash, tr.Language, tr.WordCount, tr.Confidence, tr.IngestedAt, tr.CreatedAt, tr.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTranscript insert: %v", err)
	}

	return tr
}

// SeedInsight creates an insight row for the given transcript.
// Returns a filled domain.Insight.
func SeedInsight(t *testing.T, pool *pgxpool.Pool, transcriptID uuid.UUID) domain.Insight {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	confidence := 0.8

	in := domain.Insight{
		ID:           uuid.New(),
		TranscriptID: transcriptID,
		Kind:         domain.InsightKindSummary,
		Content:      "seed insight " + suffix,
		Confidence:   &confidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO insights (id, transcript_id, kind, content, confidence, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.TranscriptID, string(in.Kind), in.Content, in.Confidence, in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInsight insert: %v", err)
	}

	return in
}

// SeedPost creates a DRAFT post without an insight link.
// Returns a filled domain.Post.
func SeedPost(t *testing.T, pool *pgxpool.Pool) domain.Post {
	t.Helper()
	return seedPost(t, pool, nil)
}

// SeedPostForInsight creates a DRAFT post linked to the given insight.
func SeedPostForInsight(t *testing.T, pool *pgxpool.Pool, insightID uuid.UUID) domain.Post {
	t.Helper()
	return seedPost(t, pool, &insightID)
}

func seedPost(t *testing.T, pool *pgxpool.Pool, insightID *uuid.UUID) domain.Post {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	title := "Seed post " + suffix

	p := domain.Post{
		ID:        uuid.New(),
		InsightID: insightID,
		Title:     &title,
		Content:   "seed post body " + suffix,
		Status:    domain.PostStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO posts (id, insight_id, title, content, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.InsightID, p.Title, p.Content, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seedPost insert: %v", err)
	}

	return p
}

// SeedPublishedPost creates a post that is already PUBLISHED.
func SeedPublishedPost(t *testing.T, pool *pgxpool.Pool) domain.Post {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	title := "Seed published post " + suffix

	p := domain.Post{
		ID:          uuid.New(),
		Title:       &title,
		Content:     "seed published body " + suffix,
		Status:      domain.PostStatusPublished,
		PublishedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO posts (id, title, content, status, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Content, string(p.Status), p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPublishedPost insert: %v", err)
	}

	return p
}

// SeedSchedule creates a PENDING schedule for the given post.
// publishAt is stored truncated to microseconds, matching Postgres precision.
func SeedSchedule(t *testing.T, pool *pgxpool.Pool, postID uuid.UUID, publishAt time.Time) domain.ScheduledPost {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)

	sp := domain.ScheduledPost{
		ID:        uuid.New(),
		PostID:    postID,
		Channel:   domain.ChannelTwitter,
		PublishAt: publishAt.UTC().Truncate(time.Microsecond),
		Status:    domain.ScheduleStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO scheduled_posts (id, post_id, channel, publish_at, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sp.ID, sp.PostID, string(sp.Channel), sp.PublishAt, string(sp.Status), sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSchedule insert: %v", err)
	}

	return sp
}
