package post_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentpipe/backend/internal/adapter/postgres/post"
	"github.com/contentpipe/backend/internal/adapter/postgres/testhelper"
	"github.com/contentpipe/backend/internal/domain"
)

// newRepo is a test helper that sets up the DB and returns a ready Repo.
func newRepo(t *testing.T) (*post.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return post.New(pool), pool
}

// newInput returns a valid NewPost with unique content.
func newInput() domain.NewPost {
	suffix := uuid.New().String()[:8]
	return domain.NewPost{
		Content: "five takeaways from the weekly sync " + suffix,
	}
}

// seedInsightID creates a transcript+insight chain and returns the insight id.
func seedInsightID(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	tr := testhelper.SeedTranscript(t, pool)
	return testhelper.SeedInsight(t, pool, tr.ID).ID
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestRepo_Create_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	insightID := seedInsightID(t, pool)
	title := "Weekly sync takeaways"

	input := newInput()
	input.InsightID = &insightID
	input.Title = &title

	got, err := repo.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.ID == uuid.Nil {
		t.Error("ID should not be nil")
	}
	if got.InsightID == nil || *got.InsightID != insightID {
		t.Errorf("InsightID mismatch: got %v, want %v", got.InsightID, insightID)
	}
	if got.Title == nil || *got.Title != title {
		t.Errorf("Title mismatch: got %v, want %q", got.Title, title)
	}
	if got.Content != input.Content {
		t.Errorf("Content mismatch: got %q, want %q", got.Content, input.Content)
	}
	if got.Status != domain.PostStatusDraft {
		t.Errorf("Status should be DRAFT, got %s", got.Status)
	}
	if got.PublishedAt != nil {
		t.Errorf("PublishedAt should be nil on a draft, got %v", got.PublishedAt)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("CreatedAt and UpdatedAt should match on create: %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	fetched, err := repo.GetByID(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if fetched.ID != got.ID || fetched.Content != got.Content {
		t.Errorf("round-trip mismatch: got %+v, want %+v", fetched, got)
	}
}

func TestRepo_Create_WithoutInsight(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	got, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if got.InsightID != nil {
		t.Errorf("InsightID should be nil, got %v", got.InsightID)
	}
	if got.Title != nil {
		t.Errorf("Title should be nil, got %v", got.Title)
	}
}

func TestRepo_Create_EmptyContent(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	input := newInput()
	input.Content = "   "

	_, err := repo.Create(ctx, input)
	assertIsDomainError(t, err, domain.ErrValidation)
}

func TestRepo_Create_UnknownInsight_ForeignKey(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	danglingID := uuid.New()
	input := newInput()
	input.InsightID = &danglingID

	_, err := repo.Create(ctx, input)
	assertIsDomainError(t, err, domain.ErrForeignKey)
	if errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FK violation must not map to ErrNotFound: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_List_FilterByStatus(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	insightID := seedInsightID(t, pool)

	var drafts []*domain.Post
	for i := 0; i < 3; i++ {
		input := newInput()
		input.InsightID = &insightID
		p, err := repo.Create(ctx, input)
		if err != nil {
			t.Fatalf("Create: unexpected error: %v", err)
		}
		drafts = append(drafts, p)
	}
	if _, err := repo.Publish(ctx, drafts[0].ID); err != nil {
		t.Fatalf("Publish: unexpected error: %v", err)
	}

	draft := domain.PostStatusDraft
	got, total, err := repo.List(ctx, domain.PostFilter{InsightID: &insightID, Status: &draft})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 drafts, got total=%d len=%d", total, len(got))
	}

	published := domain.PostStatusPublished
	got, total, err = repo.List(ctx, domain.PostFilter{InsightID: &insightID, Status: &published})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("expected 1 published post, got total=%d len=%d", total, len(got))
	}
	if got[0].ID != drafts[0].ID {
		t.Errorf("published post mismatch: got %s, want %s", got[0].ID, drafts[0].ID)
	}
}

func TestRepo_List_SearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	token := "needle-" + uuid.New().String()[:8]

	withTitle := newInput()
	title := "Launch notes " + token
	withTitle.Title = &title
	inTitle, err := repo.Create(ctx, withTitle)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	withContent := newInput()
	withContent.Content = "the " + token + " is buried in the body"
	inContent, err := repo.Create(ctx, withContent)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	search := strings.ToUpper(token)
	got, total, err := repo.List(ctx, domain.PostFilter{Search: &search})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", total, len(got))
	}

	found := map[uuid.UUID]bool{got[0].ID: true, got[1].ID: true}
	if !found[inTitle.ID] {
		t.Error("title match missing from results")
	}
	if !found[inContent.ID] {
		t.Error("content match missing from results")
	}
}

func TestRepo_List_SortByPublishedAtDesc(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	insightID := seedInsightID(t, pool)

	var publishedIDs []uuid.UUID
	for i := 0; i < 2; i++ {
		input := newInput()
		input.InsightID = &insightID
		p, err := repo.Create(ctx, input)
		if err != nil {
			t.Fatalf("Create: unexpected error: %v", err)
		}
		if _, err := repo.Publish(ctx, p.ID); err != nil {
			t.Fatalf("Publish: unexpected error: %v", err)
		}
		publishedIDs = append(publishedIDs, p.ID)
		time.Sleep(2 * time.Millisecond)
	}

	published := domain.PostStatusPublished
	got, _, err := repo.List(ctx, domain.PostFilter{
		InsightID: &insightID,
		Status:    &published,
		SortBy:    "published_at",
		SortOrder: domain.SortOrderDESC,
	})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(got))
	}
	if got[0].ID != publishedIDs[1] {
		t.Errorf("newest publication should come first: got %s, want %s", got[0].ID, publishedIDs[1])
	}
	if got[0].PublishedAt == nil || got[1].PublishedAt == nil {
		t.Fatal("published posts must carry PublishedAt")
	}
	if got[0].PublishedAt.Before(*got[1].PublishedAt) {
		t.Error("results are not sorted by published_at DESC")
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestRepo_Update_HappyPath(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	title := "Revised title"
	content := "rewritten body with sharper hooks"
	updated, err := repo.Update(ctx, created.ID, domain.PostPatch{Title: &title, Content: &content})
	if err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}

	if updated.Title == nil || *updated.Title != title {
		t.Errorf("Title mismatch: got %v, want %q", updated.Title, title)
	}
	if updated.Content != content {
		t.Errorf("Content mismatch: got %q, want %q", updated.Content, content)
	}
	if updated.Status != domain.PostStatusDraft {
		t.Errorf("Update must not touch status, got %s", updated.Status)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt must not change: got %v, want %v", updated.CreatedAt, created.CreatedAt)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestRepo_Update_EmptyPatch(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err = repo.Update(ctx, created.ID, domain.PostPatch{})
	assertIsDomainError(t, err, domain.ErrValidation)
}

func TestRepo_Update_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	content := "anything"
	_, err := repo.Update(ctx, uuid.New(), domain.PostPatch{Content: &content})
	assertIsDomainError(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Publish
// ---------------------------------------------------------------------------

func TestRepo_Publish_HappyPath(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	published, err := repo.Publish(ctx, created.ID)
	if err != nil {
		t.Fatalf("Publish: unexpected error: %v", err)
	}

	if published.Status != domain.PostStatusPublished {
		t.Errorf("Status should be PUBLISHED, got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatal("PublishedAt should be set after publish")
	}
	if published.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", created.UpdatedAt, published.UpdatedAt)
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if !fetched.IsPublished() {
		t.Error("fetched post should report IsPublished")
	}
}

func TestRepo_Publish_AlreadyPublished_InvalidState(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if _, err := repo.Publish(ctx, created.ID); err != nil {
		t.Fatalf("first Publish: unexpected error: %v", err)
	}

	_, err = repo.Publish(ctx, created.ID)
	assertIsDomainError(t, err, domain.ErrInvalidState)
	if errors.Is(err, domain.ErrNotFound) {
		t.Errorf("republish must not map to ErrNotFound: %v", err)
	}
}

func TestRepo_Publish_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.Publish(ctx, uuid.New())
	assertIsDomainError(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestRepo_Delete_Idempotent(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("second Delete should be a no-op, got: %v", err)
	}
	if err := repo.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("Delete of absent id should be a no-op, got: %v", err)
	}

	_, err = repo.GetByID(ctx, created.ID)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_DeleteStrict(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if err := repo.DeleteStrict(ctx, created.ID); err != nil {
		t.Fatalf("DeleteStrict: unexpected error: %v", err)
	}

	err = repo.DeleteStrict(ctx, created.ID)
	assertIsDomainError(t, err, domain.ErrNotFound)
}

func TestRepo_Delete_WithSchedule_ForeignKey(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newInput())
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	testhelper.SeedSchedule(t, pool, created.ID, time.Now().UTC().Add(time.Hour))

	err = repo.Delete(ctx, created.ID)
	assertIsDomainError(t, err, domain.ErrForeignKey)
}

// ---------------------------------------------------------------------------
// FindByInsight
// ---------------------------------------------------------------------------

func TestRepo_FindByInsight_OldestFirst(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	insightID := seedInsightID(t, pool)
	otherInsightID := seedInsightID(t, pool)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		input := newInput()
		input.InsightID = &insightID
		p, err := repo.Create(ctx, input)
		if err != nil {
			t.Fatalf("Create: unexpected error: %v", err)
		}
		ids = append(ids, p.ID)
		time.Sleep(2 * time.Millisecond)
	}
	// Noise for another insight, must not show up.
	noise := newInput()
	noise.InsightID = &otherInsightID
	if _, err := repo.Create(ctx, noise); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.FindByInsight(ctx, insightID)
	if err != nil {
		t.Fatalf("FindByInsight: unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(got))
	}
	if got[0].ID != ids[0] || got[2].ID != ids[2] {
		t.Error("posts are not ordered oldest first")
	}
}

func TestRepo_FindByInsight_Empty(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	insightID := seedInsightID(t, pool)

	got, err := repo.FindByInsight(ctx, insightID)
	if err != nil {
		t.Fatalf("FindByInsight: unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no posts, got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func assertIsDomainError(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got: %v", target, err)
	}
}
