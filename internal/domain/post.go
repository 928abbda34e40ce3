package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is authored content intended for publication, optionally derived from
// an insight. Status moves DRAFT -> PUBLISHED exactly once, via the
// repository's Publish operation; Update never touches it.
type Post struct {
	ID          uuid.UUID
	InsightID   *uuid.UUID
	Title       *string
	Content     string
	Status      PostStatus
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPublished returns true if the post has been published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// NewPost holds the caller-supplied fields for creating a post.
// Posts always start in DRAFT; InsightID, when set, must reference an
// existing insight.
type NewPost struct {
	InsightID *uuid.UUID
	Title     *string
	Content   string
}

// PostPatch holds the updatable post fields. Nil means "leave as is".
type PostPatch struct {
	Title   *string
	Content *string
}

// IsEmpty returns true if the patch changes nothing.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}
