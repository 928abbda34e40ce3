package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sort orders accepted by every filter. Repositories default to ascending
// creation time with the entity id as tiebreak, so pages stay stable and
// restartable between calls.
const (
	SortOrderASC  = "ASC"
	SortOrderDESC = "DESC"
)

// TranscriptFilter contains filtering/pagination parameters for transcript
// listings. Soft-deleted transcripts are never returned.
type TranscriptFilter struct {
	// SourceRef filters by exact ingestion source reference.
	SourceRef *string

	// Language filters by exact language code.
	Language *string

	// IngestedAfter/IngestedBefore bound ingested_at (inclusive).
	IngestedAfter  *time.Time
	IngestedBefore *time.Time

	// SortBy: "created_at" (default) or "ingested_at".
	SortBy string

	// SortOrder: "ASC" (default) or "DESC".
	SortOrder string

	// Limit is the page size. Default 50, max 200.
	Limit int

	// Offset is the number of rows to skip.
	Offset int
}

// InsightFilter contains filtering/pagination parameters for insight listings.
type InsightFilter struct {
	// TranscriptID filters insights derived from one transcript.
	TranscriptID *uuid.UUID

	// Kind filters by insight kind.
	Kind *InsightKind

	// MinConfidence keeps insights whose confidence is >= the bound.
	// Insights without a confidence value are excluded when set.
	MinConfidence *float64

	// SortBy: "created_at" (default) or "confidence".
	SortBy string

	SortOrder string
	Limit     int
	Offset    int
}

// PostFilter contains filtering/pagination parameters for post listings.
type PostFilter struct {
	// Status filters by publication status.
	Status *PostStatus

	// InsightID filters posts derived from one insight.
	InsightID *uuid.UUID

	// Search performs ILIKE '%...%' on title and content.
	Search *string

	// SortBy: "created_at" (default) or "published_at".
	SortBy string

	SortOrder string
	Limit     int
	Offset    int
}

// ScheduleFilter contains filtering/pagination parameters for schedule
// listings.
type ScheduleFilter struct {
	// PostID filters schedules for one post.
	PostID *uuid.UUID

	// Status filters by lifecycle status.
	Status *ScheduleStatus

	// Channel filters by publication channel.
	Channel *Channel

	// SortBy: "created_at" (default) or "publish_at".
	SortBy string

	SortOrder string
	Limit     int
	Offset    int
}
