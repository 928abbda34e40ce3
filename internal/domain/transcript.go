package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is a raw ingested transcript record. Content is immutable once
// stored; callers must not update a transcript that insights already reference.
type Transcript struct {
	ID              uuid.UUID
	SourceRef       string
	Content         string
	ContentHash     string
	Language        string
	WordCount       int
	Confidence      *float64
	DurationSeconds *float64
	IngestedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// IsDeleted returns true if the transcript has been soft-deleted.
func (t *Transcript) IsDeleted() bool {
	return t.DeletedAt != nil
}

// NewTranscript holds the caller-supplied fields for creating a transcript.
// ContentHash and WordCount are derived by the repository; IngestedAt defaults
// to the creation time when zero.
type NewTranscript struct {
	SourceRef       string
	Content         string
	Language        string
	Confidence      *float64
	DurationSeconds *float64
	IngestedAt      time.Time
}

// TranscriptPatch holds the updatable transcript fields. Nil means "leave as
// is". Content is deliberately absent: stored transcripts are immutable.
type TranscriptPatch struct {
	SourceRef  *string
	Language   *string
	Confidence *float64
}

// IsEmpty returns true if the patch changes nothing.
func (p TranscriptPatch) IsEmpty() bool {
	return p.SourceRef == nil && p.Language == nil && p.Confidence == nil
}
