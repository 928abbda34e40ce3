package domain

import (
	"time"

	"github.com/google/uuid"
)

// Insight is a derived finding extracted from a transcript.
type Insight struct {
	ID           uuid.UUID
	TranscriptID uuid.UUID
	Kind         InsightKind
	Content      string
	Confidence   *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewInsight holds the caller-supplied fields for creating an insight.
// TranscriptID must reference an existing transcript.
type NewInsight struct {
	TranscriptID uuid.UUID
	Kind         InsightKind
	Content      string
	Confidence   *float64
}

// InsightPatch holds the updatable insight fields. Nil means "leave as is".
type InsightPatch struct {
	Kind       *InsightKind
	Content    *string
	Confidence *float64
}

// IsEmpty returns true if the patch changes nothing.
func (p InsightPatch) IsEmpty() bool {
	return p.Kind == nil && p.Content == nil && p.Confidence == nil
}
