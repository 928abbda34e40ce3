package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledPost records when and where a post publishes, with its own
// lifecycle: PENDING -> SENT | FAILED | CANCELLED. A partial unique index
// guarantees at most one PENDING schedule per post.
type ScheduledPost struct {
	ID            uuid.UUID
	PostID        uuid.UUID
	Channel       Channel
	PublishAt     time.Time
	Status        ScheduleStatus
	SentAt        *time.Time
	FailureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDue returns true if the schedule is PENDING and its publish time has
// passed relative to now.
func (s *ScheduledPost) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusPending && !s.PublishAt.After(now)
}

// NewSchedule holds the caller-supplied fields for creating a schedule.
// PublishAt must be strictly in the future; PostID must reference an
// existing post.
type NewSchedule struct {
	PostID    uuid.UUID
	Channel   Channel
	PublishAt time.Time
}

// SchedulePatch holds the updatable schedule fields, applied only while the
// schedule is PENDING. Nil means "leave as is".
type SchedulePatch struct {
	Channel   *Channel
	PublishAt *time.Time
}

// IsEmpty returns true if the patch changes nothing.
func (p SchedulePatch) IsEmpty() bool {
	return p.Channel == nil && p.PublishAt == nil
}
