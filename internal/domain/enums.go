package domain

// InsightKind classifies what an insight extracted from a transcript represents.
type InsightKind string

const (
	InsightKindSummary    InsightKind = "SUMMARY"
	InsightKindActionItem InsightKind = "ACTION_ITEM"
	InsightKindQuote      InsightKind = "QUOTE"
	InsightKindDecision   InsightKind = "DECISION"
)

func (k InsightKind) String() string { return string(k) }

func (k InsightKind) IsValid() bool {
	switch k {
	case InsightKindSummary, InsightKindActionItem, InsightKindQuote, InsightKindDecision:
		return true
	}
	return false
}

// PostStatus represents the publication state of a post.
// Transitions are monotonic: DRAFT -> PUBLISHED, never back.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
)

func (s PostStatus) String() string { return string(s) }

func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished:
		return true
	}
	return false
}

// ScheduleStatus represents the lifecycle state of a scheduled post.
// PENDING is the only non-terminal state.
type ScheduleStatus string

const (
	ScheduleStatusPending   ScheduleStatus = "PENDING"
	ScheduleStatusSent      ScheduleStatus = "SENT"
	ScheduleStatusFailed    ScheduleStatus = "FAILED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

func (s ScheduleStatus) String() string { return string(s) }

func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusSent, ScheduleStatusFailed, ScheduleStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s ScheduleStatus) IsTerminal() bool {
	switch s {
	case ScheduleStatusSent, ScheduleStatusFailed, ScheduleStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a schedule in this status may move to next.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	if s != ScheduleStatusPending {
		return false
	}
	return next.IsValid() && next != ScheduleStatusPending
}

// Channel identifies the publication target of a scheduled post.
type Channel string

const (
	ChannelTwitter  Channel = "TWITTER"
	ChannelLinkedIn Channel = "LINKEDIN"
	ChannelMastodon Channel = "MASTODON"
	ChannelBlog     Channel = "BLOG"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelTwitter, ChannelLinkedIn, ChannelMastodon, ChannelBlog:
		return true
	}
	return false
}
