package domain

import (
	"testing"
	"time"
)

func TestScheduledPost_IsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		sp   ScheduledPost
		want bool
	}{
		{
			name: "PENDING with past publish_at is due",
			sp:   ScheduledPost{Status: ScheduleStatusPending, PublishAt: past},
			want: true,
		},
		{
			name: "PENDING with publish_at exactly now is due",
			sp:   ScheduledPost{Status: ScheduleStatusPending, PublishAt: now},
			want: true,
		},
		{
			name: "PENDING with future publish_at is not due",
			sp:   ScheduledPost{Status: ScheduleStatusPending, PublishAt: future},
			want: false,
		},
		{
			name: "SENT is never due",
			sp:   ScheduledPost{Status: ScheduleStatusSent, PublishAt: past},
			want: false,
		},
		{
			name: "FAILED is never due",
			sp:   ScheduledPost{Status: ScheduleStatusFailed, PublishAt: past},
			want: false,
		},
		{
			name: "CANCELLED is never due",
			sp:   ScheduledPost{Status: ScheduleStatusCancelled, PublishAt: past},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.sp.IsDue(now); got != tt.want {
				t.Errorf("ScheduledPost.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSchedulePatch_IsEmpty(t *testing.T) {
	t.Parallel()

	if !(SchedulePatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}

	ch := ChannelBlog
	if (SchedulePatch{Channel: &ch}).IsEmpty() {
		t.Error("patch with channel should not be empty")
	}

	at := time.Now().Add(time.Hour)
	if (SchedulePatch{PublishAt: &at}).IsEmpty() {
		t.Error("patch with publish_at should not be empty")
	}
}
