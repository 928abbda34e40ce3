// Package dispatcher runs dispatch passes over due scheduled posts: it
// publishes the underlying draft post and closes the schedule as SENT, or
// fails schedules whose post is gone.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contentpipe/backend/internal/domain"
)

// defaultBatchSize caps one pass when the caller passes no explicit limit.
const defaultBatchSize = 50

// scheduleRepo defines the schedule repository interface needed by the dispatcher.
type scheduleRepo interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledPost, error)
	MarkSent(ctx context.Context, id uuid.UUID) (*domain.ScheduledPost, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*domain.ScheduledPost, error)
	CountByStatus(ctx context.Context) (map[domain.ScheduleStatus]int, error)
}

// postRepo defines the post repository interface needed by the dispatcher.
type postRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Publish(ctx context.Context, id uuid.UUID) (*domain.Post, error)
}

// txManager defines the transaction manager interface needed by the dispatcher.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the dispatch pass.
type Service struct {
	log       *slog.Logger
	schedules scheduleRepo
	posts     postRepo
	tx        txManager
}

// NewService creates a new dispatcher service instance.
func NewService(
	logger *slog.Logger,
	schedules scheduleRepo,
	posts postRepo,
	tx txManager,
) *Service {
	return &Service{
		log:       logger.With("service", "dispatcher"),
		schedules: schedules,
		posts:     posts,
		tx:        tx,
	}
}

// Result summarizes one dispatch pass.
type Result struct {
	Due    int // schedules picked up by the pass
	Sent   int // dispatched and marked SENT
	Failed int // marked FAILED (post no longer exists)
	Errors int // left PENDING for the next pass
}

// RunPass dispatches every PENDING schedule due at now, up to batchSize
// schedules (<= 0 means the default cap). A schedule whose post is still a
// draft is published and marked sent atomically; a schedule whose post is
// already published only needs its own row closed. Individual failures do
// not abort the pass.
func (s *Service) RunPass(ctx context.Context, now time.Time, batchSize int) (Result, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	due, err := s.schedules.FindDue(ctx, now, batchSize)
	if err != nil {
		return Result{}, fmt.Errorf("find due schedules: %w", err)
	}

	result := Result{Due: len(due)}

	for _, sched := range due {
		err := s.dispatchOne(ctx, sched)
		switch {
		case err == nil:
			result.Sent++
			s.log.InfoContext(ctx, "schedule dispatched",
				slog.String("schedule_id", sched.ID.String()),
				slog.String("post_id", sched.PostID.String()),
				slog.String("channel", string(sched.Channel)),
			)
		case errors.Is(err, domain.ErrNotFound):
			// The post is gone. Fail the schedule so it leaves the queue.
			if _, mErr := s.schedules.MarkFailed(ctx, sched.ID, "post no longer exists"); mErr != nil {
				result.Errors++
				s.log.ErrorContext(ctx, "mark schedule failed",
					slog.String("schedule_id", sched.ID.String()),
					slog.String("error", mErr.Error()),
				)
				continue
			}
			result.Failed++
			s.log.WarnContext(ctx, "schedule failed, post missing",
				slog.String("schedule_id", sched.ID.String()),
				slog.String("post_id", sched.PostID.String()),
			)
		default:
			// Leave the schedule PENDING; the next pass picks it up again.
			result.Errors++
			s.log.ErrorContext(ctx, "dispatch schedule",
				slog.String("schedule_id", sched.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// dispatchOne closes a single due schedule. Draft posts are published and the
// schedule marked sent in one transaction; already-published posts only need
// the schedule row closed.
func (s *Service) dispatchOne(ctx context.Context, sched *domain.ScheduledPost) error {
	post, err := s.posts.GetByID(ctx, sched.PostID)
	if err != nil {
		return fmt.Errorf("resolve post %s: %w", sched.PostID, err)
	}

	if post.IsPublished() {
		if _, err := s.schedules.MarkSent(ctx, sched.ID); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		return nil
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.posts.Publish(txCtx, post.ID); err != nil {
			return fmt.Errorf("publish post %s: %w", post.ID, err)
		}
		if _, err := s.schedules.MarkSent(txCtx, sched.ID); err != nil {
			return fmt.Errorf("mark sent: %w", err)
		}
		return nil
	})
}

// QueueCounts returns schedule counts grouped by status.
func (s *Service) QueueCounts(ctx context.Context) (map[domain.ScheduleStatus]int, error) {
	return s.schedules.CountByStatus(ctx)
}
