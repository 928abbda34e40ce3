// Command dispatcher runs a single dispatch pass over due scheduled posts:
// it publishes the draft post behind each due PENDING schedule and marks the
// schedule SENT, or FAILED when the post no longer exists. It is intended to
// be invoked by an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success (individual schedule failures do not fail the
// pass), 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/contentpipe/backend/internal/adapter/postgres"
	"github.com/contentpipe/backend/internal/adapter/postgres/post"
	"github.com/contentpipe/backend/internal/adapter/postgres/schedule"
	"github.com/contentpipe/backend/internal/app"
	"github.com/contentpipe/backend/internal/config"
	"github.com/contentpipe/backend/internal/domain"
	"github.com/contentpipe/backend/internal/service/dispatcher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log, "dispatcher")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database, "dispatcher")
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := dispatcher.NewService(
		logger,
		schedule.New(pool),
		post.New(pool),
		postgres.NewTxManager(pool),
	)

	horizon := time.Now().UTC().Add(cfg.Dispatcher.Lookahead)

	logger.Info("dispatch pass starting",
		slog.String("version", app.BuildVersion()),
		slog.Time("due_horizon", horizon),
		slog.Int("batch_size", cfg.Dispatcher.BatchSize),
	)

	result, err := svc.RunPass(ctx, horizon, cfg.Dispatcher.BatchSize)
	if err != nil {
		logger.Error("dispatch pass failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("dispatch pass complete",
		slog.Int("due", result.Due),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
		slog.Int("errors", result.Errors),
	)

	counts, err := svc.QueueCounts(ctx)
	if err != nil {
		logger.Warn("count schedules", slog.String("error", err.Error()))
		return
	}
	logger.Info("schedule queue",
		slog.Int("pending", counts[domain.ScheduleStatusPending]),
		slog.Int("sent", counts[domain.ScheduleStatusSent]),
		slog.Int("failed", counts[domain.ScheduleStatusFailed]),
		slog.Int("cancelled", counts[domain.ScheduleStatusCancelled]),
	)
}
