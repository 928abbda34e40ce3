// Command migrate applies pending goose migrations to the configured database.
//
// Usage:
//
//	migrate [--dir=migrations]
//
// Requires DATABASE_DSN (directly or via config file).
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/contentpipe/backend/internal/app"
	"github.com/contentpipe/backend/internal/config"
)

func main() {
	dir := flag.String("dir", "migrations", "path to the migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log, "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// goose requires *sql.DB, not a pgx pool.
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(*dir))
	if err != nil {
		logger.Error("create migration provider",
			slog.String("dir", *dir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(results) == 0 {
		logger.Info("database is up to date")
		return
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("took", r.Duration),
		)
	}
	logger.Info("migrations applied", slog.Int("count", len(results)))
}
