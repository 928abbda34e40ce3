package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/contentpipe/backend/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors. Every entity repo
// funnels its storage errors through here so the mapping stays uniform:
//
//	pgx.ErrNoRows              -> domain.ErrNotFound
//	23505 unique_violation     -> domain.ErrConflict
//	23503 foreign_key_violation -> domain.ErrForeignKey
//	23514 check_violation      -> domain.ErrValidation
//
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass
// through wrapped, still matchable with errors.Is.
// Pass uuid.Nil when the failing operation has no entity id yet.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrForeignKey)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
