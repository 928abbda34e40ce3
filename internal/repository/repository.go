// Package repository defines the persistence contract shared by every
// entity store. Each Postgres adapter implements it independently and
// adds the entity-specific lookups and state transitions on top.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the common CRUD surface over an entity type T.
// N is the creation input, P the partial-update patch and F the
// listing filter for that entity.
//
// Implementations run each call as a single statement against the pool
// unless the caller put a transaction into the context; they never
// retry and never open transactions of their own.
type Repository[T, N, P, F any] interface {
	// Create validates input, persists a new entity and returns it
	// with storage-assigned fields populated.
	Create(ctx context.Context, input N) (*T, error)

	// GetByID returns the entity or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	// List returns one page of entities matching the filter plus the
	// total match count before pagination. Order is stable: the
	// filter's sort key, creation time ascending when unset, with the
	// id as tiebreak.
	List(ctx context.Context, filter F) ([]*T, int, error)

	// Update applies the non-nil fields of patch and returns the
	// updated entity. An empty patch is domain.ErrValidation.
	Update(ctx context.Context, id uuid.UUID, patch P) (*T, error)

	// Delete removes the entity. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteStrict removes the entity and returns domain.ErrNotFound
	// when no row matched.
	DeleteStrict(ctx context.Context, id uuid.UUID) error
}
