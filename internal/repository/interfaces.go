package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/propleads/intake/internal/domain"
)

// BuyerRepository defines the persistence operations for buyer records.
//
// Implementations return domain.ErrNotFound / domain.ErrConflict so the
// service layer can map outcomes without inspecting driver errors.
type BuyerRepository interface {
	// Create persists a new buyer together with its creation history entry
	// in one transaction.
	Create(ctx context.Context, buyer domain.Buyer, entry domain.BuyerHistory) (domain.Buyer, error)

	GetByID(ctx context.Context, id uuid.UUID) (domain.Buyer, error)

	// List returns one page of matching buyers plus the total match count,
	// ordered by updated_at descending.
	List(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, int, error)

	// ListAll returns every matching buyer without pagination, in the same
	// order as List. Used for exports.
	ListAll(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, error)

	// UpdateGuarded persists the merged record only if the stored updated_at
	// still equals expectedUpdatedAt, bumping updated_at and appending the
	// history entry (when non-nil) in the same transaction. Concurrent
	// updates against one record see exactly one success; the rest get
	// domain.ErrConflict.
	UpdateGuarded(ctx context.Context, buyer domain.Buyer, expectedUpdatedAt time.Time, entry *domain.BuyerHistory) (domain.Buyer, error)

	// Delete removes the buyer permanently. History rows cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateBatch inserts all buyers inside a single transaction: either
	// every row commits or none do.
	CreateBatch(ctx context.Context, buyers []domain.Buyer) (int, error)
}

// BuyerHistoryRepository stores the append-only audit log.
type BuyerHistoryRepository interface {
	Append(ctx context.Context, entry domain.BuyerHistory) error

	// ListRecent returns the most recent entries for a buyer, newest first,
	// with changer display names resolved where the user still exists.
	ListRecent(ctx context.Context, buyerID uuid.UUID, limit int) ([]domain.BuyerHistory, error)
}

// UserRepository resolves and provisions operator identities.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.User, error)

	// Ensure upserts the user, returning the stored row.
	Ensure(ctx context.Context, user domain.User) (domain.User, error)
}
