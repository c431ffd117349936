package buyers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
	"github.com/propleads/intake/pkg/validator"
)

// recentHistoryLimit caps the history entries returned on the detail view.
const recentHistoryLimit = 5

// Service implements buyer record management on top of the repositories.
type Service struct {
	buyers    repository.BuyerRepository
	history   repository.BuyerHistoryRepository
	validator *validator.BuyerValidator
}

// NewService wires the service to its stores.
func NewService(buyers repository.BuyerRepository, history repository.BuyerHistoryRepository, v *validator.BuyerValidator) *Service {
	return &Service{buyers: buyers, history: history, validator: v}
}

// Detail is a buyer record together with its recent change history.
type Detail struct {
	Buyer   domain.Buyer          `json:"buyer"`
	History []domain.BuyerHistory `json:"history"`
}

// Create validates the candidate payload, stamps identity and ownership, and
// persists the record with its creation history entry.
func (s *Service) Create(ctx context.Context, actingUser string, in validator.BuyerInput) (domain.Buyer, error) {
	candidate, fieldErrs := s.validator.ValidateNew(in)
	if len(fieldErrs) > 0 {
		return domain.Buyer{}, domain.NewValidationError(fieldErrs)
	}

	buyer := domain.NewBuyer(actingUser, candidate)
	entry := domain.NewHistoryEntry(buyer.ID, actingUser, domain.CreationDiff(buyer))

	created, err := s.buyers.Create(ctx, buyer, entry)
	if err != nil {
		return domain.Buyer{}, fmt.Errorf("failed to create buyer: %w", err)
	}
	return created, nil
}

// Get returns the record with its most recent history entries.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	buyer, err := s.buyers.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	entries, err := s.history.ListRecent(ctx, id, recentHistoryLimit)
	if err != nil {
		return Detail{}, fmt.Errorf("failed to load buyer history: %w", err)
	}
	return Detail{Buyer: buyer, History: entries}, nil
}

// Update merges the present fields onto the stored record and persists the
// result, guarded by the concurrency token. Only the owner may update; a
// stale token yields domain.ErrConflict. A change that alters nothing still
// succeeds but appends no history.
func (s *Service) Update(ctx context.Context, actingUser string, id uuid.UUID, in validator.PatchInput, expectedUpdatedAt time.Time) (domain.Buyer, error) {
	existing, err := s.buyers.GetByID(ctx, id)
	if err != nil {
		return domain.Buyer{}, err
	}
	if existing.OwnerID != actingUser {
		return domain.Buyer{}, domain.ErrForbidden
	}
	if !existing.UpdatedAt.Equal(expectedUpdatedAt) {
		return domain.Buyer{}, domain.ErrConflict
	}

	patch, fieldErrs := s.validator.ParsePatch(in)
	if len(fieldErrs) > 0 {
		return domain.Buyer{}, domain.NewValidationError(fieldErrs)
	}

	merged, _ := patch.Apply(existing)
	normalized, fieldErrs := s.validator.ValidateRecord(merged)
	if len(fieldErrs) > 0 {
		return domain.Buyer{}, domain.NewValidationError(fieldErrs)
	}

	// Diff against the record as it will be persisted: validation can
	// normalize fields the payload never named (bhk is cleared when the
	// property type stops being residential) and the audit trail must
	// record those changes too.
	diff := domain.DiffBuyers(existing, normalized)

	var entry *domain.BuyerHistory
	if len(diff) > 0 {
		e := domain.NewHistoryEntry(id, actingUser, diff)
		entry = &e
	}

	// The conditional update inside the repository is the final arbiter
	// under concurrent writers; the token check above just fails fast.
	updated, err := s.buyers.UpdateGuarded(ctx, normalized, expectedUpdatedAt, entry)
	if err != nil {
		return domain.Buyer{}, err
	}
	return updated, nil
}

// Delete removes the record permanently. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, actingUser string, id uuid.UUID) error {
	existing, err := s.buyers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actingUser {
		return domain.ErrForbidden
	}
	return s.buyers.Delete(ctx, id)
}

// Page is one page of list results.
type Page struct {
	Items    []domain.Buyer `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// List returns the filtered, paginated buyer page ordered by recency.
func (s *Service) List(ctx context.Context, filter domain.BuyerFilter) (Page, error) {
	filter = filter.Normalize()
	items, total, err := s.buyers.List(ctx, filter)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list buyers: %w", err)
	}
	return Page{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}
