package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldChange records the before/after values of a single buyer field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff maps changed field names to their old/new values.
type Diff map[string]FieldChange

// BuyerHistory is one append-only audit entry for a buyer record. Entries are
// never edited or deleted.
type BuyerHistory struct {
	ID        uuid.UUID `json:"-"`
	BuyerID   uuid.UUID `json:"-"`
	ChangedBy string    `json:"changedBy"`
	// UserName is the changer's display name, resolved on read when the user
	// still exists.
	UserName  string    `json:"userName,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
	Diff      Diff      `json:"diff"`
}

// CreationDiff builds the marker diff recorded alongside a freshly created
// buyer.
func CreationDiff(b Buyer) Diff {
	return Diff{"created": {New: b}}
}

// NewHistoryEntry prepares an entry for the given buyer and actor. ChangedAt
// is assigned by the store at write time.
func NewHistoryEntry(buyerID uuid.UUID, changedBy string, diff Diff) BuyerHistory {
	return BuyerHistory{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		ChangedBy: changedBy,
		Diff:      diff,
	}
}
