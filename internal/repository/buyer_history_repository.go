package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propleads/intake/internal/domain"
)

// buyerHistoryRepository implements BuyerHistoryRepository on PostgreSQL.
type buyerHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewBuyerHistoryRepository creates a new history repository
func NewBuyerHistoryRepository(pool *pgxpool.Pool) BuyerHistoryRepository {
	return &buyerHistoryRepository{pool: pool}
}

// Append writes one audit entry. Entries are never updated or deleted.
func (r *buyerHistoryRepository) Append(ctx context.Context, entry domain.BuyerHistory) error {
	diffJSON, err := json.Marshal(entry.Diff)
	if err != nil {
		return fmt.Errorf("failed to marshal history diff: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
		VALUES ($1, $2, $3, now(), $4)`,
		entry.ID, entry.BuyerID, entry.ChangedBy, diffJSON,
	); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for a buyer with changer names
// resolved. Deleted users leave the name empty.
func (r *buyerHistoryRepository) ListRecent(ctx context.Context, buyerID uuid.UUID, limit int) ([]domain.BuyerHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.id, h.buyer_id, h.changed_by, h.changed_at, h.diff, u.name
		FROM buyer_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.buyer_id = $1
		ORDER BY h.changed_at DESC
		LIMIT $2`,
		buyerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []domain.BuyerHistory{}
	for rows.Next() {
		var (
			entry    domain.BuyerHistory
			diffJSON []byte
			userName pgtype.Text
		)
		if err := rows.Scan(&entry.ID, &entry.BuyerID, &entry.ChangedBy, &entry.ChangedAt, &diffJSON, &userName); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal(diffJSON, &entry.Diff); err != nil {
			return nil, fmt.Errorf("failed to decode history diff for %s: %w", entry.ID, err)
		}
		entry.UserName = userName.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}
