package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/propleads/intake/internal/db"
	"github.com/propleads/intake/internal/domain"
)

const buyerColumns = `id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, notes, tags, status, owner_id,
	created_at, updated_at`

// buyerRepository implements BuyerRepository on PostgreSQL.
type buyerRepository struct {
	conn *db.Connection
}

// NewBuyerRepository creates a new buyer repository
func NewBuyerRepository(conn *db.Connection) BuyerRepository {
	return &buyerRepository{conn: conn}
}

// Create persists the buyer and its creation history entry atomically.
func (r *buyerRepository) Create(ctx context.Context, buyer domain.Buyer, entry domain.BuyerHistory) (domain.Buyer, error) {
	var created domain.Buyer
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO buyers (id, full_name, email, phone, city, property_type, bhk,
				purpose, budget_min, budget_max, timeline, source, notes, tags, status,
				owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
			RETURNING `+buyerColumns,
			buyer.ID, buyer.FullName, textOrNull(buyer.Email), buyer.Phone,
			string(buyer.City), string(buyer.PropertyType), textOrNull(string(buyer.BHK)),
			string(buyer.Purpose), int8OrNull(buyer.BudgetMin), int8OrNull(buyer.BudgetMax),
			string(buyer.Timeline), string(buyer.Source), textOrNull(buyer.Notes),
			buyer.Tags, string(buyer.Status), buyer.OwnerID,
		)

		var err error
		created, err = scanBuyer(row)
		if err != nil {
			return fmt.Errorf("failed to create buyer: %w", err)
		}
		return insertHistory(ctx, tx, entry, created.CreatedAt)
	})
	if err != nil {
		return domain.Buyer{}, err
	}
	return created, nil
}

// GetByID retrieves a buyer by id.
func (r *buyerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Buyer, error) {
	row := r.conn.Pool.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id)
	buyer, err := scanBuyer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Buyer{}, domain.ErrNotFound
		}
		return domain.Buyer{}, fmt.Errorf("failed to get buyer: %w", err)
	}
	return buyer, nil
}

// List returns one page of matching buyers plus the total match count.
func (r *buyerRepository) List(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, int, error) {
	filter = filter.Normalize()
	where, args := buildBuyerFilterSQL(filter)

	query := `SELECT ` + buyerColumns + `, COUNT(*) OVER() AS total_count FROM buyers` +
		where +
		fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.conn.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list buyers: %w", err)
	}
	defer rows.Close()

	buyers := []domain.Buyer{}
	total := 0
	for rows.Next() {
		buyer, count, err := scanBuyerWithCount(rows)
		if err != nil {
			return nil, 0, err
		}
		buyers = append(buyers, buyer)
		total = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read buyer rows: %w", err)
	}

	// An empty page past the end still needs the real total.
	if len(buyers) == 0 {
		countQuery := `SELECT COUNT(*) FROM buyers` + where
		if err := r.conn.Pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count buyers: %w", err)
		}
	}

	return buyers, total, nil
}

// ListAll returns every matching buyer, newest update first.
func (r *buyerRepository) ListAll(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, error) {
	where, args := buildBuyerFilterSQL(filter)
	query := `SELECT ` + buyerColumns + ` FROM buyers` + where + ` ORDER BY updated_at DESC`

	rows, err := r.conn.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers for export: %w", err)
	}
	defer rows.Close()

	buyers := []domain.Buyer{}
	for rows.Next() {
		buyer, err := scanBuyer(rows)
		if err != nil {
			return nil, err
		}
		buyers = append(buyers, buyer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read buyer rows: %w", err)
	}
	return buyers, nil
}

// UpdateGuarded applies the merged record under the optimistic-concurrency
// guard. The conditional UPDATE and the history insert share one transaction,
// so a mid-flight fault leaves neither behind.
func (r *buyerRepository) UpdateGuarded(ctx context.Context, buyer domain.Buyer, expectedUpdatedAt time.Time, entry *domain.BuyerHistory) (domain.Buyer, error) {
	var updated domain.Buyer
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE buyers
			SET full_name = $1, email = $2, phone = $3, city = $4, property_type = $5,
				bhk = $6, purpose = $7, budget_min = $8, budget_max = $9, timeline = $10,
				source = $11, notes = $12, tags = $13, status = $14,
				updated_at = clock_timestamp()
			WHERE id = $15 AND updated_at = $16
			RETURNING `+buyerColumns,
			buyer.FullName, textOrNull(buyer.Email), buyer.Phone, string(buyer.City),
			string(buyer.PropertyType), textOrNull(string(buyer.BHK)), string(buyer.Purpose),
			int8OrNull(buyer.BudgetMin), int8OrNull(buyer.BudgetMax), string(buyer.Timeline),
			string(buyer.Source), textOrNull(buyer.Notes), buyer.Tags, string(buyer.Status),
			buyer.ID, expectedUpdatedAt,
		)

		var err error
		updated, err = scanBuyer(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Zero rows means either the record is gone or another writer
				// got there first; tell them apart inside the same transaction.
				var exists bool
				if checkErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM buyers WHERE id = $1)`, buyer.ID).Scan(&exists); checkErr != nil {
					return fmt.Errorf("failed to check buyer existence: %w", checkErr)
				}
				if exists {
					return domain.ErrConflict
				}
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to update buyer: %w", err)
		}

		if entry != nil {
			return insertHistory(ctx, tx, *entry, updated.UpdatedAt)
		}
		return nil
	})
	if err != nil {
		return domain.Buyer{}, err
	}
	return updated, nil
}

// Delete removes a buyer permanently.
func (r *buyerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Pool.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete buyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateBatch inserts all buyers in one transaction; a fault mid-batch leaves
// zero rows inserted.
func (r *buyerRepository) CreateBatch(ctx context.Context, buyers []domain.Buyer) (int, error) {
	if len(buyers) == 0 {
		return 0, nil
	}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, buyer := range buyers {
			batch.Queue(`
				INSERT INTO buyers (id, full_name, email, phone, city, property_type, bhk,
					purpose, budget_min, budget_max, timeline, source, notes, tags, status,
					owner_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())`,
				buyer.ID, buyer.FullName, textOrNull(buyer.Email), buyer.Phone,
				string(buyer.City), string(buyer.PropertyType), textOrNull(string(buyer.BHK)),
				string(buyer.Purpose), int8OrNull(buyer.BudgetMin), int8OrNull(buyer.BudgetMax),
				string(buyer.Timeline), string(buyer.Source), textOrNull(buyer.Notes),
				buyer.Tags, string(buyer.Status), buyer.OwnerID,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range buyers {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert batch row: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(buyers), nil
}

// buildBuyerFilterSQL renders the filter into a WHERE clause. Search is an OR
// of case-insensitive substring matches; exact filters are ANDed.
func buildBuyerFilterSQL(filter domain.BuyerFilter) (string, []any) {
	var clauses []string
	var args []any

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	if filter.City != "" {
		args = append(args, string(filter.City))
		clauses = append(clauses, fmt.Sprintf("city = $%d", len(args)))
	}
	if filter.PropertyType != "" {
		args = append(args, string(filter.PropertyType))
		clauses = append(clauses, fmt.Sprintf("property_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Timeline != "" {
		args = append(args, string(filter.Timeline))
		clauses = append(clauses, fmt.Sprintf("timeline = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func insertHistory(ctx context.Context, tx pgx.Tx, entry domain.BuyerHistory, changedAt time.Time) error {
	diffJSON, err := json.Marshal(entry.Diff)
	if err != nil {
		return fmt.Errorf("failed to marshal history diff: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.BuyerID, entry.ChangedBy, changedAt, diffJSON,
	); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func textOrNull(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}

func int8OrNull(value *int64) pgtype.Int8 {
	if value == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *value, Valid: true}
}

func scanBuyer(row pgx.Row) (domain.Buyer, error) {
	var (
		buyer               domain.Buyer
		email, bhk, notes   pgtype.Text
		budgetMin, budgetMax pgtype.Int8
		city, propertyType  string
		purpose, timeline   string
		source, status      string
	)

	if err := row.Scan(
		&buyer.ID, &buyer.FullName, &email, &buyer.Phone, &city, &propertyType,
		&bhk, &purpose, &budgetMin, &budgetMax, &timeline, &source, &notes,
		&buyer.Tags, &status, &buyer.OwnerID, &buyer.CreatedAt, &buyer.UpdatedAt,
	); err != nil {
		return domain.Buyer{}, err
	}

	fillBuyer(&buyer, email, bhk, notes, budgetMin, budgetMax, city, propertyType, purpose, timeline, source, status)
	return buyer, nil
}

func scanBuyerWithCount(row pgx.Row) (domain.Buyer, int, error) {
	var (
		buyer               domain.Buyer
		email, bhk, notes   pgtype.Text
		budgetMin, budgetMax pgtype.Int8
		city, propertyType  string
		purpose, timeline   string
		source, status      string
		total               int
	)

	if err := row.Scan(
		&buyer.ID, &buyer.FullName, &email, &buyer.Phone, &city, &propertyType,
		&bhk, &purpose, &budgetMin, &budgetMax, &timeline, &source, &notes,
		&buyer.Tags, &status, &buyer.OwnerID, &buyer.CreatedAt, &buyer.UpdatedAt,
		&total,
	); err != nil {
		return domain.Buyer{}, 0, fmt.Errorf("failed to scan buyer row: %w", err)
	}

	fillBuyer(&buyer, email, bhk, notes, budgetMin, budgetMax, city, propertyType, purpose, timeline, source, status)
	return buyer, total, nil
}

func fillBuyer(
	buyer *domain.Buyer,
	email, bhk, notes pgtype.Text,
	budgetMin, budgetMax pgtype.Int8,
	city, propertyType, purpose, timeline, source, status string,
) {
	buyer.Email = email.String
	buyer.BHK = domain.BHK(bhk.String)
	buyer.Notes = notes.String
	if budgetMin.Valid {
		v := budgetMin.Int64
		buyer.BudgetMin = &v
	}
	if budgetMax.Valid {
		v := budgetMax.Int64
		buyer.BudgetMax = &v
	}
	buyer.City = domain.City(city)
	buyer.PropertyType = domain.PropertyType(propertyType)
	buyer.Purpose = domain.Purpose(purpose)
	buyer.Timeline = domain.Timeline(timeline)
	buyer.Source = domain.Source(source)
	buyer.Status = domain.Status(status)
	if buyer.Tags == nil {
		buyer.Tags = []string{}
	}
}
