package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/model"
)

const itemColumns = "id, number, title, description, state, completed, due_type, due_year, due_which, completed_at, created_by, created_at"

type itemScanner interface {
	Scan(dest ...any) error
}

func scanItem(row itemScanner) (*model.Item, error) {
	item := &model.Item{}
	var dueType sql.NullString
	var dueYear, dueWhich sql.NullInt64
	err := row.Scan(&item.ID, &item.Number, &item.Title, &item.Description, &item.State,
		&item.Completed, &dueType, &dueYear, &dueWhich, &item.CompletedAt, &item.CreatedBy, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	if dueType.Valid {
		item.DueDate = &model.DueDate{
			Type:  dueType.String,
			Year:  int(dueYear.Int64),
			Which: int(dueWhich.Int64),
		}
	}
	return item, nil
}

// CreateItem requests a new item. The creation fee is debited from the
// creator and immediately escrowed as their own bid, so their sunk cost
// participates in priority ranking like any other stake. Numbers are dense:
// max existing number plus one, assigned inside the transaction.
func CreateItem(ctx context.Context, db *sql.DB, userID int64, title, description string) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := Debit(ctx, tx, userID, model.ItemCreationCost); err != nil {
		return nil, err
	}

	var number int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) + 1 FROM items`,
	).Scan(&number)
	if err != nil {
		return nil, fmt.Errorf("assigning item number: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (number, title, description, state, completed, created_by)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		number, title, description, model.StateRequested, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	// The creation fee doubles as the creator's initial vote weight.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bids (item_id, user_id, amount) VALUES (?, ?, ?)`,
		itemID, userID, model.ItemCreationCost,
	)
	if err != nil {
		return nil, fmt.Errorf("recording creator bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, itemID)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	return scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
}

func getItemTx(ctx context.Context, q querier, id int64) (*model.Item, error) {
	return scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
}

// ListItems returns all items, optionally filtered by state, in number order.
func ListItems(ctx context.Context, db *sql.DB, state string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error

	if state != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items WHERE state = ? ORDER BY number`, state,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM items ORDER BY number`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's title, description and due date.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, title, description string, due *model.DueDate) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}

	var dueType any
	var dueYear, dueWhich any
	if due != nil {
		dueType, dueYear, dueWhich = due.Type, due.Year, due.Which
	}

	_, err = db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, due_type = ?, due_year = ?, due_which = ?
		 WHERE id = ?`,
		title, description, dueType, dueYear, dueWhich, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem hard-deletes an item. Bids, devlog messages, the cancellation
// record and release links go with it via foreign keys. Ledger effects
// already applied are not reversed.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}

	_, err = db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// ItemCounts holds per-state item totals for the dashboard.
type ItemCounts struct {
	Total      int `json:"total"`
	Requested  int `json:"requested"`
	Waiting    int `json:"waiting"`
	Scheduled  int `json:"scheduled"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// CountItems returns item counts grouped by state.
func CountItems(ctx context.Context, db *sql.DB) (*ItemCounts, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM items GROUP BY state`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	defer rows.Close()

	counts := &ItemCounts{}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scanning item count: %w", err)
		}
		counts.Total += n
		switch state {
		case model.StateRequested:
			counts.Requested = n
		case model.StateWaiting:
			counts.Waiting = n
		case model.StateScheduled:
			counts.Scheduled = n
		case model.StateInProgress:
			counts.InProgress = n
		case model.StateCompleted:
			counts.Completed = n
		case model.StateCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}
