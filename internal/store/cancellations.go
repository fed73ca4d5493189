package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/borza/internal/model"
)

// GetCancellation returns an item's cancellation record with the acting
// admin's name attached, or nil if the item was never cancelled this way.
func GetCancellation(ctx context.Context, db *sql.DB, itemID int64) (*model.Cancellation, error) {
	c := &model.Cancellation{}
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.item_id, c.admin_id, c.reason, c.stamp, u.name
		 FROM cancellations c
		 JOIN users u ON u.id = c.admin_id
		 WHERE c.item_id = ?`,
		itemID,
	).Scan(&c.ID, &c.ItemID, &c.AdminID, &c.Reason, &c.Stamp, &c.AdminName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cancellation: %w", err)
	}
	return c, nil
}
