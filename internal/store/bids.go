package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/model"
)

// PlaceBid creates or adjusts a user's bid on an item and escrows the
// matching chips. A new bid debits the full amount; re-bidding settles only
// the difference. Amounts below the minimum are rejected; shrinking an
// existing bid below the minimum must use RemoveBid instead.
func PlaceBid(ctx context.Context, db *sql.DB, userID, itemID int64, amount int) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, apperr.New(apperr.CodeNotFound, "item not found")
	}
	if model.IsTerminal(item.State) {
		return 0, apperr.New(apperr.CodeAlreadyTerminal, "item is no longer open for bidding")
	}
	if amount < model.MinBid {
		return 0, apperr.New(apperr.CodeBidTooLow,
			fmt.Sprintf("minimum bid is %d chips", model.MinBid))
	}

	existing, err := getBidTx(ctx, tx, itemID, userID)
	if err != nil {
		return 0, err
	}

	if existing != nil {
		difference := amount - existing.Amount
		switch {
		case difference > 0:
			if err := Debit(ctx, tx, userID, difference); err != nil {
				return 0, err
			}
		case difference < 0:
			if err := Credit(ctx, tx, userID, -difference); err != nil {
				return 0, err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE bids SET amount = ? WHERE id = ?`, amount, existing.ID,
		); err != nil {
			return 0, fmt.Errorf("updating bid: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("committing bid update: %w", err)
		}
		return existing.ID, nil
	}

	if err := Debit(ctx, tx, userID, amount); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO bids (item_id, user_id, amount) VALUES (?, ?, ?)`,
		itemID, userID, amount,
	)
	if err != nil {
		return 0, fmt.Errorf("creating bid: %w", err)
	}

	bidID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting bid id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bid: %w", err)
	}
	return bidID, nil
}

// RemoveBid withdraws a user's bid from an item and refunds the full stake.
// Removing a bid that does not exist is a no-op.
func RemoveBid(ctx context.Context, db *sql.DB, userID, itemID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	bid, err := getBidTx(ctx, tx, itemID, userID)
	if err != nil {
		return err
	}
	if bid == nil {
		return nil
	}

	if err := Credit(ctx, tx, userID, bid.Amount); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE id = ?`, bid.ID); err != nil {
		return fmt.Errorf("deleting bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bid removal: %w", err)
	}
	return nil
}

// GetBid returns a user's bid on an item, or nil if none exists.
func GetBid(ctx context.Context, db *sql.DB, itemID, userID int64) (*model.Bid, error) {
	return getBidTx(ctx, db, itemID, userID)
}

func getBidTx(ctx context.Context, q querier, itemID, userID int64) (*model.Bid, error) {
	b := &model.Bid{}
	err := q.QueryRowContext(ctx,
		`SELECT id, item_id, user_id, amount, created_at
		 FROM bids WHERE item_id = ? AND user_id = ?`,
		itemID, userID,
	).Scan(&b.ID, &b.ItemID, &b.UserID, &b.Amount, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting bid: %w", err)
	}
	return b, nil
}

// ListItemBids returns all bids on an item with bidder identity attached.
func ListItemBids(ctx context.Context, db *sql.DB, itemID int64) ([]model.Bid, error) {
	return listItemBids(ctx, db, itemID)
}

func listItemBids(ctx context.Context, q querier, itemID int64) ([]model.Bid, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT b.id, b.item_id, b.user_id, b.amount, b.created_at, u.name, u.avatar_url
		 FROM bids b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.item_id = ?
		 ORDER BY b.amount DESC, b.id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ItemID, &b.UserID, &b.Amount, &b.CreatedAt,
			&b.UserName, &b.UserAvatarURL); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// ListUserBids returns all of a user's bids with the item reference attached.
func ListUserBids(ctx context.Context, db *sql.DB, userID int64) ([]model.Bid, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.item_id, b.user_id, b.amount, b.created_at,
		        i.number, i.title, i.state
		 FROM bids b
		 JOIN items i ON i.id = b.item_id
		 WHERE b.user_id = ?
		 ORDER BY b.amount DESC, b.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ItemID, &b.UserID, &b.Amount, &b.CreatedAt,
			&b.ItemNumber, &b.ItemTitle, &b.ItemState); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}
