package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/erazemk/borza/internal/model"
)

// ItemPriority computes an item's weighted ranking score: the sum of each
// bid amount times the bidder's coefficient (default 1). Recomputed on
// demand, never stored.
func ItemPriority(ctx context.Context, db *sql.DB, itemID int64) (float64, error) {
	var priority float64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(b.amount * COALESCE(c.value, 1)), 0)
		 FROM bids b
		 LEFT JOIN coefficients c ON c.user_id = b.user_id
		 WHERE b.item_id = ?`,
		itemID,
	).Scan(&priority)
	if err != nil {
		return 0, fmt.Errorf("computing priority: %w", err)
	}
	return priority, nil
}

// RankedItem is an item with its recomputed priority score.
type RankedItem struct {
	ID       int64   `json:"id"`
	Number   int64   `json:"number"`
	Title    string  `json:"title"`
	State    string  `json:"state"`
	Priority float64 `json:"priority"`
	BidCount int     `json:"bid_count"`
}

// ListItemsByPriority returns all items sorted by priority, descending.
func ListItemsByPriority(ctx context.Context, db *sql.DB) ([]RankedItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.number, i.title, i.state,
		        COALESCE(SUM(b.amount * COALESCE(c.value, 1)), 0) AS priority,
		        COUNT(b.id)
		 FROM items i
		 LEFT JOIN bids b ON b.item_id = i.id
		 LEFT JOIN coefficients c ON c.user_id = b.user_id
		 GROUP BY i.id
		 ORDER BY priority DESC, i.number`,
	)
	if err != nil {
		return nil, fmt.Errorf("ranking items: %w", err)
	}
	defer rows.Close()

	var ranked []RankedItem
	for rows.Next() {
		var r RankedItem
		if err := rows.Scan(&r.ID, &r.Number, &r.Title, &r.State, &r.Priority, &r.BidCount); err != nil {
			return nil, fmt.Errorf("scanning ranked item: %w", err)
		}
		ranked = append(ranked, r)
	}
	return ranked, rows.Err()
}

// PortfolioBid is a bid in a user's portfolio with its item reference.
type PortfolioBid struct {
	ID          int64      `json:"id"`
	Amount      int        `json:"amount"`
	ItemID      int64      `json:"item_id"`
	ItemNumber  int64      `json:"item_number"`
	ItemTitle   string     `json:"item_title"`
	ItemState   string     `json:"item_state"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Portfolio summarizes a user's chip position across all their bids.
type Portfolio struct {
	Balance       int            `json:"balance"`
	TotalInvested int            `json:"total_invested"`
	ActiveBids    []PortfolioBid `json:"active_bids"`
	CompletedBids []PortfolioBid `json:"completed_bids"`
	CancelledBids []PortfolioBid `json:"cancelled_bids"`
}

// GetPortfolio returns a user's balance and their bids bucketed by item
// state. Active bids sort by amount descending, completed bids by completion
// time descending.
func GetPortfolio(ctx context.Context, db *sql.DB, userID int64) (*Portfolio, error) {
	balance, err := Balance(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.amount, i.id, i.number, i.title, i.state, i.completed_at
		 FROM bids b
		 JOIN items i ON i.id = b.item_id
		 WHERE b.user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing portfolio bids: %w", err)
	}
	defer rows.Close()

	p := &Portfolio{Balance: balance}
	for rows.Next() {
		var b PortfolioBid
		if err := rows.Scan(&b.ID, &b.Amount, &b.ItemID, &b.ItemNumber, &b.ItemTitle,
			&b.ItemState, &b.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning portfolio bid: %w", err)
		}

		switch b.ItemState {
		case model.StateCompleted:
			p.CompletedBids = append(p.CompletedBids, b)
		case model.StateCancelled:
			p.CancelledBids = append(p.CancelledBids, b)
		default:
			p.ActiveBids = append(p.ActiveBids, b)
			p.TotalInvested += b.Amount
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(p.ActiveBids, func(i, j int) bool {
		return p.ActiveBids[i].Amount > p.ActiveBids[j].Amount
	})
	sort.Slice(p.CompletedBids, func(i, j int) bool {
		ti, tj := p.CompletedBids[i].CompletedAt, p.CompletedBids[j].CompletedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	return p, nil
}
