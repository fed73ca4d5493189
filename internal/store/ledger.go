package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so ledger operations can
// run standalone or inside a larger transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// chipsExpr resolves the stored balance to its effective value. Accounts
// created before the chip economy have a NULL chips column and read as 100
// (model.StartingChips). This expression is the only place the default is
// applied; every balance read and write must go through it.
const chipsExpr = "COALESCE(chips, 100)"

// Balance returns a user's effective chip balance.
func Balance(ctx context.Context, q querier, userID int64) (int, error) {
	var chips int
	err := q.QueryRowContext(ctx,
		`SELECT `+chipsExpr+` FROM users WHERE id = ?`, userID,
	).Scan(&chips)
	if err == sql.ErrNoRows {
		return 0, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return 0, fmt.Errorf("reading balance: %w", err)
	}
	return chips, nil
}

// Credit adds chips to a user's balance. Crediting a user that no longer
// exists is a no-op, matching the reward fan-out's tolerance for deleted
// accounts.
func Credit(ctx context.Context, q querier, userID int64, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative: %d", amount)
	}
	_, err := q.ExecContext(ctx,
		`UPDATE users SET chips = `+chipsExpr+` + ? WHERE id = ?`,
		amount, userID,
	)
	if err != nil {
		return fmt.Errorf("crediting user: %w", err)
	}
	return nil
}

// Debit removes chips from a user's balance. Fails with INSUFFICIENT_FUNDS
// when the balance cannot cover the amount; balances never go negative.
func Debit(ctx context.Context, q querier, userID int64, amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must not be negative: %d", amount)
	}

	balance, err := Balance(ctx, q, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return apperr.New(apperr.CodeInsufficientFunds,
			fmt.Sprintf("not enough chips: need %d, have %d", amount, balance))
	}

	_, err = q.ExecContext(ctx,
		`UPDATE users SET chips = `+chipsExpr+` - ? WHERE id = ?`,
		amount, userID,
	)
	if err != nil {
		return fmt.Errorf("debiting user: %w", err)
	}
	return nil
}

// rewardCompletion pays out an item's completion: the creator receives twice
// the creation fee, every other bidder receives their amount times 1.5,
// floored. The creator's own bid is their escrowed fee, so the flat creator
// reward replaces the bidder multiplier for them. Must run inside the
// transaction that writes the completed state.
func rewardCompletion(ctx context.Context, q querier, item *model.Item, bids []model.Bid) error {
	if item.CreatedBy != nil {
		reward := model.ItemCreationCost * model.CreatorCompletionMultiplier
		if err := Credit(ctx, q, *item.CreatedBy, reward); err != nil {
			return fmt.Errorf("rewarding creator: %w", err)
		}
	}

	for _, bid := range bids {
		if item.CreatedBy != nil && bid.UserID == *item.CreatedBy {
			continue
		}
		reward := int(math.Floor(float64(bid.Amount) * model.BidderCompletionMultiplier))
		if err := Credit(ctx, q, bid.UserID, reward); err != nil {
			return fmt.Errorf("rewarding bidder %d: %w", bid.UserID, err)
		}
	}
	return nil
}

// refundCancellation returns an item's escrow: every bidder gets their full
// stake back. The creation fee lives in the creator's own bid, so refunding
// the bids returns it; no separate fee credit, or a creator who already
// withdrew would be paid twice. Must run inside the transaction that writes
// the cancelled state.
func refundCancellation(ctx context.Context, q querier, item *model.Item, bids []model.Bid) error {
	for _, bid := range bids {
		if err := Credit(ctx, q, bid.UserID, bid.Amount); err != nil {
			return fmt.Errorf("refunding bidder %d: %w", bid.UserID, err)
		}
	}
	return nil
}
