package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/model"
	"github.com/erazemk/borza/internal/slug"
)

// TransitionState moves an item to a new state per the workflow table and
// fires the transition's side effects. Everything — the state write, reward
// or refund fan-out, and the auto-created changelog event — commits in one
// transaction, so a failed or interrupted transition leaves no partial
// effects and can be retried safely.
func TransitionState(ctx context.Context, db *sql.DB, adminID, itemID int64, newState string) error {
	if !model.ValidState(newState) {
		return apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("unknown state %q", newState))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	if !model.CanTransition(item.State, newState) {
		return apperr.New(apperr.CodeInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", item.State, newState))
	}

	switch newState {
	case model.StateCompleted:
		if err := completeItem(ctx, tx, adminID, item); err != nil {
			return err
		}
	case model.StateCancelled:
		if err := cancelItem(ctx, tx, item); err != nil {
			return err
		}
	default:
		if err := writeState(ctx, tx, item, newState); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transition: %w", err)
	}
	return nil
}

// CancelItem is the admin cancellation path with an audit trail: it cancels
// the item, refunds everyone, and records who cancelled it and why.
// Cancellation always refunds, regardless of which entry point triggered it.
func CancelItem(ctx context.Context, db *sql.DB, adminID, itemID int64, reason string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	if model.IsTerminal(item.State) {
		return apperr.New(apperr.CodeAlreadyTerminal, "item is already in a terminal state")
	}

	if err := cancelItem(ctx, tx, item); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cancellations (item_id, admin_id, reason, stamp) VALUES (?, ?, ?, ?)`,
		item.ID, adminID, reason, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("recording cancellation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cancellation: %w", err)
	}
	return nil
}

// writeState writes the new state guarded by the state the item was read
// in, so concurrent transitions cannot both win.
func writeState(ctx context.Context, q querier, item *model.Item, newState string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET state = ? WHERE id = ? AND state = ?`,
		newState, item.ID, item.State,
	)
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking state write: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeInvalidTransition, "item state changed concurrently")
	}
	return nil
}

// completeItem marks the item completed, pays out rewards from the bid
// snapshot, and publishes the auto-generated changelog entry.
func completeItem(ctx context.Context, q querier, adminID int64, item *model.Item) error {
	bids, err := listItemBids(ctx, q, item.ID)
	if err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	result, err := q.ExecContext(ctx,
		`UPDATE items SET state = ?, completed = 1, completed_at = ? WHERE id = ? AND state = ?`,
		model.StateCompleted, completedAt, item.ID, item.State,
	)
	if err != nil {
		return fmt.Errorf("writing completed state: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking state write: %w", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeInvalidTransition, "item state changed concurrently")
	}

	if err := rewardCompletion(ctx, q, item, bids); err != nil {
		return err
	}

	eventSlug, err := uniqueSlug(ctx, q, slug.ForItem(item.Number, item.Title))
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO events (author_id, title, slug, comment, stamp, type, item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		adminID, item.Title, eventSlug, item.Description, completedAt,
		model.EventRandomImprovement, item.ID,
	); err != nil {
		return fmt.Errorf("creating changelog event: %w", err)
	}
	return nil
}

// cancelItem writes the cancelled state and refunds the creator and all
// bidders from the bid snapshot. No changelog event is created.
func cancelItem(ctx context.Context, q querier, item *model.Item) error {
	bids, err := listItemBids(ctx, q, item.ID)
	if err != nil {
		return err
	}

	if err := writeState(ctx, q, item, model.StateCancelled); err != nil {
		return err
	}

	return refundCancellation(ctx, q, item, bids)
}
