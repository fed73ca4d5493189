package store

import (
	"context"
	"testing"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/db"
	"github.com/erazemk/borza/internal/model"
)

func TestItemPriorityWeightsByCoefficient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	creator := syncTestUser(t, database, "sub-1", "ana@example.com")
	a := syncTestUser(t, database, "sub-2", "bor@example.com")
	b := syncTestUser(t, database, "sub-3", "cene@example.com")

	item, _ := CreateItem(ctx, database, creator.ID, "Dark mode", "")
	RemoveBid(ctx, database, creator.ID, item.ID)

	PlaceBid(ctx, database, a.ID, item.ID, 5)
	PlaceBid(ctx, database, b.ID, item.ID, 3)

	priority, err := ItemPriority(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("computing priority: %v", err)
	}
	if priority != 8 {
		t.Errorf("expected priority 8 with default coefficients, got %v", priority)
	}

	SetCoefficient(ctx, database, a.ID, 2)

	priority, _ = ItemPriority(ctx, database, item.ID)
	if priority != 13 {
		t.Errorf("expected priority 5*2 + 3*1 = 13, got %v", priority)
	}
}

func TestListItemsByPriorityOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	creator := syncTestUser(t, database, "sub-1", "ana@example.com")
	bidder := syncTestUser(t, database, "sub-2", "bor@example.com")

	first, _ := CreateItem(ctx, database, creator.ID, "First", "")
	second, _ := CreateItem(ctx, database, creator.ID, "Second", "")

	// Both carry the creator's 20-chip bid; the extra stake breaks the tie.
	PlaceBid(ctx, database, bidder.ID, second.ID, 15)

	ranked, err := ListItemsByPriority(ctx, database)
	if err != nil {
		t.Fatalf("ranking items: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(ranked))
	}
	if ranked[0].ID != second.ID || ranked[0].Priority != 35 {
		t.Errorf("expected second item first with priority 35, got %+v", ranked[0])
	}
	if ranked[1].ID != first.ID || ranked[1].Priority != 20 {
		t.Errorf("expected first item second with priority 20, got %+v", ranked[1])
	}
	if ranked[0].BidCount != 2 {
		t.Errorf("expected 2 bids on the leading item, got %d", ranked[0].BidCount)
	}
}

func TestSetCoefficientUpserts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := syncTestUser(t, database, "sub-1", "ana@example.com")

	if value, _ := GetCoefficient(ctx, database, user.ID); value != 1 {
		t.Errorf("expected default coefficient 1, got %v", value)
	}

	if err := SetCoefficient(ctx, database, user.ID, 2); err != nil {
		t.Fatalf("setting coefficient: %v", err)
	}
	if err := SetCoefficient(ctx, database, user.ID, 3.5); err != nil {
		t.Fatalf("overwriting coefficient: %v", err)
	}

	if value, _ := GetCoefficient(ctx, database, user.ID); value != 3.5 {
		t.Errorf("expected coefficient 3.5, got %v", value)
	}

	err := SetCoefficient(ctx, database, 42, 2)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown user, got %v", err)
	}
}

func TestGetPortfolio(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")
	creator := syncTestUser(t, database, "sub-2", "ana@example.com")
	bidder := syncTestUser(t, database, "sub-3", "bor@example.com")

	active, _ := CreateItem(ctx, database, creator.ID, "Active", "")
	done, _ := CreateItem(ctx, database, creator.ID, "Done", "")
	dropped, _ := CreateItem(ctx, database, creator.ID, "Dropped", "")

	PlaceBid(ctx, database, bidder.ID, active.ID, 10)
	PlaceBid(ctx, database, bidder.ID, done.ID, 4)
	PlaceBid(ctx, database, bidder.ID, dropped.ID, 6)

	TransitionState(ctx, database, admin.ID, done.ID, model.StateWaiting)
	TransitionState(ctx, database, admin.ID, done.ID, model.StateScheduled)
	TransitionState(ctx, database, admin.ID, done.ID, model.StateInProgress)
	if err := TransitionState(ctx, database, admin.ID, done.ID, model.StateCompleted); err != nil {
		t.Fatalf("completing item: %v", err)
	}
	if err := TransitionState(ctx, database, admin.ID, dropped.ID, model.StateCancelled); err != nil {
		t.Fatalf("cancelling item: %v", err)
	}

	portfolio, err := GetPortfolio(ctx, database, bidder.ID)
	if err != nil {
		t.Fatalf("getting portfolio: %v", err)
	}

	if len(portfolio.ActiveBids) != 1 || portfolio.ActiveBids[0].ItemID != active.ID {
		t.Errorf("expected one active bid on the open item, got %+v", portfolio.ActiveBids)
	}
	if len(portfolio.CompletedBids) != 1 || portfolio.CompletedBids[0].ItemID != done.ID {
		t.Errorf("expected one completed bid, got %+v", portfolio.CompletedBids)
	}
	if len(portfolio.CancelledBids) != 1 || portfolio.CancelledBids[0].ItemID != dropped.ID {
		t.Errorf("expected one cancelled bid, got %+v", portfolio.CancelledBids)
	}

	// Only the open stake counts as invested.
	if portfolio.TotalInvested != 10 {
		t.Errorf("expected 10 chips invested, got %d", portfolio.TotalInvested)
	}

	// 100 - 10 - 4 - 6, plus floor(4 * 1.5) on completion and 6 back on
	// cancellation.
	if portfolio.Balance != 92 {
		t.Errorf("expected balance 92, got %d", portfolio.Balance)
	}
}

func TestGetPortfolioSortsActiveByAmount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	creator := syncTestUser(t, database, "sub-1", "ana@example.com")
	bidder := syncTestUser(t, database, "sub-2", "bor@example.com")

	small, _ := CreateItem(ctx, database, creator.ID, "Small", "")
	large, _ := CreateItem(ctx, database, creator.ID, "Large", "")
	PlaceBid(ctx, database, bidder.ID, small.ID, 3)
	PlaceBid(ctx, database, bidder.ID, large.ID, 12)

	portfolio, err := GetPortfolio(ctx, database, bidder.ID)
	if err != nil {
		t.Fatalf("getting portfolio: %v", err)
	}
	if len(portfolio.ActiveBids) != 2 {
		t.Fatalf("expected 2 active bids, got %d", len(portfolio.ActiveBids))
	}
	if portfolio.ActiveBids[0].Amount != 12 || portfolio.ActiveBids[1].Amount != 3 {
		t.Errorf("expected largest stake first, got %+v", portfolio.ActiveBids)
	}
}
