package store

import (
	"context"
	"testing"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/db"
	"github.com/erazemk/borza/internal/model"
)

func TestCreateItemChargesFeeAndSeedsBid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := syncTestUser(t, database, "sub-1", "ana@example.com")

	item, err := CreateItem(ctx, database, user.ID, "Add dark mode", "Dark theme for the dashboard")
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	if item.Number != 1 {
		t.Errorf("expected first item number 1, got %d", item.Number)
	}
	if item.State != model.StateRequested {
		t.Errorf("expected state requested, got %q", item.State)
	}
	if item.CreatedBy == nil || *item.CreatedBy != user.ID {
		t.Errorf("expected created_by %d, got %v", user.ID, item.CreatedBy)
	}

	if got := mustBalance(t, database, user.ID); got != 80 {
		t.Errorf("expected balance 80 after paying the creation fee, got %d", got)
	}

	// The fee is escrowed as the creator's own bid.
	bid, _ := GetBid(ctx, database, item.ID, user.ID)
	if bid == nil || bid.Amount != model.ItemCreationCost {
		t.Errorf("expected creator bid of %d, got %v", model.ItemCreationCost, bid)
	}
}

func TestCreateItemInsufficientFunds(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := syncTestUser(t, database, "sub-1", "ana@example.com")

	// 100 chips cover exactly five items.
	for i := 0; i < 5; i++ {
		if _, err := CreateItem(ctx, database, user.ID, "Item", ""); err != nil {
			t.Fatalf("creating item %d: %v", i+1, err)
		}
	}

	_, err := CreateItem(ctx, database, user.ID, "One too many", "")
	if apperr.CodeOf(err) != apperr.CodeInsufficientFunds {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}

	count, _ := CountItems(ctx, database)
	if count.Total != 5 {
		t.Errorf("expected 5 items after failed creation, got %d", count.Total)
	}
	if got := mustBalance(t, database, user.ID); got != 0 {
		t.Errorf("expected balance 0, got %d", got)
	}
}

func TestItemNumbersContinueAfterDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := syncTestUser(t, database, "sub-1", "ana@example.com")

	first, _ := CreateItem(ctx, database, user.ID, "First", "")
	second, _ := CreateItem(ctx, database, user.ID, "Second", "")

	if err := DeleteItem(ctx, database, first.ID); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	third, err := CreateItem(ctx, database, user.ID, "Third", "")
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	if third.Number != second.Number+1 {
		t.Errorf("expected number %d, got %d", second.Number+1, third.Number)
	}
}

func TestUpdateItemDueDate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := syncTestUser(t, database, "sub-1", "ana@example.com")
	item, _ := CreateItem(ctx, database, user.ID, "Add dark mode", "")

	due := &model.DueDate{Type: model.DueQuarter, Year: 2026, Which: 4}
	if err := UpdateItem(ctx, database, item.ID, "Dark mode", "Updated", due); err != nil {
		t.Fatalf("updating item: %v", err)
	}

	updated, _ := GetItem(ctx, database, item.ID)
	if updated.Title != "Dark mode" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.DueDate == nil || updated.DueDate.Type != model.DueQuarter ||
		updated.DueDate.Year != 2026 || updated.DueDate.Which != 4 {
		t.Errorf("expected due date Q4 2026, got %+v", updated.DueDate)
	}

	// Clearing the due date writes NULLs back.
	if err := UpdateItem(ctx, database, item.ID, "Dark mode", "Updated", nil); err != nil {
		t.Fatalf("clearing due date: %v", err)
	}
	updated, _ = GetItem(ctx, database, item.ID)
	if updated.DueDate != nil {
		t.Errorf("expected no due date, got %+v", updated.DueDate)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	err := UpdateItem(context.Background(), database, 42, "Title", "", nil)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")
	user := syncTestUser(t, database, "sub-2", "ana@example.com")

	item, _ := CreateItem(ctx, database, user.ID, "Add dark mode", "")
	PlaceBid(ctx, database, admin.ID, item.ID, 10)
	AddDevLogMessage(ctx, database, item.ID, admin.ID, "Looking into it")
	if err := CancelItem(ctx, database, admin.ID, item.ID, "Out of scope"); err != nil {
		t.Fatalf("cancelling item: %v", err)
	}

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("deleting item: %v", err)
	}

	for _, table := range []string{"bids", "devlog_messages", "cancellations"} {
		var n int
		if err := database.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE item_id = ?`, item.ID,
		).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("expected no %s rows after delete, got %d", table, n)
		}
	}
}

func TestListItemsByState(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")
	user := syncTestUser(t, database, "sub-2", "ana@example.com")

	first, _ := CreateItem(ctx, database, user.ID, "First", "")
	CreateItem(ctx, database, user.ID, "Second", "")
	TransitionState(ctx, database, admin.ID, first.ID, model.StateWaiting)

	waiting, err := ListItems(ctx, database, model.StateWaiting)
	if err != nil {
		t.Fatalf("listing waiting items: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ID != first.ID {
		t.Errorf("expected only the first item waiting, got %+v", waiting)
	}

	all, _ := ListItems(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}
}

func TestCountItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin := syncTestUser(t, database, "sub-1", "root@example.com")
	user := syncTestUser(t, database, "sub-2", "ana@example.com")

	first, _ := CreateItem(ctx, database, user.ID, "First", "")
	CreateItem(ctx, database, user.ID, "Second", "")
	CancelItem(ctx, database, admin.ID, first.ID, "No longer needed")

	counts, err := CountItems(ctx, database)
	if err != nil {
		t.Fatalf("counting items: %v", err)
	}
	if counts.Total != 2 || counts.Requested != 1 || counts.Cancelled != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}
