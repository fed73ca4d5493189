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

// slugExists reports whether a changelog slug is already taken.
func slugExists(ctx context.Context, q querier, s string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE slug = ?`, s,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return count > 0, nil
}

// uniqueSlug probes for a free slug, appending -1, -2, ... until one is.
func uniqueSlug(ctx context.Context, q querier, base string) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := slugExists(ctx, q, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, suffix)
	}
}

// CreateProductRelease publishes a release changelog entry grouping shipped
// items under a product version. The caller-chosen slug must be free.
func CreateProductRelease(ctx context.Context, db *sql.DB, authorID int64,
	title, eventSlug, comment, product string, version float64, itemIDs []int64) (*model.Event, error) {

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	taken, err := slugExists(ctx, tx, eventSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.CodeDuplicateSlug, "an event with this slug already exists")
	}

	for _, itemID := range itemIDs {
		item, err := getItemTx(ctx, tx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("item %d not found", itemID))
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO events (author_id, title, slug, comment, stamp, type, product, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		authorID, title, eventSlug, comment, time.Now().UTC(),
		model.EventProductRelease, product, version,
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	eventID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting event id: %w", err)
	}

	for i, itemID := range itemIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_items (event_id, item_id, position) VALUES (?, ?, ?)`,
			eventID, itemID, i,
		); err != nil {
			return nil, fmt.Errorf("linking event item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing event: %w", err)
	}
	return GetEventBySlug(ctx, db, eventSlug)
}

// CreateRandomImprovement publishes a changelog entry for a single item.
func CreateRandomImprovement(ctx context.Context, db *sql.DB, authorID int64,
	title, eventSlug, comment string, itemID int64) (*model.Event, error) {

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	taken, err := slugExists(ctx, tx, eventSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.CodeDuplicateSlug, "an event with this slug already exists")
	}

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.New(apperr.CodeNotFound, "item not found")
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (author_id, title, slug, comment, stamp, type, item_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		authorID, title, eventSlug, comment, time.Now().UTC(),
		model.EventRandomImprovement, itemID,
	); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing event: %w", err)
	}
	return GetEventBySlug(ctx, db, eventSlug)
}

const eventColumns = `e.id, e.author_id, COALESCE(e.title, ''), e.slug, COALESCE(e.comment, ''),
       e.stamp, e.type, e.product, e.version, e.item_id, u.name, u.avatar_url`

func scanEvent(row itemScanner) (*model.Event, error) {
	e := &model.Event{}
	var product sql.NullString
	var version sql.NullFloat64
	var itemID sql.NullInt64
	err := row.Scan(&e.ID, &e.Author, &e.Title, &e.Slug, &e.Comment, &e.Stamp, &e.Type,
		&product, &version, &itemID, &e.AuthorName, &e.AuthorAvatarURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	switch e.Type {
	case model.EventProductRelease:
		e.ProductRelease = &model.ProductRelease{
			Product: product.String,
			Version: version.Float64,
		}
	case model.EventRandomImprovement:
		e.RandomImprovement = &model.RandomImprovement{ItemID: itemID.Int64}
	}
	return e, nil
}

// GetEventBySlug returns an event with its payload resolved, or nil.
func GetEventBySlug(ctx context.Context, db *sql.DB, eventSlug string) (*model.Event, error) {
	event, err := scanEvent(db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e JOIN users u ON u.id = e.author_id
		 WHERE e.slug = ?`, eventSlug,
	))
	if err != nil || event == nil {
		return event, err
	}

	if event.ProductRelease != nil {
		rows, err := db.QueryContext(ctx,
			`SELECT item_id FROM event_items WHERE event_id = ? ORDER BY position`, event.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("listing event items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("scanning event item: %w", err)
			}
			event.ProductRelease.ItemIDs = append(event.ProductRelease.ItemIDs, id)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// ListEventItems returns the items an event references, in payload order.
func ListEventItems(ctx context.Context, db *sql.DB, event *model.Event) ([]model.Item, error) {
	var ids []int64
	switch {
	case event.ProductRelease != nil:
		ids = event.ProductRelease.ItemIDs
	case event.RandomImprovement != nil && event.RandomImprovement.ItemID != 0:
		ids = []int64{event.RandomImprovement.ItemID}
	}

	var items []model.Item
	for _, id := range ids {
		item, err := GetItem(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

// ListEvents returns all events with author identity attached, most recent
// stamp first.
func ListEvents(ctx context.Context, db *sql.DB) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events e JOIN users u ON u.id = e.author_id
		 ORDER BY e.stamp DESC, e.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of changelog events.
func CountEvents(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}
