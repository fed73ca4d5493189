package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/borza/internal/apperr"
	"github.com/erazemk/borza/internal/model"
)

// AddDevLogMessage attaches an admin progress note to an item.
func AddDevLogMessage(ctx context.Context, db *sql.DB, itemID, authorID int64, message string) (*model.DevLogMessage, error) {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.New(apperr.CodeNotFound, "item not found")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO devlog_messages (item_id, author_id, stamp, message) VALUES (?, ?, ?, ?)`,
		itemID, authorID, time.Now().UTC(), message,
	)
	if err != nil {
		return nil, fmt.Errorf("adding devlog message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting message id: %w", err)
	}

	m := &model.DevLogMessage{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, author_id, stamp, message FROM devlog_messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.ItemID, &m.AuthorID, &m.Stamp, &m.Message)
	if err != nil {
		return nil, fmt.Errorf("getting devlog message: %w", err)
	}
	return m, nil
}

// ListDevLogMessages returns an item's devlog, oldest first.
func ListDevLogMessages(ctx context.Context, db *sql.DB, itemID int64) ([]model.DevLogMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT m.id, m.item_id, m.author_id, m.stamp, m.message, u.name, u.avatar_url
		 FROM devlog_messages m
		 JOIN users u ON u.id = m.author_id
		 WHERE m.item_id = ?
		 ORDER BY m.stamp, m.id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing devlog messages: %w", err)
	}
	defer rows.Close()

	return scanDevLogMessages(rows, false)
}

// RecentDevLogActivity returns the newest devlog messages across all items.
func RecentDevLogActivity(ctx context.Context, db *sql.DB, limit int) ([]model.DevLogMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.QueryContext(ctx,
		`SELECT m.id, m.item_id, m.author_id, m.stamp, m.message, u.name, u.avatar_url,
		        i.number, i.title
		 FROM devlog_messages m
		 JOIN users u ON u.id = m.author_id
		 JOIN items i ON i.id = m.item_id
		 ORDER BY m.stamp DESC, m.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing devlog activity: %w", err)
	}
	defer rows.Close()

	return scanDevLogMessages(rows, true)
}

func scanDevLogMessages(rows *sql.Rows, withItem bool) ([]model.DevLogMessage, error) {
	var messages []model.DevLogMessage
	for rows.Next() {
		var m model.DevLogMessage
		dest := []any{&m.ID, &m.ItemID, &m.AuthorID, &m.Stamp, &m.Message,
			&m.AuthorName, &m.AuthorAvatarURL}
		if withItem {
			dest = append(dest, &m.ItemNumber, &m.ItemTitle)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning devlog message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
