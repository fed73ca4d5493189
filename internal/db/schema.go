package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// users.chips is deliberately nullable: rows created before the chip economy
// existed have no value, and reads apply the legacy default (100) in the
// ledger instead of backfilling the column.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY,
    identifier TEXT NOT NULL,
    email      TEXT NOT NULL DEFAULT '',
    name       TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT '',
    role       TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    chips      INTEGER,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_identifier ON users(identifier);

CREATE TABLE IF NOT EXISTS items (
    id           INTEGER PRIMARY KEY,
    number       INTEGER NOT NULL,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    state        TEXT NOT NULL DEFAULT 'requested'
                 CHECK (state IN ('requested', 'waiting', 'scheduled', 'inProgress', 'cancelled', 'completed')),
    completed    INTEGER NOT NULL DEFAULT 0,
    due_type     TEXT CHECK (due_type IN ('week', 'month', 'quarter')),
    due_year     INTEGER,
    due_which    INTEGER,
    completed_at DATETIME,
    created_by   INTEGER REFERENCES users(id),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_items_number ON items(number);
CREATE INDEX IF NOT EXISTS idx_items_state ON items(state);

CREATE TABLE IF NOT EXISTS bids (
    id         INTEGER PRIMARY KEY,
    item_id    INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    amount     INTEGER NOT NULL CHECK (amount > 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (item_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_bids_user ON bids(user_id);

CREATE TABLE IF NOT EXISTS coefficients (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    value   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY,
    author_id  INTEGER NOT NULL REFERENCES users(id),
    title      TEXT,
    slug       TEXT NOT NULL,
    comment    TEXT,
    stamp      DATETIME NOT NULL,
    type       TEXT NOT NULL CHECK (type IN ('productRelease', 'randomImprovement')),
    product    TEXT,
    version    REAL,
    item_id    INTEGER REFERENCES items(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_events_slug ON events(slug);
CREATE INDEX IF NOT EXISTS idx_events_stamp ON events(stamp);

CREATE TABLE IF NOT EXISTS event_items (
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    item_id  INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    PRIMARY KEY (event_id, item_id)
);

CREATE TABLE IF NOT EXISTS cancellations (
    id       INTEGER PRIMARY KEY,
    item_id  INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    admin_id INTEGER NOT NULL REFERENCES users(id),
    reason   TEXT NOT NULL,
    stamp    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cancellations_item ON cancellations(item_id);

CREATE TABLE IF NOT EXISTS devlog_messages (
    id        INTEGER PRIMARY KEY,
    item_id   INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    author_id INTEGER NOT NULL REFERENCES users(id),
    stamp     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    message   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_devlog_item ON devlog_messages(item_id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
