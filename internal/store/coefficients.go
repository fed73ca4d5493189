package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/borza/internal/apperr"
)

// SetCoefficient upserts a user's priority coefficient. The coefficient
// scales the user's bid amounts for ranking only; escrow is unaffected.
func SetCoefficient(ctx context.Context, db *sql.DB, userID int64, value float64) error {
	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO coefficients (user_id, value) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET value = excluded.value`,
		userID, value,
	)
	if err != nil {
		return fmt.Errorf("setting coefficient: %w", err)
	}
	return nil
}

// GetCoefficient returns a user's coefficient, defaulting to 1 when unset.
func GetCoefficient(ctx context.Context, db *sql.DB, userID int64) (float64, error) {
	var value float64
	err := db.QueryRowContext(ctx,
		`SELECT value FROM coefficients WHERE user_id = ?`, userID,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting coefficient: %w", err)
	}
	return value, nil
}
