package sqlite

import (
	"context"
	"fmt"
	"time"
)

// ToggleVote flips a user's vote on a product inside a single transaction.
// An insert that finds no existing row casts the vote; otherwise the vote is
// withdrawn. The product's vote counter moves in the same transaction, so
// the pair can never drift under concurrent toggles.
// Returns the resulting vote state and the new counter value.
func (s *Store) ToggleVote(ctx context.Context, userID, productID string) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO votes (user_id, product_id, created_at)
		VALUES (?, ?, ?)`,
		userID, productID, formatTime(time.Now().UTC()))
	if err != nil {
		return false, 0, fmt.Errorf("insert vote: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	voted := inserted > 0
	if voted {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET vote_count = vote_count + 1 WHERE id = ?`, productID)
	} else {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM votes WHERE user_id = ? AND product_id = ?`, userID, productID); err != nil {
			return false, 0, fmt.Errorf("delete vote: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET vote_count = MAX(vote_count - 1, 0) WHERE id = ?`, productID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("update vote_count: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT vote_count FROM products WHERE id = ?`, productID).Scan(&count)
	if err != nil {
		return false, 0, fmt.Errorf("read vote_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return voted, count, nil
}

// HasVoted reports whether a user has voted on a product.
func (s *Store) HasVoted(ctx context.Context, userID, productID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE user_id = ? AND product_id = ?`,
		userID, productID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetVotedProductIDs returns which of the given products the user has voted
// on, as a set, in one query.
func (s *Store) GetVotedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error) {
	if len(productIDs) == 0 {
		return make(map[string]bool), nil
	}

	placeholders, args := inPlaceholders(productIDs)
	query := fmt.Sprintf(
		`SELECT product_id FROM votes WHERE user_id = ? AND product_id IN (%s)`,
		placeholders)
	args = append([]any{userID}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	voted := make(map[string]bool)
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		voted[productID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return voted, nil
}
