package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// commentColumns is the ordered list of columns selected in comment queries.
// Must match the scan order in scanComment.
const commentColumns = `id, created_at, updated_at, product_id, user_id, parent_id, body`

// scanComment scans a sql.Row (or sql.Rows via its Scan method) into a domain.Comment.
func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var c domain.Comment

	var (
		createdAt string
		updatedAt string
		parentID  sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.ProductID,
		&c.UserID,
		&parentID,
		&c.Body,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentID = &parentID.String
	}

	return &c, nil
}

// CreateComment inserts a comment and bumps the product's comment counter
// in the same transaction.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comments (id, created_at, updated_at, product_id, user_id, parent_id, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		formatTime(comment.CreatedAt),
		formatTime(comment.UpdatedAt),
		comment.ProductID,
		comment.UserID,
		nullableString(comment.ParentID),
		comment.Body,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET comment_count = comment_count + 1 WHERE id = ?`,
		comment.ProductID)
	if err != nil {
		return fmt.Errorf("update comment_count: %w", err)
	}

	return tx.Commit()
}

// GetComment retrieves a comment by ID.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComment updates a comment's body.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE comments SET updated_at = ?, body = ? WHERE id = ?`,
		formatTime(comment.UpdatedAt),
		comment.Body,
		comment.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteComment removes a comment and decrements the product's comment
// counter in the same transaction. Replies keep their parent reference;
// the tree builder surfaces them at the root.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var productID string
	err = tx.QueryRowContext(ctx,
		`SELECT product_id FROM comments WHERE id = ?`, id).Scan(&productID)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET comment_count = MAX(comment_count - 1, 0) WHERE id = ?`,
		productID)
	if err != nil {
		return fmt.Errorf("update comment_count: %w", err)
	}

	return tx.Commit()
}

// ListCommentsForProduct returns all comments on a product as a flat list,
// oldest first. Callers build the reply tree in memory.
func (s *Store) ListCommentsForProduct(ctx context.Context, productID string) ([]*domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE product_id = ? ORDER BY created_at ASC, id ASC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}
