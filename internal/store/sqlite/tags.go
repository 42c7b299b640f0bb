package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/id"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, created_at, updated_at, slug, name`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
// ProductCount is left as 0; ListTags computes it separately.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&createdAt,
		&updatedAt,
		&t.Slug,
		&t.Name,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate slug.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, created_at, updated_at, slug, name)
		VALUES (?, ?, ?, ?, ?)`,
		tag.ID,
		formatTime(tag.CreatedAt),
		formatTime(tag.UpdatedAt),
		tag.Slug,
		tag.Name,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, tagID)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagBySlug retrieves a tag by its slug.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags ordered by slug, with product counts.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.created_at, t.updated_at, t.slug, t.name,
			(SELECT COUNT(*) FROM product_tags pt WHERE pt.tag_id = t.id) AS product_count
		FROM tags t ORDER BY t.slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var t domain.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &createdAt, &updatedAt, &t.Slug, &t.Name, &t.ProductCount); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// FindOrCreateTagBySlug finds an existing tag by slug or creates a new one.
// Name is stored only on create, so the first submission's casing wins and
// later spellings of the same slug do not rewrite it.
// Returns (tag, created, error) where created is true if a new tag was made.
// Safe under concurrent submissions: a create that loses the race to the
// unique slug index falls back to reading the winner's row.
func (s *Store) FindOrCreateTagBySlug(ctx context.Context, slug, name string) (*domain.Tag, bool, error) {
	existing, err := s.GetTagBySlug(ctx, slug)
	if err == nil {
		return existing, false, nil
	}
	if err != store.ErrNotFound {
		return nil, false, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	if name == "" {
		name = slug
	}
	now := time.Now().UTC()
	t := &domain.Tag{Slug: slug, Name: name}
	t.ID = tagID
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.CreateTag(ctx, t); err != nil {
		if err == store.ErrAlreadyExists {
			existing, err := s.GetTagBySlug(ctx, slug)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

// SetProductTags replaces all tags for a product in a single transaction.
func (s *Store) SetProductTags(ctx context.Context, productID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete product_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_tags (product_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			productID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert product_tag: %w", err)
		}
	}

	return tx.Commit()
}

// GetProductTags returns the tag IDs associated with a product.
func (s *Store) GetProductTags(ctx context.Context, productID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_id FROM product_tags WHERE product_id = ?`, productID)
	if err != nil {
		return nil, fmt.Errorf("query product_tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan product_tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return tagIDs, nil
}

// GetTagsForProductIDs retrieves full tags for multiple products in one query.
// Returns a map from product ID to its tags. Products with no tags are
// omitted from the map.
func (s *Store) GetTagsForProductIDs(ctx context.Context, productIDs []string) (map[string][]*domain.Tag, error) {
	if len(productIDs) == 0 {
		return make(map[string][]*domain.Tag), nil
	}

	placeholders, args := inPlaceholders(productIDs)
	query := fmt.Sprintf(`
		SELECT pt.product_id, t.id, t.created_at, t.updated_at, t.slug, t.name
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id IN (%s)
		ORDER BY t.slug ASC`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]*domain.Tag)
	for rows.Next() {
		var productID string
		var t domain.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&productID, &t.ID, &createdAt, &updatedAt, &t.Slug, &t.Name); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
