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

// collectionColumns is the ordered list of columns selected in collection queries.
// Must match the scan order in scanCollection.
const collectionColumns = `id, created_at, updated_at, owner_id, name, description, is_default`

// scanCollection scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Collection. ProductIDs are loaded separately.
func scanCollection(scanner interface{ Scan(dest ...any) error }) (*domain.Collection, error) {
	var c domain.Collection

	var (
		createdAt string
		updatedAt string
		isDefault int
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.OwnerID,
		&c.Name,
		&c.Description,
		&isDefault,
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
	c.IsDefault = isDefault != 0

	return &c, nil
}

// CreateCollection inserts a new collection.
func (s *Store) CreateCollection(ctx context.Context, collection *domain.Collection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (id, created_at, updated_at, owner_id, name, description, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		collection.ID,
		formatTime(collection.CreatedAt),
		formatTime(collection.UpdatedAt),
		collection.OwnerID,
		collection.Name,
		collection.Description,
		boolToInt(collection.IsDefault),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetCollection retrieves a collection by ID, with its product IDs
// newest-first.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)

	c, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.ProductIDs, err = s.collectionProductIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) collectionProductIDs(ctx context.Context, collectionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id FROM collection_products
		WHERE collection_id = ?
		ORDER BY created_at DESC, product_id DESC`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		ids = append(ids, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUserCollections returns a user's collections, default first, then by
// creation time. Product IDs are loaded for each.
func (s *Store) ListUserCollections(ctx context.Context, ownerID string) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		WHERE owner_id = ?
		ORDER BY is_default DESC, created_at ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range collections {
		c.ProductIDs, err = s.collectionProductIDs(ctx, c.ID)
		if err != nil {
			return nil, err
		}
	}

	if collections == nil {
		collections = []*domain.Collection{}
	}
	return collections, nil
}

// UpdateCollection updates a collection's name and description.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) UpdateCollection(ctx context.Context, collection *domain.Collection) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE collections SET updated_at = ?, name = ?, description = ? WHERE id = ?`,
		formatTime(collection.UpdatedAt),
		collection.Name,
		collection.Description,
		collection.ID,
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

// DeleteCollection removes a collection and its memberships.
// Returns store.ErrNotFound if the collection does not exist.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM collections WHERE id = ?`, id)
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

// GetOrCreateDefaultCollection returns the owner's default save list,
// creating it on first use. A create that loses the race to the partial
// unique index falls back to reading the winner's row.
func (s *Store) GetOrCreateDefaultCollection(ctx context.Context, ownerID string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE owner_id = ? AND is_default = 1`,
		ownerID)

	c, err := scanCollection(row)
	if err == nil {
		c.ProductIDs, err = s.collectionProductIDs(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	collID, err := id.Generate("coll")
	if err != nil {
		return nil, fmt.Errorf("generate collection id: %w", err)
	}

	now := time.Now().UTC()
	c = &domain.Collection{
		OwnerID:    ownerID,
		Name:       domain.DefaultCollectionName,
		IsDefault:  true,
		ProductIDs: []string{},
	}
	c.ID = collID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.CreateCollection(ctx, c); err != nil {
		if err == store.ErrAlreadyExists {
			return s.GetOrCreateDefaultCollection(ctx, ownerID)
		}
		return nil, err
	}
	return c, nil
}

// AddProductToCollection adds a membership row. Adding an already-present
// product is a no-op.
func (s *Store) AddProductToCollection(ctx context.Context, collectionID, productID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO collection_products (collection_id, product_id, created_at)
		VALUES (?, ?, ?)`,
		collectionID, productID, formatTime(time.Now().UTC()))
	return err
}

// RemoveProductFromCollection removes a membership row.
// Returns store.ErrNotFound if the product was not in the collection.
func (s *Store) RemoveProductFromCollection(ctx context.Context, collectionID, productID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_products WHERE collection_id = ? AND product_id = ?`,
		collectionID, productID)
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

// ToggleSave flips a product's membership in the user's default collection,
// creating the collection on first save. Returns the resulting saved state.
func (s *Store) ToggleSave(ctx context.Context, userID, productID string) (bool, error) {
	coll, err := s.GetOrCreateDefaultCollection(ctx, userID)
	if err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO collection_products (collection_id, product_id, created_at)
		VALUES (?, ?, ?)`,
		coll.ID, productID, formatTime(time.Now().UTC()))
	if err != nil {
		return false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted > 0 {
		return true, nil
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM collection_products WHERE collection_id = ? AND product_id = ?`,
		coll.ID, productID)
	if err != nil {
		return false, err
	}
	return false, nil
}

// GetSavedProductIDs returns which of the given products are in the user's
// default collection, as a set, in one query.
func (s *Store) GetSavedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error) {
	if len(productIDs) == 0 {
		return make(map[string]bool), nil
	}

	placeholders, args := inPlaceholders(productIDs)
	query := fmt.Sprintf(`
		SELECT cp.product_id
		FROM collection_products cp
		JOIN collections c ON c.id = cp.collection_id
		WHERE c.owner_id = ? AND c.is_default = 1 AND cp.product_id IN (%s)`,
		placeholders)
	args = append([]any{userID}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	saved := make(map[string]bool)
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		saved[productID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return saved, nil
}
