package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, created_at, updated_at, slug, name, tagline, description,
	website_url, logo_url, logo_blurhash, category_id, user_id, status, launch_date,
	featured, view_count, vote_count, comment_count`

// scanProduct scans a sql.Row (or sql.Rows via its Scan method) into a domain.Product.
// TagIDs are not populated here; single-product getters load them separately and
// listings rely on the batched tag lookup.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product

	var (
		createdAt  string
		updatedAt  string
		status     string
		launchDate sql.NullString
		featured   int
	)

	err := scanner.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.Slug,
		&p.Name,
		&p.Tagline,
		&p.Description,
		&p.WebsiteURL,
		&p.LogoURL,
		&p.LogoBlurhash,
		&p.CategoryID,
		&p.UserID,
		&status,
		&launchDate,
		&featured,
		&p.ViewCount,
		&p.VoteCount,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.LaunchDate, err = parseNullableTime(launchDate)
	if err != nil {
		return nil, err
	}

	p.Status = domain.ProductStatus(status)
	p.Featured = featured != 0

	return &p, nil
}

// CreateProduct inserts a new product and indexes it for search.
// Returns store.ErrAlreadyExists on duplicate slug.
func (s *Store) CreateProduct(ctx context.Context, product *domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			id, created_at, updated_at, slug, name, tagline, description,
			website_url, logo_url, logo_blurhash, category_id, user_id, status,
			launch_date, featured, view_count, vote_count, comment_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		formatTime(product.CreatedAt),
		formatTime(product.UpdatedAt),
		product.Slug,
		product.Name,
		product.Tagline,
		product.Description,
		product.WebsiteURL,
		product.LogoURL,
		product.LogoBlurhash,
		product.CategoryID,
		product.UserID,
		string(product.Status),
		nullTimeString(product.LaunchDate),
		boolToInt(product.Featured),
		product.ViewCount,
		product.VoteCount,
		product.CommentCount,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.searchIndexer.IndexProduct(product); err != nil {
		s.logger.Warn("index product", "product_id", product.ID, "error", err)
	}
	return nil
}

// GetProduct retrieves a product by ID, with its tag IDs.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return s.finishProductRow(ctx, row)
}

// GetProductBySlug retrieves a product by slug, with its tag IDs.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
	return s.finishProductRow(ctx, row)
}

func (s *Store) finishProductRow(ctx context.Context, row *sql.Row) (*domain.Product, error) {
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.TagIDs, err = s.GetProductTags(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductsByIDs retrieves products for multiple IDs in one query.
// Missing IDs are silently skipped; order follows the input IDs.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	placeholders, args := inPlaceholders(ids)
	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE id IN (%s)`,
		productColumns, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// UpdateProduct performs a full row update and reindexes the product.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) UpdateProduct(ctx context.Context, product *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			updated_at = ?,
			slug = ?,
			name = ?,
			tagline = ?,
			description = ?,
			website_url = ?,
			logo_url = ?,
			logo_blurhash = ?,
			category_id = ?,
			status = ?,
			launch_date = ?,
			featured = ?
		WHERE id = ?`,
		formatTime(product.UpdatedAt),
		product.Slug,
		product.Name,
		product.Tagline,
		product.Description,
		product.WebsiteURL,
		product.LogoURL,
		product.LogoBlurhash,
		product.CategoryID,
		string(product.Status),
		nullTimeString(product.LaunchDate),
		boolToInt(product.Featured),
		product.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.searchIndexer.IndexProduct(product); err != nil {
		s.logger.Warn("reindex product", "product_id", product.ID, "error", err)
	}
	return nil
}

// DeleteProduct removes a product and drops it from the search index.
// Dependent rows (tags, votes, comments, saves) cascade.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = ?`, id)
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

	if err := s.searchIndexer.RemoveProduct(id); err != nil {
		s.logger.Warn("remove product from index", "product_id", id, "error", err)
	}
	return nil
}

// sortKeyExpr returns the SQL expression used as the primary sort key.
// Every sort is descending with id as the tie-breaker, which keeps cursors
// stable across rows with equal key values.
func sortKeyExpr(sort store.ProductSort) string {
	switch sort {
	case store.SortVotes:
		return "printf('%012d', vote_count)"
	case store.SortLaunch:
		// Unlaunched products sort last: '' is less than any RFC3339 string.
		return "COALESCE(launch_date, '')"
	default:
		return "created_at"
	}
}

// ListProducts returns a filtered, paginated product listing.
// The cursor encodes "sortKey|id" of the last row of the previous page.
func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Product], error) {
	params.Validate()
	if !filter.Sort.Valid() {
		filter.Sort = store.SortNewest
	}
	keyExpr := sortKeyExpr(filter.Sort)

	where := []string{"1=1"}
	args := []any{}

	if !filter.IncludeDrafts {
		status := filter.Status
		if status == "" {
			status = domain.ProductStatusPublished
		}
		where = append(where, "status = ?")
		args = append(args, string(status))
	}
	if filter.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.FeaturedOnly {
		where = append(where, "featured = 1")
	}
	if filter.TagID != "" {
		where = append(where, "id IN (SELECT product_id FROM product_tags WHERE tag_id = ?)")
		args = append(args, filter.TagID)
	}

	whereClause := strings.Join(where, " AND ")

	// Total matching rows, independent of the cursor position.
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	// Decode cursor: format is "sortKey|id".
	if params.Cursor != "" {
		decoded, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, fmt.Errorf("decode cursor: %w", err)
		}
		parts := strings.SplitN(decoded, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid cursor format")
		}
		whereClause += fmt.Sprintf(" AND (%s < ? OR (%s = ? AND id < ?))", keyExpr, keyExpr)
		args = append(args, parts[0], parts[0], parts[1])
	}

	// Fetch limit+1 rows to determine hasMore.
	query := fmt.Sprintf(
		`SELECT %s, %s AS sort_key FROM products WHERE %s ORDER BY sort_key DESC, id DESC LIMIT ?`,
		productColumns, keyExpr, whereClause)
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	var keys []string
	for rows.Next() {
		p, key, err := scanProductWithKey(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(products) > params.Limit
	if hasMore {
		products = products[:params.Limit]
		keys = keys[:params.Limit]
	}

	var nextCursor string
	if hasMore && len(products) > 0 {
		last := len(products) - 1
		nextCursor = store.EncodeCursor(keys[last] + "|" + products[last].ID)
	}

	if products == nil {
		products = []*domain.Product{}
	}

	return &store.PaginatedResult[*domain.Product]{
		Items:      products,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Total:      total,
	}, nil
}

// scanProductWithKey scans a product row that carries the extra sort_key column.
func scanProductWithKey(rows *sql.Rows) (*domain.Product, string, error) {
	var p domain.Product

	var (
		createdAt  string
		updatedAt  string
		status     string
		launchDate sql.NullString
		featured   int
		sortKey    string
	)

	err := rows.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.Slug,
		&p.Name,
		&p.Tagline,
		&p.Description,
		&p.WebsiteURL,
		&p.LogoURL,
		&p.LogoBlurhash,
		&p.CategoryID,
		&p.UserID,
		&status,
		&launchDate,
		&featured,
		&p.ViewCount,
		&p.VoteCount,
		&p.CommentCount,
		&sortKey,
	)
	if err != nil {
		return nil, "", err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, "", err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, "", err
	}
	p.LaunchDate, err = parseNullableTime(launchDate)
	if err != nil {
		return nil, "", err
	}

	p.Status = domain.ProductStatus(status)
	p.Featured = featured != 0

	return &p, sortKey, nil
}

// ListAllProducts returns every product without pagination.
// Used for search index rebuilds.
func (s *Store) ListAllProducts(ctx context.Context) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

// CountProducts returns the total number of products.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	return total, err
}

// IncrementProductViews bumps the view counter by one.
// Returns store.ErrNotFound if the product does not exist.
func (s *Store) IncrementProductViews(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET view_count = view_count + 1 WHERE id = ?`, id)
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
