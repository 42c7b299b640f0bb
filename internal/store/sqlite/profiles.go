package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `user_id, created_at, updated_at, username, display_name,
	bio, website_url, avatar_url, avatar_blurhash`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.UserID,
		&createdAt,
		&updatedAt,
		&p.Username,
		&p.DisplayName,
		&p.Bio,
		&p.WebsiteURL,
		&p.AvatarURL,
		&p.AvatarBlurhash,
	)
	if err != nil {
		return nil, err
	}

	p.ID = p.UserID
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// SaveProfile creates or replaces a profile.
// Uses INSERT OR REPLACE to handle both creation and update.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (
			user_id, created_at, updated_at, username, display_name,
			bio, website_url, avatar_url, avatar_blurhash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID,
		formatTime(profile.CreatedAt),
		formatTime(profile.UpdatedAt),
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.WebsiteURL,
		profile.AvatarURL,
		profile.AvatarBlurhash,
	)
	return err
}

// GetProfile retrieves a profile by user ID.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfileByUsername retrieves a profile by username.
// Returns store.ErrNotFound if the profile does not exist.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = ?`, username)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfilesByUserIDs retrieves profiles for multiple user IDs in one query.
// Returns a map from user ID to profile. Missing profiles are omitted from the map.
func (s *Store) GetProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	if len(userIDs) == 0 {
		return make(map[string]*domain.Profile), nil
	}

	placeholders, args := inPlaceholders(userIDs)
	query := fmt.Sprintf(
		`SELECT %s FROM profiles WHERE user_id IN (%s)`,
		profileColumns, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(map[string]*domain.Profile)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
