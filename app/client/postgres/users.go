package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetUserByID returns nil without error when the user does not exist;
// personalization treats a missing profile as "no name known".
func (c *Client) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	var user User

	err := c.pool.QueryRow(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Name, &user.Email)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %d: %w", userID, err)
	}

	return &user, nil
}

// UpdateUserProfile fills in name/email supplied alongside a chat request.
// Empty values never overwrite existing ones.
func (c *Client) UpdateUserProfile(ctx context.Context, userID int64, name, email string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET
			name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE users.name END,
			email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE users.email END`,
		userID, name, email,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", userID, err)
	}

	return nil
}
