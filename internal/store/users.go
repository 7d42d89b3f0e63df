package store

import (
	"context"
	"fmt"

	"github.com/secondbrain/core/internal/core"
)

// GetOrCreateUser looks up a user by email, creating one lazily on first
// contact. This is the only per-user identity concern the core owns;
// session/authentication is an external collaborator.
func (s *Store) GetOrCreateUser(ctx context.Context, email string) (*core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err == nil {
		return &u, nil
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ($1)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, email, created_at`, email,
	).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: get or create user %q: %w", email, err)
	}
	return &u, nil
}
