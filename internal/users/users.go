// Package users implements the per-request identity lookup the core
// depends on: a known email lazily creates a user, an absent header
// resolves to a fixed default identity (both external-collaborator
// concerns at the HTTP boundary).
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/store"
)

// DefaultEmail is the identity used when no X-User-Email header is
// present at the HTTP boundary.
const DefaultEmail = "default@secondbrain.local"

// Service resolves request-scoped identity to a durable User row.
type Service struct {
	store *store.Store
}

func New(s *store.Store) *Service {
	return &Service{store: s}
}

// Resolve looks up or creates the user for email, falling back to
// DefaultEmail when email is blank.
func (s *Service) Resolve(ctx context.Context, email string) (*core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultEmail
	}
	user, err := s.store.GetOrCreateUser(ctx, email)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "Resolve", fmt.Errorf("resolve user %q: %w", email, err))
	}
	return user, nil
}
