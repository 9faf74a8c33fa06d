package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/choretracker/internal/auth"
)

// Bootstrap creates the first user when the users table is empty so a fresh
// install has someone who can call GET /token. It does nothing otherwise.
func (s *Server) Bootstrap(ctx context.Context, email, password string) error {
	n, err := s.userStore.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug("bootstrap skipped, users exist", "count", n)
		return nil
	}

	digest, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := s.userStore.Create(ctx, strings.ToLower(strings.TrimSpace(email)), digest, auth.NewAPIKey())
	if err != nil {
		return fmt.Errorf("create bootstrap user: %w", err)
	}
	s.logger.Info("bootstrap user created", "user_id", u.ID, "email", u.Email)
	return nil
}
