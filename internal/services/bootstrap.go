package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/userdesk/internal/models"
)

// EnsureAdmin creates an administrator with the given credentials unless a
// user with that username or email already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	admin := &models.User{
		Username:    username,
		Email:       email,
		Authorities: []string{models.RoleAdmin, models.RoleUser},
	}

	created, err := s.CreateUser(ctx, admin, password)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("bootstrap admin already present", slog.String("username", username))
			return nil
		}
		return err
	}

	s.logger.Info("bootstrap admin created", slog.Int64("user_id", created.ID))
	return nil
}
