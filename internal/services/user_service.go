package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/BradenHooton/userdesk/internal/models"
	"github.com/BradenHooton/userdesk/pkg/auth"
	pkglogger "github.com/BradenHooton/userdesk/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	UserLookup
	UserReactivator
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	IsUserExist(ctx context.Context, user *models.User) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	CountByAuthority(ctx context.Context, authority string) (int64, error)
}

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	resolver    *UserQueryResolver
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		resolver:    NewUserQueryResolver(repo, repo, logger),
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Debug("user not found", slog.Int64("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.Int64("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ListUsers retrieves every user
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return users, nil
}

// SearchUsers resolves a filtered user query, see UserQueryResolver
func (s *UserService) SearchUsers(ctx context.Context, criteria models.FilterCriteria) ([]*models.User, error) {
	users, err := s.resolver.Resolve(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if criteria.Username != nil && criteria.Reactivate != nil {
		for _, user := range users {
			s.auditLogger.LogAccountAction("user_reactivation", user.ID, map[string]string{
				"active": strconv.FormatBool(*criteria.Reactivate),
			})
		}
	}

	return users, nil
}

// CreateUser creates a new user with the given plain-text password
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	exists, err := s.repo.IsUserExist(ctx, user)
	if err != nil {
		s.logger.Error("failed to check user existence", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if exists {
		s.logger.Info("user already exists", slog.String("username", user.Username))
		return nil, models.ErrConflict
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hashedPassword
	user.Active = true

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		// unique constraint lost a race with a concurrent create
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user created", slog.Int64("user_id", createdUser.ID))
	s.auditLogger.LogAccountAction("user_created", createdUser.ID, nil)
	return createdUser, nil
}

// UpdateUser replaces the address of an existing user. No other field is
// writable through this path.
func (s *UserService) UpdateUser(ctx context.Context, id int64, address string) (*models.User, error) {
	existingUser, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existingUser.Address = address

	updatedUser, err := s.repo.Update(ctx, existingUser)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update user", slog.Int64("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated", slog.Int64("user_id", id))
	s.auditLogger.LogAccountAction("user_updated", id, nil)
	return updatedUser, nil
}

// DeleteUser deletes a user unless it is the last remaining administrator.
// A blocked delete is reported as not found.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	adminCount, err := s.repo.CountByAuthority(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Error("failed to count admins", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if !CanDelete(user, adminCount) {
		s.logger.Info("unable to delete last admin", slog.Int64("user_id", id), slog.Int64("admin_count", adminCount))
		s.auditLogger.LogAccountAction("user_delete_blocked", id, map[string]string{
			"reason": "last_admin",
		})
		return models.NotFoundf("Unable to delete. User with id %d is the last administrator", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.Int64("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	s.auditLogger.LogAccountAction("user_deleted", id, nil)
	return nil
}
