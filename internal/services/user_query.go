package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/userdesk/internal/models"
	pkglogger "github.com/BradenHooton/userdesk/pkg/logger"
)

// UserLookup is the read side consumed by UserQueryResolver
type UserLookup interface {
	GetByUsernameContaining(ctx context.Context, text string) ([]*models.User, error)
	GetByBirthday(ctx context.Context, day time.Time) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserReactivator toggles the active flag of a user by username
type UserReactivator interface {
	SetActiveByUsername(ctx context.Context, username string, active bool) error
}

// UserQueryResolver picks the single applicable filter from FilterCriteria
// and runs the matching lookup. Priority is username, then birthday, then email.
type UserQueryResolver struct {
	lookup      UserLookup
	reactivator UserReactivator
	logger      *slog.Logger
}

// NewUserQueryResolver creates a new UserQueryResolver
func NewUserQueryResolver(lookup UserLookup, reactivator UserReactivator, logger *slog.Logger) *UserQueryResolver {
	return &UserQueryResolver{
		lookup:      lookup,
		reactivator: reactivator,
		logger:      logger,
	}
}

// Resolve returns the users matching the highest-priority criterion present.
// NotFound and BadRequest outcomes are returned as *models.DetailedError.
func (q *UserQueryResolver) Resolve(ctx context.Context, criteria models.FilterCriteria) ([]*models.User, error) {
	switch {
	case criteria.Username != nil:
		return q.byUsername(ctx, *criteria.Username, criteria.Reactivate)
	case criteria.Birthday != nil:
		return q.byBirthday(ctx, *criteria.Birthday)
	case criteria.Email != nil:
		return q.byEmail(ctx, *criteria.Email)
	default:
		return nil, models.BadRequestf("no recognized filter parameter supplied")
	}
}

func (q *UserQueryResolver) byUsername(ctx context.Context, username string, reactivate *bool) ([]*models.User, error) {
	q.logger.Debug("fetching users by username", slog.String("username", username))

	users, err := q.lookup.GetByUsernameContaining(ctx, username)
	if err != nil {
		q.logger.Error("failed to search users by username", slog.String("username", username), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if len(users) == 0 {
		return nil, models.NotFoundf("User with username %s NOT_FOUND", username)
	}

	// The result set is fixed before reactivation; returned users keep
	// the active flag they were read with.
	if reactivate != nil {
		for _, user := range users {
			if err := q.reactivator.SetActiveByUsername(ctx, user.Username, *reactivate); err != nil {
				q.logger.Error("failed to reactivate user",
					slog.String("username", user.Username),
					slog.Bool("active", *reactivate),
					slog.Any("error", err),
				)
				return nil, models.ErrInternalServer
			}
			q.logger.Info("user active flag changed", slog.String("username", user.Username), slog.Bool("active", *reactivate))
		}
	}

	return users, nil
}

func (q *UserQueryResolver) byBirthday(ctx context.Context, birthday time.Time) ([]*models.User, error) {
	day := birthday.Format(models.BirthdayLayout)
	q.logger.Debug("fetching users by birthday", slog.String("birthday", day))

	users, err := q.lookup.GetByBirthday(ctx, birthday)
	if err != nil {
		q.logger.Error("failed to search users by birthday", slog.String("birthday", day), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if len(users) == 0 {
		return nil, models.NotFoundf("User with birthday %s NOT_FOUND", day)
	}

	return users, nil
}

func (q *UserQueryResolver) byEmail(ctx context.Context, email string) ([]*models.User, error) {
	q.logger.Debug("fetching user by email", slog.String("email", pkglogger.SanitizedEmail(email)))

	user, err := q.lookup.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("User with email %s NOT_FOUND", email)
		}
		q.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return []*models.User{user}, nil
}
