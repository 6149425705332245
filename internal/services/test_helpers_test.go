package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/userdesk/internal/models"
	pkglogger "github.com/BradenHooton/userdesk/pkg/logger"
)

// MockUserRepository implements UserRepository and CredentialLookup for testing
type MockUserRepository struct {
	GetByIDFunc                 func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFunc           func(ctx context.Context, username string) (*models.User, error)
	GetByUsernameContainingFunc func(ctx context.Context, text string) ([]*models.User, error)
	GetByBirthdayFunc           func(ctx context.Context, day time.Time) ([]*models.User, error)
	GetByEmailFunc              func(ctx context.Context, email string) (*models.User, error)
	ListFunc                    func(ctx context.Context) ([]*models.User, error)
	IsUserExistFunc             func(ctx context.Context, user *models.User) (bool, error)
	CreateFunc                  func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc                  func(ctx context.Context, user *models.User) (*models.User, error)
	DeleteFunc                  func(ctx context.Context, id int64) error
	SetActiveByUsernameFunc     func(ctx context.Context, username string, active bool) error
	CountByAuthorityFunc        func(ctx context.Context, authority string) (int64, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsernameContaining(ctx context.Context, text string) ([]*models.User, error) {
	if m.GetByUsernameContainingFunc != nil {
		return m.GetByUsernameContainingFunc(ctx, text)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) GetByBirthday(ctx context.Context, day time.Time) ([]*models.User, error) {
	if m.GetByBirthdayFunc != nil {
		return m.GetByBirthdayFunc(ctx, day)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) IsUserExist(ctx context.Context, user *models.User) (bool, error) {
	if m.IsUserExistFunc != nil {
		return m.IsUserExistFunc(ctx, user)
	}
	return false, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SetActiveByUsername(ctx context.Context, username string, active bool) error {
	if m.SetActiveByUsernameFunc != nil {
		return m.SetActiveByUsernameFunc(ctx, username, active)
	}
	return nil
}

func (m *MockUserRepository) CountByAuthority(ctx context.Context, authority string) (int64, error) {
	if m.CountByAuthorityFunc != nil {
		return m.CountByAuthorityFunc(ctx, authority)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

// NewTestUser builds an active user holding the given authorities
func NewTestUser(id int64, username, email string, authorities ...string) *models.User {
	if len(authorities) == 0 {
		authorities = []string{models.RoleUser}
	}
	now := time.Now()
	return &models.User{
		ID:          id,
		Username:    username,
		Email:       email,
		Address:     "1 Main Street",
		Authorities: authorities,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func datePtr(s string) *time.Time {
	d, err := time.Parse(models.BirthdayLayout, s)
	if err != nil {
		panic(err)
	}
	return &d
}
