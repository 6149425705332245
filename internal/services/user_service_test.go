package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/userdesk/internal/models"
	pkgauth "github.com/BradenHooton/userdesk/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(repo *MockUserRepository) *UserService {
	return NewUserService(repo, testLogger(), testAuditLogger())
}

func TestUserService_GetUserByID_Success(t *testing.T) {
	user := NewTestUser(7, "alice", "alice@example.com")

	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			assert.Equal(t, int64(7), id)
			return user, nil
		},
	}

	result, err := newTestUserService(repo).GetUserByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	result, err := newTestUserService(&MockUserRepository{}).GetUserByID(context.Background(), 99)

	assert.Nil(t, result)
	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_GetUserByID_DatabaseError(t *testing.T) {
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	result, err := newTestUserService(repo).GetUserByID(context.Background(), 1)

	assert.Nil(t, result)
	assert.Equal(t, models.ErrInternalServer, err)
}

func TestUserService_ListUsers(t *testing.T) {
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{
				NewTestUser(1, "alice", "alice@example.com"),
				NewTestUser(2, "bob", "bob@example.com"),
			}, nil
		},
	}

	users, err := newTestUserService(repo).ListUsers(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_ListUsers_DatabaseError(t *testing.T) {
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]*models.User, error) {
			return nil, errors.New("timeout")
		},
	}

	_, err := newTestUserService(repo).ListUsers(context.Background())

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestUserService_SearchUsers_DelegatesToResolver(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser(1, "alice", email), nil
		},
	}

	users, err := newTestUserService(repo).SearchUsers(context.Background(), models.FilterCriteria{
		Email: strPtr("alice@example.com"),
	})

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserService_CreateUser_Success(t *testing.T) {
	var stored *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			stored = user
			created := *user
			created.ID = 11
			return &created, nil
		},
	}

	input := &models.User{Username: "carol", Email: "carol@example.com", Address: "2 Side Road"}
	created, err := newTestUserService(repo).CreateUser(context.Background(), input, "correct-horse-7")

	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.True(t, created.Active)

	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse-7", stored.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(stored.PasswordHash, "correct-horse-7"))
}

func TestUserService_CreateUser_AlreadyExists(t *testing.T) {
	repo := &MockUserRepository{
		IsUserExistFunc: func(ctx context.Context, user *models.User) (bool, error) {
			return true, nil
		},
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("Create must not be called for an existing user")
			return nil, nil
		},
	}

	_, err := newTestUserService(repo).CreateUser(context.Background(),
		&models.User{Username: "alice", Email: "alice@example.com"}, "correct-horse-7")

	assert.Equal(t, models.ErrConflict, err)
}

func TestUserService_CreateUser_ConflictRace(t *testing.T) {
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	_, err := newTestUserService(repo).CreateUser(context.Background(),
		&models.User{Username: "alice", Email: "alice@example.com"}, "correct-horse-7")

	assert.Equal(t, models.ErrConflict, err)
}

func TestUserService_CreateUser_WeakPassword(t *testing.T) {
	_, err := newTestUserService(&MockUserRepository{}).CreateUser(context.Background(),
		&models.User{Username: "alice", Email: "alice@example.com"}, "short")

	require.Error(t, err)
	var validationErr *pkgauth.PasswordValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestUserService_CreateUser_ExistenceCheckFails(t *testing.T) {
	repo := &MockUserRepository{
		IsUserExistFunc: func(ctx context.Context, user *models.User) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	_, err := newTestUserService(repo).CreateUser(context.Background(),
		&models.User{Username: "alice", Email: "alice@example.com"}, "correct-horse-7")

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestUserService_UpdateUser_OnlyAddressChanges(t *testing.T) {
	existing := NewTestUser(5, "alice", "alice@example.com", models.RoleUser)

	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			assert.Equal(t, int64(5), user.ID)
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, []string{models.RoleUser}, user.Authorities)
			return user, nil
		},
	}

	updated, err := newTestUserService(repo).UpdateUser(context.Background(), 5, "9 New Street")

	require.NoError(t, err)
	assert.Equal(t, "9 New Street", updated.Address)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	repo := &MockUserRepository{
		UpdateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("Update must not be called for a missing user")
			return nil, nil
		},
	}

	_, err := newTestUserService(repo).UpdateUser(context.Background(), 5, "9 New Street")

	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_DeleteUser(t *testing.T) {
	tests := []struct {
		name        string
		target      *models.User
		adminCount  int64
		wantDeleted bool
		wantErr     error
	}{
		{
			name:        "plain user",
			target:      NewTestUser(2, "bob", "bob@example.com", models.RoleUser),
			adminCount:  1,
			wantDeleted: true,
		},
		{
			name:       "sole admin is blocked",
			target:     NewTestUser(1, "admin", "admin@example.com", models.RoleUser, models.RoleAdmin),
			adminCount: 1,
			wantErr:    models.ErrNotFound,
		},
		{
			name:        "one of several admins",
			target:      NewTestUser(1, "admin", "admin@example.com", models.RoleAdmin),
			adminCount:  3,
			wantDeleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			repo := &MockUserRepository{
				GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
					return tt.target, nil
				},
				CountByAuthorityFunc: func(ctx context.Context, authority string) (int64, error) {
					assert.Equal(t, models.RoleAdmin, authority)
					return tt.adminCount, nil
				},
				DeleteFunc: func(ctx context.Context, id int64) error {
					assert.Equal(t, tt.target.ID, id)
					deleted = true
					return nil
				},
			}

			err := newTestUserService(repo).DeleteUser(context.Background(), tt.target.ID)

			assert.Equal(t, tt.wantDeleted, deleted)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserService_DeleteUser_BlockedMessage(t *testing.T) {
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return NewTestUser(1, "admin", "admin@example.com", models.RoleAdmin), nil
		},
		CountByAuthorityFunc: func(ctx context.Context, authority string) (int64, error) {
			return 1, nil
		},
	}

	err := newTestUserService(repo).DeleteUser(context.Background(), 1)

	assert.Equal(t, "Unable to delete. User with id 1 is the last administrator", models.MessageOf(err, ""))
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	repo := &MockUserRepository{
		CountByAuthorityFunc: func(ctx context.Context, authority string) (int64, error) {
			t.Fatal("admin count is not needed for a missing user")
			return 0, nil
		},
	}

	err := newTestUserService(repo).DeleteUser(context.Background(), 42)

	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_DeleteUser_ConcurrentlyRemoved(t *testing.T) {
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return NewTestUser(id, "bob", "bob@example.com"), nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			return models.ErrNotFound
		},
	}

	err := newTestUserService(repo).DeleteUser(context.Background(), 2)

	assert.Equal(t, models.ErrNotFound, err)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	var created *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			return user, nil
		},
	}

	err := newTestUserService(repo).EnsureAdmin(context.Background(), "root", "root@example.com", "correct-horse-7")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, created.IsAdmin())
	assert.True(t, created.HasAuthority(models.RoleUser))
}

func TestUserService_EnsureAdmin_AlreadyPresent(t *testing.T) {
	repo := &MockUserRepository{
		IsUserExistFunc: func(ctx context.Context, user *models.User) (bool, error) {
			return true, nil
		},
	}

	err := newTestUserService(repo).EnsureAdmin(context.Background(), "root", "root@example.com", "correct-horse-7")

	assert.NoError(t, err)
}
