package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/userdesk/internal/database"
	"github.com/BradenHooton/userdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, birthday, address, authorities, active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Birthday, &user.Address, &user.Authorities, &user.Active,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

// scanUserRows iterates through rows and scans each into User models
func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, username))
}

// List returns every user ordered by id
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	return r.queryUsers(ctx, query)
}

// GetByUsernameContaining matches usernames containing text (case-sensitive).
// strpos is used instead of LIKE so that % and _ in text match literally.
func (r *UserRepository) GetByUsernameContaining(ctx context.Context, text string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE strpos(username, $1) > 0 ORDER BY id`

	return r.queryUsers(ctx, query, text)
}

func (r *UserRepository) GetByBirthday(ctx context.Context, day time.Time) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE birthday = $1::date ORDER BY id`

	return r.queryUsers(ctx, query, day)
}

// IsUserExist reports whether another user already holds the username or email
func (r *UserRepository) IsUserExist(ctx context.Context, user *models.User) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, user.Username, user.Email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// Create inserts user; the id is assigned by the database
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if len(user.Authorities) == 0 {
		user.Authorities = []string{models.RoleUser}
	}

	query := `
		INSERT INTO users (username, email, password_hash, birthday, address, authorities, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		birthdayArg(user.Birthday), user.Address, user.Authorities, user.Active,
		user.CreatedAt, user.UpdatedAt,
	))
}

// Update persists the mutable fields of user
func (r *UserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET email = $1, birthday = $2, address = $3, authorities = $4, active = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Email, birthdayArg(user.Birthday), user.Address, user.Authorities, user.Active,
		user.UpdatedAt, user.ID,
	))
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetActiveByUsername toggles the active flag of the user with the exact username
func (r *UserRepository) SetActiveByUsername(ctx context.Context, username string, active bool) error {
	query := `UPDATE users SET active = $1, updated_at = $2 WHERE username = $3`

	result, err := r.pool.Exec(ctx, query, active, time.Now(), username)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// CountByAuthority counts users granted the authority label
func (r *UserRepository) CountByAuthority(ctx context.Context, authority string) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE $1 = ANY(authorities)`

	var count int64
	if err := r.pool.QueryRow(ctx, query, authority).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users by authority: %w", err)
	}

	return count, nil
}

func (r *UserRepository) CountTotal(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// birthdayArg returns the birthday as a date value, or nil for NULL
func birthdayArg(birthday *time.Time) any {
	if birthday == nil {
		return nil
	}
	return *birthday
}
