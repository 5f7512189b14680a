package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type userRecord struct {
	ID              int64     `db:"id"`
	Name            string    `db:"name"`
	Email           string    `db:"email"`
	PasswordHash    string    `db:"password_hash"`
	Role            string    `db:"role"`
	TotalVisitCount int64     `db:"total_visit_count"`
	PassResetToken  *string   `db:"pass_reset_token"`
	RefreshToken    *string   `db:"refresh_token"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *userRecord) ToUser() *models.User {
	return &models.User{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		PasswordHash:    r.PasswordHash,
		Role:            models.Role(r.Role),
		TotalVisitCount: r.TotalVisitCount,
		PassResetToken:  r.PassResetToken,
		RefreshToken:    r.RefreshToken,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// userColumns deliberately leaves out password_hash so lookups never carry
// the secret; CredentialsByEmail selects it explicitly.
const userColumns = `id, name, email, role, total_visit_count, pass_reset_token, refresh_token, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	const op = "database.postgres.UserRepository.Create"

	rec := new(userRecord)
	query := `INSERT INTO users(name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	err := r.db.GetContext(ctx, rec, query, name, email, passwordHash, string(role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrEmailExists)
		}

		return nil, fmt.Errorf("%s: failed to create user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByEmail"

	rec := new(userRecord)
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, rec, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByID"

	rec := new(userRecord)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

// CredentialsByEmail returns the user id and password hash for
// authentication. It is the only query that reads the hash.
func (r *UserRepository) CredentialsByEmail(ctx context.Context, email string) (int64, string, error) {
	const op = "database.postgres.UserRepository.CredentialsByEmail"

	var rec struct {
		ID           int64  `db:"id"`
		PasswordHash string `db:"password_hash"`
	}
	query := `SELECT id, password_hash FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &rec, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return 0, "", fmt.Errorf("%s: failed to get user credentials: %w", op, err)
	}

	return rec.ID, rec.PasswordHash, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, upd database.UserUpdate) error {
	const op = "database.postgres.UserRepository.Update"

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, database.ErrEmailExists)
		}

		return fmt.Errorf("%s: failed to update user record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id int64, token *string) error {
	const op = "database.postgres.UserRepository.SetRefreshToken"

	query := `UPDATE users SET refresh_token = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("%s: failed to set refresh token: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepository) SetPassResetToken(ctx context.Context, id int64, token *string) error {
	const op = "database.postgres.UserRepository.SetPassResetToken"

	query := `UPDATE users SET pass_reset_token = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, token, id)
	if err != nil {
		return fmt.Errorf("%s: failed to set password reset token: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	return nil
}

// ResetPassword stores the new hash and consumes the outstanding reset
// token in one statement.
func (r *UserRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "database.postgres.UserRepository.ResetPassword"

	query := `UPDATE users SET password_hash = $1, pass_reset_token = NULL WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%s: failed to reset password: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	return nil
}

// IncrementVisitCount bumps the counter atomically in a single statement so
// concurrent redirects never lose updates.
func (r *UserRepository) IncrementVisitCount(ctx context.Context, id int64) error {
	const op = "database.postgres.UserRepository.IncrementVisitCount"

	query := `UPDATE users SET total_visit_count = total_visit_count + 1 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to increment visit count: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	return nil
}

// Delete removes the user and every link they own in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const op = "database.postgres.UserRepository.Delete"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE creator_id = $1`, id); err != nil {
		return fmt.Errorf("%s: failed to delete user links: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete user record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}
