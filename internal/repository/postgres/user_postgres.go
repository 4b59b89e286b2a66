package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"hisapi/internal/model"
	"hisapi/internal/repository"
)

// UserPostgres reads users joined with their role and profile names.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

var userColumns = []string{
	"u.id", "u.email", "u.login", "u.first_name", "u.last_name",
	"u.role_id", "r.name", "u.profile_id", "p.name", "u.hospital_id",
	"u.is_active", "u.is_locked", "u.locked_until", "u.failed_attempts",
	"u.last_login_at", "u.created_at",
}

func (r *UserPostgres) selectUser() sq.SelectBuilder {
	return psql.Select(userColumns...).
		From("users u").
		Join("roles r ON r.id = u.role_id").
		LeftJoin("profiles p ON p.id = u.profile_id")
}

// FindByEmail matches the stored e-mail case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q, args, err := r.selectUser().Where(sq.Expr("lower(u.email) = ?", email)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user by email: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	q, args, err := r.selectUser().Where(sq.Eq{"u.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user by id: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, nil
}

func (r *UserPostgres) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE users SET failed_attempts = 0, last_login_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return fmt.Errorf("record login for user %d: %w", id, err)
	}
	return expectAffected(res, "users", id)
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Login,
		&u.FirstName,
		&u.LastName,
		&u.RoleID,
		&u.RoleName,
		&u.ProfileID,
		&u.ProfileName,
		&u.HospitalID,
		&u.IsActive,
		&u.IsLocked,
		&u.LockedUntil,
		&u.FailedAttempts,
		&u.LastLoginAt,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
