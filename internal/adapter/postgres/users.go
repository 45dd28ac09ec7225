package postgres

import (
	"context"
	"database/sql"
	"errors"

	"colab/internal/domain"
)

// UserRepo implements domain.UserRepository.
type UserRepo struct {
	sql *sql.DB
}

// Users returns the user repository.
func (d *DB) Users() *UserRepo {
	return &UserRepo{sql: d.sql}
}

const userColumns = "id, name, email, password_hash, contact_number, profile_picture_url, role, email_verified, verification_token, invite_token, created_at"

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ContactNumber,
		&u.ProfilePictureURL, &u.Role, &u.EmailVerified, &u.VerificationToken,
		&u.InviteToken, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns the user with the given id, or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=$1;", id))
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=$1;", email))
}

// GetByVerificationToken returns the user holding an email verification token.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return scanUser(r.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE verification_token=$1;", token))
}

// GetByInviteToken returns the provisional user holding an invite token.
func (r *UserRepo) GetByInviteToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return scanUser(r.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE invite_token=$1;", token))
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO users("+userColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);",
		u.ID, u.Name, u.Email, u.PasswordHash, u.ContactNumber, u.ProfilePictureURL,
		u.Role, u.EmailVerified, u.VerificationToken, u.InviteToken, u.CreatedAt.UTC())
	return err
}

// Update rewrites all mutable user fields.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.sql.ExecContext(ctx,
		`UPDATE users SET name=$2, email=$3, password_hash=$4, contact_number=$5,
		 profile_picture_url=$6, role=$7, email_verified=$8, verification_token=$9,
		 invite_token=$10 WHERE id=$1;`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.ContactNumber, u.ProfilePictureURL,
		u.Role, u.EmailVerified, u.VerificationToken, u.InviteToken)
	return err
}

// Delete removes a user; sessions and memberships cascade.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.sql.ExecContext(ctx, "DELETE FROM users WHERE id=$1;", id)
	return err
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at;")
}

// ListRecent returns the newest users up to limit.
func (r *UserRepo) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	return r.list(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC LIMIT $1;", limit)
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ContactNumber,
			&u.ProfilePictureURL, &u.Role, &u.EmailVerified, &u.VerificationToken,
			&u.InviteToken, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM users;").Scan(&n)
	return n, err
}

// CountByRole returns user counts grouped by application role.
func (r *UserRepo) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	rows, err := r.sql.QueryContext(ctx, "SELECT role, COUNT(1) FROM users GROUP BY role;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Role]int)
	for rows.Next() {
		var role domain.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}
