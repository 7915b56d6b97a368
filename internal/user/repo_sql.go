package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLRepo persists users in Postgres via database/sql over the pgx stdlib
// driver.
//
// Expected schema:
//
//	CREATE TABLE users (
//	  id            uuid PRIMARY KEY,
//	  username      varchar(25),
//	  email         varchar(250) NOT NULL UNIQUE,
//	  password_hash varchar(255) NOT NULL,
//	  role          varchar(20) NOT NULL DEFAULT 'user',
//	  confirmed     boolean NOT NULL DEFAULT false,
//	  refresh_token varchar(1024),
//	  avatar        varchar(255),
//	  created_at    timestamptz NOT NULL DEFAULT now()
//	);
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{db: db} }

const userColumns = `id, username, email, password_hash, role, confirmed, refresh_token, avatar, created_at`

func (r *SQLRepo) Create(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (id, username, email, password_hash, role, confirmed, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + userColumns + `
`
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		nullString(u.Username),
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Confirmed,
		u.CreatedAt,
	)
	out, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

func (r *SQLRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, q, email)
}

func (r *SQLRepo) FindByID(ctx context.Context, id string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, q, id)
}

func (r *SQLRepo) List(ctx context.Context) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, email`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLRepo) SetRefreshToken(ctx context.Context, email, token string) error {
	const q = `UPDATE users SET refresh_token = $2 WHERE email = $1`
	return r.exec(ctx, q, email, nullString(token))
}

func (r *SQLRepo) SetConfirmed(ctx context.Context, email string) error {
	const q = `UPDATE users SET confirmed = true WHERE email = $1`
	return r.exec(ctx, q, email)
}

func (r *SQLRepo) SetPasswordHash(ctx context.Context, email, hash string) error {
	// Clearing the refresh slot here ends any active session the moment
	// the password changes.
	const q = `UPDATE users SET password_hash = $2, refresh_token = NULL WHERE email = $1`
	return r.exec(ctx, q, email, hash)
}

func (r *SQLRepo) SetRole(ctx context.Context, id, role string) (User, error) {
	const q = `
UPDATE users SET role = $2 WHERE id = $1
RETURNING ` + userColumns + `
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id, role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *SQLRepo) SetAvatar(ctx context.Context, email, url string) error {
	const q = `UPDATE users SET avatar = $2 WHERE email = $1`
	return r.exec(ctx, q, email, nullString(url))
}

func (r *SQLRepo) findOne(ctx context.Context, q string, arg any) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *SQLRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		username sql.NullString
		refresh  sql.NullString
		avatar   sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Confirmed,
		&refresh,
		&avatar,
		&u.CreatedAt,
	); err != nil {
		return User{}, err
	}
	u.Username = username.String
	u.RefreshToken = refresh.String
	u.Avatar = avatar.String
	return u, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation matches the Postgres unique_violation error (SQLSTATE
// 23505) raised by the unique index on users.email.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
