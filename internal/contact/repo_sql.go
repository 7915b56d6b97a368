package contact

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLRepo persists contacts in Postgres via database/sql over the pgx
// stdlib driver.
//
// Expected schema:
//
//	CREATE TABLE contacts (
//	  id         uuid PRIMARY KEY,
//	  user_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
//	  first_name varchar(25) NOT NULL,
//	  last_name  varchar(25) NOT NULL,
//	  email      varchar(100) NOT NULL,
//	  phone      varchar(20) NOT NULL,
//	  birthday   date NOT NULL,
//	  extra      varchar(250),
//	  UNIQUE (user_id, email)
//	);
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{db: db} }

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, extra`

func (r *SQLRepo) Create(ctx context.Context, c Contact) (Contact, error) {
	const q = `
INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, birthday, extra)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + contactColumns + `
`
	out, err := scanContact(r.db.QueryRowContext(ctx, q,
		c.ID,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Birthday,
		nullString(c.Extra),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return Contact{}, ErrDuplicateEmail
		}
		return Contact{}, err
	}
	return out, nil
}

func (r *SQLRepo) Get(ctx context.Context, userID, id string) (Contact, error) {
	const q = `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND id = $2`
	c, err := scanContact(r.db.QueryRowContext(ctx, q, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return c, nil
}

func (r *SQLRepo) List(ctx context.Context, userID string, offset, limit int) ([]Contact, error) {
	const q = `
SELECT ` + contactColumns + `
FROM contacts
WHERE user_id = $1
ORDER BY last_name, first_name, id
OFFSET $2 LIMIT $3
`
	return r.query(ctx, q, userID, offset, limit)
}

func (r *SQLRepo) Update(ctx context.Context, userID, id string, upd Update) (Contact, error) {
	// COALESCE keeps unset fields unchanged; birthday uses an explicit
	// NULL check because a zero date is not a valid sentinel.
	const q = `
UPDATE contacts SET
  first_name = COALESCE($3, first_name),
  last_name  = COALESCE($4, last_name),
  email      = COALESCE($5, email),
  phone      = COALESCE($6, phone),
  birthday   = COALESCE($7, birthday),
  extra      = COALESCE($8, extra)
WHERE user_id = $1 AND id = $2
RETURNING ` + contactColumns + `
`
	c, err := scanContact(r.db.QueryRowContext(ctx, q,
		userID,
		id,
		upd.FirstName,
		upd.LastName,
		upd.Email,
		upd.Phone,
		upd.Birthday,
		upd.Extra,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Contact{}, ErrDuplicateEmail
		}
		return Contact{}, err
	}
	return c, nil
}

func (r *SQLRepo) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM contacts WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, userID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepo) Search(ctx context.Context, userID, q string) ([]Contact, error) {
	const stmt = `
SELECT ` + contactColumns + `
FROM contacts
WHERE user_id = $1
  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
ORDER BY last_name, first_name, id
`
	like := "%" + escapeLike(q) + "%"
	return r.query(ctx, stmt, userID, like)
}

func (r *SQLRepo) UpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]Contact, error) {
	fromMD := from.Format("01-02")
	toMD := from.AddDate(0, 0, days).Format("01-02")

	if fromMD <= toMD {
		const q = `
SELECT ` + contactColumns + `
FROM contacts
WHERE user_id = $1
  AND to_char(birthday, 'MM-DD') BETWEEN $2 AND $3
ORDER BY to_char(birthday, 'MM-DD'), id
`
		return r.query(ctx, q, userID, fromMD, toMD)
	}

	// Window wraps across the new year (e.g. 12-28 .. 01-05).
	const q = `
SELECT ` + contactColumns + `
FROM contacts
WHERE user_id = $1
  AND (to_char(birthday, 'MM-DD') >= $2 OR to_char(birthday, 'MM-DD') <= $3)
ORDER BY to_char(birthday, 'MM-DD'), id
`
	return r.query(ctx, q, userID, fromMD, toMD)
}

func (r *SQLRepo) query(ctx context.Context, q string, args ...any) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var (
		c     Contact
		extra sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&extra,
	); err != nil {
		return Contact{}, err
	}
	c.Extra = extra.String
	return c, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
