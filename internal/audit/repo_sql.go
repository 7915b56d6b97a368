package audit

import (
	"context"
	"database/sql"
)

// SQLRepo persists events to the auth_events table.
//
// Expected schema:
//
//	CREATE TABLE auth_events (
//	  id          uuid PRIMARY KEY,
//	  type        text NOT NULL,
//	  email       text NOT NULL,
//	  actor_email text,
//	  ip          text,
//	  message     text,
//	  created_at  timestamptz NOT NULL
//	);
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{db: db} }

func (r *SQLRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_events (id, type, email, actor_email, ip, message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.Email,
		nullable(e.ActorEmail),
		nullable(e.IP),
		nullable(e.Message),
		e.CreatedAt,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
