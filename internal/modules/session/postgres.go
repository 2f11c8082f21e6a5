package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS console_sessions (
	id         UUID PRIMARY KEY,
	token      BYTEA NOT NULL,
	user_id    TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL,
	role       TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type postgresRepository struct {
	db     *sql.DB
	sealer *Sealer
}

// NewPostgresRepository creates a PostgreSQL session repository. Tokens are
// stored sealed.
func NewPostgresRepository(db *sql.DB, sealer *Sealer) Repository {
	return &postgresRepository{db: db, sealer: sealer}
}

// CreateSchema creates the console_sessions table if it is missing.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (r *postgresRepository) Save(ctx context.Context, s *Session) error {
	sealed, err := r.sealer.Seal([]byte(s.Token))
	if err != nil {
		return err
	}
	var expires sql.NullTime
	if !s.ExpiresAt.IsZero() {
		expires = sql.NullTime{Time: s.ExpiresAt, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO console_sessions (id, token, user_id, username, role, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token, user_id = EXCLUDED.user_id, username = EXCLUDED.username,
		    role = EXCLUDED.role, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`,
		s.ID, sealed, s.UserID, s.Username, s.Role.String(), expires, s.CreatedAt)
	return err
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	s := &Session{}
	var (
		sealed  []byte
		role    string
		expires sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, username, role, expires_at, created_at
		FROM console_sessions WHERE id = $1`, id).
		Scan(&s.ID, &sealed, &s.UserID, &s.Username, &role, &expires, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Role, err = ParseRole(role); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	token, err := r.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	s.Token = string(token)
	if expires.Valid {
		s.ExpiresAt = expires.Time
	}
	return s, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
