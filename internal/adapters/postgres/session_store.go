// Package postgres provides a PostgreSQL session store for deployments without Redis.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/target/storyweb/internal/domain/auth"
	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
)

// SessionStore persists sessions in the sessions table.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.SessionStore  = (*SessionStore)(nil)
	_ ports.SessionLister = (*SessionStore)(nil)
	_ ports.SessionPinger = (*SessionStore)(nil)
)

// NewSessionStore creates a PostgreSQL-backed session store.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !sess.ExpiresAt.After(s.now()) {
		return errors.New("session is expired")
	}
	role := sess.Role
	if role == "" {
		role = domainauth.RoleAnonymous
	}

	userJSON, err := marshalNullable(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user profile: %w", err)
	}
	adminJSON, err := marshalNullable(sess.Admin)
	if err != nil {
		return fmt.Errorf("marshal admin profile: %w", err)
	}

	const q = `
		INSERT INTO sessions (id, token, role, user_profile, admin_profile, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			role = EXCLUDED.role,
			user_profile = EXCLUDED.user_profile,
			admin_profile = EXCLUDED.admin_profile,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()`
	if _, err := s.db.ExecContext(ctx, q, sess.ID, sess.Token, string(role), userJSON, adminJSON, sess.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", apperrors.MapDBError(err))
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	const q = `
		SELECT id, token, role, user_profile, admin_profile, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2`

	var (
		sess      domainauth.Session
		role      string
		userJSON  []byte
		adminJSON []byte
	)
	err := s.db.QueryRowContext(ctx, q, id, s.now()).
		Scan(&sess.ID, &sess.Token, &role, &userJSON, &adminJSON, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get session: %w", apperrors.MapDBError(err))
	}
	sess.Role = domainauth.Role(role)

	if len(userJSON) > 0 {
		sess.User = &domainauth.UserProfile{}
		if err := json.Unmarshal(userJSON, sess.User); err != nil {
			return domainauth.Session{}, fmt.Errorf("unmarshal user profile: %w", err)
		}
	}
	if len(adminJSON) > 0 {
		sess.Admin = &domainauth.AdminProfile{}
		if err := json.Unmarshal(adminJSON, sess.Admin); err != nil {
			return domainauth.Session{}, fmt.Errorf("unmarshal admin profile: %w", err)
		}
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Ping checks that the database answers.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", apperrors.MapDBError(err))
	}
	return nil
}

// List returns up to limit live session ids, most recently updated first.
func (s *SessionStore) List(ctx context.Context, limit int) ([]string, error) {
	q := `SELECT id FROM sessions WHERE expires_at > $1 ORDER BY updated_at DESC`
	args := []any{s.now()}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", apperrors.MapDBError(err))
	}
	return ids, nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
