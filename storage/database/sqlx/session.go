package sqlxrepos

import (
	"context"
	"time"

	"github.com/trezcool/tempo/core/auth"
)

type sessionStore struct {
	db *DB
}

var _ auth.SessionStore = (*sessionStore)(nil)

func NewSessionStore(db *DB) auth.SessionStore {
	return &sessionStore{db: db}
}

func (s *sessionStore) CreateSession(ctx context.Context, sess auth.Session) error {
	_, err := s.db.exec(ctx,
		"INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		sess.ID, sess.UserID, sess.CreatedAt, sess.ExpiresAt)
	return err
}

func (s *sessionStore) GetSession(ctx context.Context, id string) (auth.Session, error) {
	var sess auth.Session
	err := s.db.get(ctx, &sess,
		"SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > $2",
		id, time.Now().UTC())
	if err != nil {
		return auth.Session{}, notFoundOr(err, auth.ErrSessionNotFound)
	}
	return sess, nil
}

func (s *sessionStore) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	return s.db.execOne(ctx, auth.ErrSessionNotFound, "UPDATE sessions SET expires_at = $1 WHERE id = $2", expiresAt, id)
}

// DeleteSession also purges the expired sessions.
func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.exec(ctx, "DELETE FROM sessions WHERE id = $1 OR expires_at <= $2", id, time.Now().UTC())
	return err
}
