package inmemdb

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
	defer s.db.lock(ctx)()
	s.db.t.sessions[sess.ID] = sess
	return nil
}

func (s *sessionStore) GetSession(ctx context.Context, id string) (auth.Session, error) {
	defer s.db.rlock(ctx)()

	sess, ok := s.db.t.sessions[id]
	if !ok || sess.Expired(time.Now().UTC()) {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionStore) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	defer s.db.lock(ctx)()

	sess, ok := s.db.t.sessions[id]
	if !ok {
		return auth.ErrSessionNotFound
	}
	sess.ExpiresAt = expiresAt
	s.db.t.sessions[id] = sess
	return nil
}

// DeleteSession also purges the expired sessions.
func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	defer s.db.lock(ctx)()

	now := time.Now().UTC()
	delete(s.db.t.sessions, id)
	for sid, sess := range s.db.t.sessions {
		if sess.Expired(now) {
			delete(s.db.t.sessions, sid)
		}
	}
	return nil
}
