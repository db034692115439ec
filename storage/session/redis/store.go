// Package redisstore keeps the login sessions in redis, one key per session expiring with it.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/auth"
)

const keyPrefix = "tempo:session:"

type Store struct {
	rdb *redis.Client
}

var _ auth.SessionStore = (*Store)(nil)

// New connects to the redis server of the session config.
func New(ctx context.Context, conf core.SessionConfig) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &Store{rdb: rdb}, nil
}

func NewWithClient(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(id string) string { return keyPrefix + id }

func (s *Store) CreateSession(ctx context.Context, sess auth.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return s.rdb.Set(ctx, key(sess.ID), data, ttl).Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (auth.Session, error) {
	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}

	var sess auth.Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return auth.Session{}, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

func (s *Store) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	sess.ExpiresAt = expiresAt.UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	// XX: never resurrect a session deleted in between
	ok, err := s.rdb.SetXX(ctx, key(id), data, time.Until(expiresAt)).Result()
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrSessionNotFound
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
