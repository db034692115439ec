package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tempo/core"
	"github.com/trezcool/tempo/core/user"
)

var errInvalidSessionToken = errors.New("invalid session token")

type Service struct {
	users    *user.Service
	store    SessionStore
	validate *validator.Validate
	secret   []byte
	timeout  time.Duration
	nowFunc  func() time.Time // mockable
}

func NewService(users *user.Service, store SessionStore, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{
		users:    users,
		store:    store,
		validate: validate,
		secret:   []byte(conf.SecretKey),
		timeout:  conf.Server.SessionTimeout,
		nowFunc:  time.Now,
	}
}

// Timeout is the inactivity delay after which a session expires.
func (svc *Service) Timeout() time.Duration { return svc.timeout }

// Login authenticates the credentials and opens a session.
// It returns the signed session token the cookie carries.
func (svc *Service) Login(ctx context.Context, data Login) (string, Identity, error) {
	if err := svc.validate.Struct(data); err != nil {
		return "", Identity{}, err
	}

	usr, err := svc.users.Authenticate(ctx, data.Username, data.Password)
	if err != nil {
		return "", Identity{}, err
	}

	now := svc.nowFunc().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.timeout),
	}
	if err = svc.store.CreateSession(ctx, sess); err != nil {
		return "", Identity{}, errors.Wrap(err, "creating session")
	}

	token, err := svc.signToken(sess)
	if err != nil {
		return "", Identity{}, errors.Wrap(err, "signing session token")
	}
	return token, Identity{UserID: usr.ID, Username: usr.Username, Role: usr.Role, SessionID: sess.ID}, nil
}

func (svc *Service) Logout(ctx context.Context, ident Identity) error {
	if err := svc.store.DeleteSession(ctx, ident.SessionID); err != nil && errors.Cause(err) != ErrSessionNotFound {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

// Resolve returns the identity behind a session token and extends the session expiry.
// Any invalid, unknown or expired token, or an inactive user, yields core.ErrUnauthenticated.
func (svc *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := svc.parseToken(token)
	if err != nil {
		return Identity{}, core.ErrUnauthenticated
	}

	sess, err := svc.store.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return Identity{}, core.ErrUnauthenticated
		}
		return Identity{}, errors.Wrap(err, "getting session")
	}
	now := svc.nowFunc().UTC()
	if sess.Expired(now) || strconv.Itoa(sess.UserID) != claims.Subject {
		_ = svc.store.DeleteSession(ctx, sess.ID)
		return Identity{}, core.ErrUnauthenticated
	}

	usr, err := svc.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Identity{}, core.ErrUnauthenticated
		}
		return Identity{}, errors.Wrap(err, "getting session user")
	}
	if !usr.IsActive {
		_ = svc.store.DeleteSession(ctx, sess.ID)
		return Identity{}, core.ErrUnauthenticated
	}

	if err = svc.store.TouchSession(ctx, sess.ID, now.Add(svc.timeout)); err != nil {
		return Identity{}, errors.Wrap(err, "touching session")
	}
	return Identity{UserID: usr.ID, Username: usr.Username, Role: usr.Role, SessionID: sess.ID}, nil
}

func (svc *Service) signToken(sess Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       sess.ID,
		Subject:  strconv.Itoa(sess.UserID),
		IssuedAt: jwt.NewNumericDate(sess.CreatedAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
}

func (svc *Service) parseToken(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, errInvalidSessionToken
	}
	claims := new(jwt.RegisteredClaims)
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidSessionToken
		}
		return svc.secret, nil
	})
	if err != nil || !tkn.Valid || claims.ID == "" {
		return nil, errInvalidSessionToken
	}
	return claims, nil
}
