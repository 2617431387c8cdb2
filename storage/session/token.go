package session

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims name the session a browser token refers to (jti).
type Claims struct {
	jwt.StandardClaims
}

// Manager loads and saves sessions referred to by signed browser tokens.
type Manager struct {
	store  Store
	secret []byte
	issuer string
}

func NewManager(store Store, secret, issuer string) *Manager {
	return &Manager{store: store, secret: []byte(secret), issuer: issuer}
}

// Token signs the session id of s.
func (m *Manager) Token(s *Session) (string, error) {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:       s.ID,
			Issuer:   m.issuer,
			IssuedAt: time.Now().Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return token, errors.Wrap(err, "signing session token")
}

// ParseToken returns the session id of a token signed by m.
func (m *Manager) ParseToken(token string) (string, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || claims.Id == "" || claims.Issuer != m.issuer {
		return "", ErrInvalidToken
	}
	return claims.Id, nil
}

// Load returns the session of token, or a new one if the token is empty, forged or stale.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return New(), nil
	}
	id, err := m.ParseToken(token)
	if err != nil {
		return New(), nil
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return New(), nil
		}
		return nil, err
	}
	return s, nil
}

func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s)
}

func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	return m.store.Delete(ctx, s.ID)
}
