// Package auth checks the operator credential and issues signed sessions.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	defaultTTL = 6 * time.Hour
	issuer     = "invoicedesk"
)

// Session is an authenticated operator session. It is valid from IssuedAt
// until, but not including, ExpiresAt.
type Session struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) ValidAt(now time.Time) bool {
	return s.Username != "" && now.Before(s.ExpiresAt)
}

type sessionContextKey struct{}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}

// Manager holds the single operator credential. The password is kept only as
// a bcrypt hash.
type Manager struct {
	secret       []byte
	ttl          time.Duration
	username     string
	passwordHash []byte
}

type sessionClaims struct {
	jwtlib.RegisteredClaims
}

func NewManager(secret string, ttl time.Duration, username string, password string) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is required")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("operator username and password are required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash operator password: %w", err)
	}
	return &Manager{
		secret:       []byte(secret),
		ttl:          ttl,
		username:     username,
		passwordHash: hash,
	}, nil
}

// Login checks the credential and returns a session starting at now together
// with its signed token.
func (m *Manager) Login(username string, password string, now time.Time) (Session, string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(m.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return Session{}, "", ErrInvalidCredentials
	}

	issuedAt := now.UTC().Truncate(time.Second)
	session := Session{
		Username:  m.username,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(m.ttl),
	}
	token, err := m.sign(session)
	if err != nil {
		return Session{}, "", err
	}
	return session, token, nil
}

// Parse verifies a token's signature and returns its session if it is still
// valid at now.
func (m *Manager) Parse(tokenStr string, now time.Time) (Session, error) {
	claims := &sessionClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, ErrInvalidToken
	}
	if !token.Valid || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Session{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, ErrInvalidToken
	}

	session := Session{
		Username:  sub,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if !session.ValidAt(now) {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

func (m *Manager) sign(session Session) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   session.Username,
			IssuedAt:  jwtlib.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwtlib.NewNumericDate(session.ExpiresAt),
			Issuer:    issuer,
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
