package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultExpiration        = 5 * time.Minute
	DefaultRefreshExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrRefreshExpired = errors.New("refresh has expired")
)

// Payload is the verified content of a session token.
type Payload struct {
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
	OrigIat  int64  `json:"origIat"`
}

type claims struct {
	Username string `json:"username"`
	// OrigIat is the issue time of the first token in a refresh chain
	OrigIat int64 `json:"origIat"`
	jwt.RegisteredClaims
}

// TokenManager mints, verifies and refreshes HS256 signed session tokens.
// It keeps no state: a token is valid as long as its signature and exp are.
type TokenManager struct {
	secret            []byte
	expiration        time.Duration
	refreshExpiration time.Duration
	// ability to inject the clock (for unit testing)
	NowFunc func() time.Time
}

func NewTokenManager(secret string, expiration, refreshExpiration time.Duration) *TokenManager {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if refreshExpiration <= 0 {
		refreshExpiration = DefaultRefreshExpiration
	}
	return &TokenManager{
		secret:            []byte(secret),
		expiration:        expiration,
		refreshExpiration: refreshExpiration,
		NowFunc:           time.Now,
	}
}

func (m *TokenManager) Issue(username string) (string, *Payload, error) {
	now := m.NowFunc()
	return m.sign(username, now, now.Unix())
}

func (m *TokenManager) Verify(token string) (*Payload, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(
		token,
		c,
		func(*jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.NowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Username == "" || c.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return &Payload{
		Username: c.Username,
		Exp:      c.ExpiresAt.Unix(),
		OrigIat:  c.OrigIat,
	}, nil
}

// Refresh exchanges a valid token for a new one, keeping the original issue
// time. Refreshing stops working refreshExpiration after the first issue.
func (m *TokenManager) Refresh(token string) (string, *Payload, error) {
	payload, err := m.Verify(token)
	if err != nil {
		return "", nil, err
	}

	now := m.NowFunc()
	if now.Unix() > m.RefreshExpiresIn(payload) {
		return "", nil, ErrRefreshExpired
	}

	return m.sign(payload.Username, now, payload.OrigIat)
}

// RefreshExpiresIn returns the unix time after which the payload's token
// chain can no longer be refreshed.
func (m *TokenManager) RefreshExpiresIn(payload *Payload) int64 {
	return payload.OrigIat + int64(m.refreshExpiration/time.Second)
}

func (m *TokenManager) sign(username string, now time.Time, origIat int64) (string, *Payload, error) {
	expiresAt := now.Add(m.expiration)
	c := claims{
		Username: username,
		OrigIat:  origIat,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &Payload{
		Username: username,
		Exp:      expiresAt.Unix(),
		OrigIat:  origIat,
	}, nil
}
