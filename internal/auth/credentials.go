package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/users"
	"github.com/2beens/blogql/pkg"
)

var errWrongCredentials = errors.New("please enter valid credentials")

type credentialStore interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
	SetLastLogin(ctx context.Context, id int, at time.Time) error
}

type TokenResult struct {
	Token            string
	Payload          *Payload
	RefreshExpiresIn int64
}

// Credentials issues, verifies and refreshes session tokens.
type Credentials struct {
	tokens *TokenManager
	users  credentialStore
}

func NewCredentials(tokens *TokenManager, users credentialStore) *Credentials {
	return &Credentials{
		tokens: tokens,
		users:  users,
	}
}

func (c *Credentials) Obtain(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", username)
			return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, errWrongCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive || !pkg.CheckPasswordHash(password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", username)
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, errWrongCredentials)
	}

	token, payload, err := c.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	if err := c.users.SetLastLogin(ctx, user.ID, c.tokens.NowFunc()); err != nil {
		log.Warnf("set last login for user %d: %s", user.ID, err)
	}

	return &TokenResult{
		Token:            token,
		Payload:          payload,
		RefreshExpiresIn: c.tokens.RefreshExpiresIn(payload),
	}, nil
}

func (c *Credentials) Verify(token string) (*Payload, error) {
	payload, err := c.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	return payload, nil
}

func (c *Credentials) Refresh(token string) (*TokenResult, error) {
	newToken, payload, err := c.tokens.Refresh(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}
	return &TokenResult{
		Token:            newToken,
		Payload:          payload,
		RefreshExpiresIn: c.tokens.RefreshExpiresIn(payload),
	}, nil
}
