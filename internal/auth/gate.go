package auth

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/users"
)

//go:generate mockgen -source=$GOFILE -destination=gate_mocks_test.go -package=auth_test

// ActorResolver resolves the user acting in a request.
type ActorResolver interface {
	Actor(ctx context.Context) (*users.User, error)
}

type tokenVerifier interface {
	Verify(token string) (*Payload, error)
}

type actorStore interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

var _ ActorResolver = (*Gate)(nil)

// Gate turns the request credential into a known user. It fails closed.
type Gate struct {
	tokens tokenVerifier
	users  actorStore
}

func NewGate(tokens tokenVerifier, users actorStore) *Gate {
	return &Gate{
		tokens: tokens,
		users:  users,
	}
}

func (g *Gate) Actor(ctx context.Context) (*users.User, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil, fmt.Errorf("%w: missing credential", apperr.ErrUnauthenticated)
	}

	payload, err := g.tokens.Verify(token)
	if err != nil {
		log.Tracef("[auth gate] token rejected: %s", err)
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, err)
	}

	user, err := g.users.GetByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperr.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user inactive", apperr.ErrUnauthenticated)
	}

	return user, nil
}

// Require runs body only when the request carries a valid credential,
// passing it the resolved actor.
func Require[T any](
	ctx context.Context,
	resolver ActorResolver,
	body func(actor *users.User) (T, error),
) (T, error) {
	actor, err := resolver.Actor(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return body(actor)
}
