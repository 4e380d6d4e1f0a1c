package service

import (
	"context"
	"fmt"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/users"
)

// ownerLookup returns the id of the user owning the entity with the given key.
type ownerLookup func(ctx context.Context, key int) (int, error)

// requireOwner passes only when actor owns the entity behind key.
// A missing entity yields NotFound, somebody else's entity PermissionDenied.
func requireOwner(ctx context.Context, actor *users.User, key int, lookup ownerLookup) error {
	ownerID, err := lookup(ctx, key)
	if err != nil {
		return storeErr(err)
	}
	if ownerID != actor.ID {
		return fmt.Errorf("%w: user %s is not the owner", apperr.ErrPermissionDenied, actor.Username)
	}
	return nil
}
