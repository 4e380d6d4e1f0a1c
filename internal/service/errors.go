package service

import (
	"errors"
	"fmt"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/users"
)

// storeErr classifies a store failure into the API error taxonomy.
// Errors it does not recognise are returned untouched.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, blog.ErrBlogNotFound),
		errors.Is(err, blog.ErrCommentNotFound),
		errors.Is(err, users.ErrUserNotFound):
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	case errors.Is(err, users.ErrUsernameTaken):
		return fmt.Errorf("%w: %w", apperr.ErrDuplicateUsername, err)
	default:
		return err
	}
}
