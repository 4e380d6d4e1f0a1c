package graph

import (
	"context"

	"github.com/graphql-go/graphql/gqlerrors"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/apperr"
)

const internalErrorMessage = "internal error"

// codedError is a resolver failure carrying its taxonomy code in the
// "extensions" entry of the response error.
type codedError struct {
	message string
	code    string
}

var _ gqlerrors.ExtendedError = (*codedError)(nil)

func (e *codedError) Error() string {
	return e.message
}

func (e *codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": e.code,
	}
}

// toGraphQLError hides unclassified failures from the caller and logs them.
func toGraphQLError(_ context.Context, field string, err error) error {
	code := apperr.Code(err)
	if code == apperr.CodeInternal {
		log.Errorf("graphql [%s]: %s", field, err)
		return &codedError{
			message: internalErrorMessage,
			code:    code,
		}
	}

	log.Tracef("graphql [%s] rejected: %s", field, err)
	return &codedError{
		message: err.Error(),
		code:    code,
	}
}
