package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/service"
	"github.com/2beens/blogql/internal/users"
	"github.com/2beens/blogql/pkg"
)

type harness struct {
	blogRepo  *blog.RepoMock
	usersRepo *users.RepoMock
	tokens    *auth.TokenManager
	codec     *globalid.Codec
	query     *service.QueryService
	mutation  *service.MutationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		blogRepo:  blog.NewRepoMock(),
		usersRepo: users.NewRepoMock(),
		tokens:    auth.NewTokenManager("service-test-secret", 0, 0),
		codec:     globalid.Default(),
	}
	gate := auth.NewGate(h.tokens, h.usersRepo)
	credentials := auth.NewCredentials(h.tokens, h.usersRepo)

	h.query = service.NewQueryService(h.blogRepo, h.usersRepo, gate, h.codec)
	h.mutation = service.NewMutationService(h.blogRepo, h.usersRepo, gate, credentials, h.codec)
	h.mutation.HashPasswordFunc = func(password string) (string, error) {
		return pkg.HashPasswordWithCost(password, bcrypt.MinCost)
	}

	return h
}

// register creates a user and returns a context authenticated as that user.
func (h *harness) register(t *testing.T, username string) (context.Context, *users.User) {
	t.Helper()

	user, err := h.mutation.CreateUser(context.Background(), username, username+"-password")
	require.NoError(t, err)

	token, _, err := h.tokens.Issue(username)
	require.NoError(t, err)

	return auth.WithToken(context.Background(), token), user
}

func (h *harness) blogID(b *blog.Blog) string {
	return h.codec.Encode(globalid.TypeBlog, b.ID)
}

func (h *harness) commentID(c *blog.Comment) string {
	return h.codec.Encode(globalid.TypeComment, c.ID)
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
