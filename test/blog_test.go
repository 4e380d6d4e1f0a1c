//go:build integration_test || all_tests

package test

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestBlogAndComments() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	author := "author_" + gofakeit.DigitN(8)
	other := "other_" + gofakeit.DigitN(8)
	authorToken := registerAndLogin(ctx, t, author, gofakeit.Password(true, true, true, false, false, 12))
	otherToken := registerAndLogin(ctx, t, other, gofakeit.Password(true, true, true, false, false, 12))

	title := gofakeit.LetterN(20)
	resp := doGraphQL(ctx, t, authorToken, `mutation($t: String!, $c: String) {
		createBlog(title: $t, content: $c) { success blog { id title author { username } } }
	}`, map[string]interface{}{"t": title, "c": gofakeit.Sentence(10)})
	require.Empty(t, resp.Errors)
	assert.Equal(t, author, dig(resp.Data, "createBlog", "blog", "author", "username"))
	blogID := dig(resp.Data, "createBlog", "blog", "id").(string)

	// anonymous comments are allowed
	commentIDs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		resp = doGraphQL(ctx, t, "", `mutation($b: ID!, $body: String!, $e: String) {
			createComment(blogId: $b, body: $body, email: $e) { success comment { id body } }
		}`, map[string]interface{}{"b": blogID, "body": gofakeit.Sentence(5), "e": gofakeit.Email()})
		require.Empty(t, resp.Errors)
		commentIDs = append(commentIDs, dig(resp.Data, "createComment", "comment", "id").(string))
	}

	resp = doGraphQL(ctx, t, "", `query($id: ID!) { commentsForBlog(id: $id) { id } }`,
		map[string]interface{}{"id": blogID})
	require.Empty(t, resp.Errors)
	assert.Len(t, resp.Data["commentsForBlog"], 3)

	// only the blog author may remove comments
	resp = doGraphQL(ctx, t, otherToken, `mutation($id: ID!) { deleteComment(commentId: $id) { success } }`,
		map[string]interface{}{"id": commentIDs[0]})
	assert.Equal(t, "PERMISSION_DENIED", resp.code())

	resp = doGraphQL(ctx, t, authorToken, `mutation($id: ID!) { deleteComment(commentId: $id) { success } }`,
		map[string]interface{}{"id": commentIDs[0]})
	require.Empty(t, resp.Errors)
	assert.Equal(t, true, dig(resp.Data, "deleteComment", "success"))

	resp = doGraphQL(ctx, t, otherToken, `mutation($id: ID!, $t: String) {
		updateBlog(id: $id, title: $t) { success }
	}`, map[string]interface{}{"id": blogID, "t": "hijacked"})
	assert.Equal(t, "PERMISSION_DENIED", resp.code())

	var (
		storedBlogID int
		storedTitle  string
	)
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT b.id, b.title FROM blog b JOIN app_user u ON u.id = b.author_id WHERE u.username = $1`, author,
	).Scan(&storedBlogID, &storedTitle))
	assert.Equal(t, title, storedTitle)

	var comments int
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM comment WHERE blog_id = $1`, storedBlogID,
	).Scan(&comments))
	require.Equal(t, 2, comments)

	// deleting the blog removes its remaining comments
	resp = doGraphQL(ctx, t, authorToken, `mutation($id: ID!) { deleteBlog(id: $id) { success } }`,
		map[string]interface{}{"id": blogID})
	require.Empty(t, resp.Errors)

	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM comment WHERE blog_id = $1`, storedBlogID,
	).Scan(&comments))
	assert.Zero(t, comments)

	resp = doGraphQL(ctx, t, authorToken, `query($id: ID!) { blog(id: $id) { id } }`,
		map[string]interface{}{"id": blogID})
	assert.Equal(t, "NOT_FOUND", resp.code())

	resp = doGraphQL(ctx, t, "", `query($id: ID!) { commentsForBlog(id: $id) { id } }`,
		map[string]interface{}{"id": blogID})
	require.Empty(t, resp.Errors)
	assert.Empty(t, resp.Data["commentsForBlog"])
}

func (s *IntegrationTestSuite) TestDuplicateUsername() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	username := "dup_" + gofakeit.DigitN(8)
	registerAndLogin(ctx, t, username, "first-password")

	resp := doGraphQL(ctx, t, "", `mutation($u: String!, $p: String!) {
		createUser(username: $u, password: $p) { success }
	}`, map[string]interface{}{"u": username, "p": "second-password"})
	assert.Equal(t, "DUPLICATE_USERNAME", resp.code())
	assert.Nil(t, resp.Data["createUser"])

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM app_user WHERE username = $1`, username,
	).Scan(&count))
	assert.Equal(t, 1, count)

	// the stored password is a bcrypt hash, never the plain text
	var hash string
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT password FROM app_user WHERE username = $1`, username,
	).Scan(&hash))
	assert.NotEqual(t, "first-password", hash)
	assert.Contains(t, hash, "$2a$")
}

func (s *IntegrationTestSuite) TestTokenLifecycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	username := "tok_" + gofakeit.DigitN(8)
	token := registerAndLogin(ctx, t, username, "token-password")

	resp := doGraphQL(ctx, t, "", `mutation($t: String!) { verifyToken(token: $t) { payload { username } } }`,
		map[string]interface{}{"t": token})
	require.Empty(t, resp.Errors)
	assert.Equal(t, username, dig(resp.Data, "verifyToken", "payload", "username"))

	resp = doGraphQL(ctx, t, "", `mutation($t: String!) { refreshToken(token: $t) { token payload { username } } }`,
		map[string]interface{}{"t": token})
	require.Empty(t, resp.Errors)
	assert.NotEmpty(t, dig(resp.Data, "refreshToken", "token"))

	var lastLogin *time.Time
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT last_login FROM app_user WHERE username = $1`, username,
	).Scan(&lastLogin))
	assert.NotNil(t, lastLogin)

	resp = doGraphQL(ctx, t, "", `mutation { verifyToken(token: "garbage") { payload { username } } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
}
