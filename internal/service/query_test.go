package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/service"
)

func TestQueryService_ListBlogs_Paging(t *testing.T) {
	h := newHarness(t)
	aliceCtx, _ := h.register(t, "alice")
	bobCtx, _ := h.register(t, "bob")

	for i := 0; i < 5; i++ {
		_, err := h.mutation.CreateBlog(aliceCtx, fmt.Sprintf("alice %d", i), nil)
		require.NoError(t, err)
	}
	_, err := h.mutation.CreateBlog(bobCtx, "bob 0", nil)
	require.NoError(t, err)

	ctx := context.Background()
	page, err := h.query.ListBlogs(ctx, service.BlogsFilter{PageArgs: service.PageArgs{First: intPtr(2)}})
	require.NoError(t, err)
	require.Len(t, page.Edges, 2)
	assert.Equal(t, "bob 0", page.Edges[0].Node.Title)
	assert.Equal(t, "alice 4", page.Edges[1].Node.Title)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.False(t, page.PageInfo.HasPreviousPage)
	assert.Equal(t, page.Edges[0].Cursor, page.PageInfo.StartCursor)
	assert.Equal(t, page.Edges[1].Cursor, page.PageInfo.EndCursor)

	next, err := h.query.ListBlogs(ctx, service.BlogsFilter{
		PageArgs: service.PageArgs{First: intPtr(10), After: page.PageInfo.EndCursor},
	})
	require.NoError(t, err)
	require.Len(t, next.Edges, 4)
	assert.Equal(t, "alice 3", next.Edges[0].Node.Title)
	assert.False(t, next.PageInfo.HasNextPage)
	assert.True(t, next.PageInfo.HasPreviousPage)

	onlyBob, err := h.query.ListBlogs(ctx, service.BlogsFilter{AuthorUsername: strPtr("bob")})
	require.NoError(t, err)
	require.Len(t, onlyBob.Nodes(), 1)
	assert.Equal(t, "bob 0", onlyBob.Nodes()[0].Title)

	nobody, err := h.query.ListBlogs(ctx, service.BlogsFilter{AuthorUsername: strPtr("nobody")})
	require.NoError(t, err)
	assert.Empty(t, nobody.Edges)

	none, err := h.query.ListBlogs(ctx, service.BlogsFilter{PageArgs: service.PageArgs{First: intPtr(0)}})
	require.NoError(t, err)
	assert.Empty(t, none.Edges)
	assert.True(t, none.PageInfo.HasNextPage)
}

func TestQueryService_ListBlogs_BadArgs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.query.ListBlogs(ctx, service.BlogsFilter{PageArgs: service.PageArgs{First: intPtr(service.MaxPageSize + 1)}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = h.query.ListBlogs(ctx, service.BlogsFilter{PageArgs: service.PageArgs{First: intPtr(-1)}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = h.query.ListBlogs(ctx, service.BlogsFilter{PageArgs: service.PageArgs{After: "garbage"}})
	assert.ErrorIs(t, err, apperr.ErrMalformedIdentifier)

	_, err = h.query.ListBlogs(ctx, service.BlogsFilter{
		PageArgs: service.PageArgs{After: h.codec.Encode(globalid.TypeBlog, 1)},
	})
	assert.ErrorIs(t, err, apperr.ErrMalformedIdentifier)

	for _, position := range []int{globalid.MaxKey, 1<<63 - 1} {
		_, err = h.query.ListBlogs(ctx, service.BlogsFilter{
			PageArgs: service.PageArgs{After: h.codec.Encode(globalid.TypeCursor, position)},
		})
		assert.ErrorIs(t, err, apperr.ErrMalformedIdentifier, "position %d", position)
	}
}

func TestQueryService_GetBlog(t *testing.T) {
	h := newHarness(t)
	aliceCtx, alice := h.register(t, "alice")

	b, err := h.mutation.CreateBlog(aliceCtx, "Hello", strPtr("World"))
	require.NoError(t, err)
	first, err := h.mutation.CreateComment(context.Background(), h.blogID(b), "first", nil, nil)
	require.NoError(t, err)
	second, err := h.mutation.CreateComment(context.Background(), h.blogID(b), "second", nil, nil)
	require.NoError(t, err)

	_, err = h.query.GetBlog(context.Background(), h.blogID(b))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	detail, err := h.query.GetBlog(aliceCtx, h.blogID(b))
	require.NoError(t, err)
	assert.Equal(t, "Hello", detail.Title)
	assert.Equal(t, alice.ID, detail.AuthorID)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, first.ID, detail.Comments[0].ID)
	assert.Equal(t, second.ID, detail.Comments[1].ID)

	_, err = h.query.GetBlog(aliceCtx, "not base64!")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.query.GetBlog(aliceCtx, h.codec.Encode(globalid.TypeBlog, 12345))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQueryService_Comments(t *testing.T) {
	h := newHarness(t)
	aliceCtx, _ := h.register(t, "alice")

	b1, err := h.mutation.CreateBlog(aliceCtx, "one", nil)
	require.NoError(t, err)
	b2, err := h.mutation.CreateBlog(aliceCtx, "two", nil)
	require.NoError(t, err)
	for _, b := range []string{h.blogID(b1), h.blogID(b2), h.blogID(b1)} {
		_, err := h.mutation.CreateComment(context.Background(), b, "body", nil, nil)
		require.NoError(t, err)
	}

	_, err = h.query.ListComments(context.Background(), service.PageArgs{})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	all, err := h.query.ListComments(aliceCtx, service.PageArgs{})
	require.NoError(t, err)
	assert.Len(t, all.Edges, 3)
	assert.False(t, all.PageInfo.HasNextPage)

	forB1, err := h.query.ListCommentsForBlog(context.Background(), h.blogID(b1))
	require.NoError(t, err)
	assert.Len(t, forB1, 2)

	forMissing, err := h.query.ListCommentsForBlog(context.Background(), h.codec.Encode(globalid.TypeBlog, 777))
	require.NoError(t, err)
	assert.NotNil(t, forMissing)
	assert.Empty(t, forMissing)

	_, err = h.query.ListCommentsForBlog(context.Background(), "###")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// key 0 must not be read as "any blog"
	for _, key := range []int{0, -1} {
		leaked, err := h.query.ListCommentsForBlog(context.Background(), h.codec.Encode(globalid.TypeBlog, key))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Empty(t, leaked)
	}

	none, err := h.query.BlogComments(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueryService_Users(t *testing.T) {
	h := newHarness(t)
	aliceCtx, alice := h.register(t, "alice")
	h.register(t, "bob")

	_, err := h.query.CurrentUser(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	me, err := h.query.CurrentUser(aliceCtx)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, me.ID)

	all, err := h.query.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)

	got, err := h.query.User(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = h.query.User(context.Background(), 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.mutation.CreateBlog(aliceCtx, "mine", nil)
	require.NoError(t, err)
	blogs, err := h.query.AuthorBlogs(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, blogs, 1)
}
