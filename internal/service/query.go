package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/users"
)

type BlogsFilter struct {
	// AuthorUsername, when set, keeps only blogs of that exact username
	AuthorUsername *string
	PageArgs
}

// BlogDetail is a blog with its comments attached, oldest comment first.
type BlogDetail struct {
	*blog.Blog
	Comments []*blog.Comment
}

type QueryService struct {
	blogs BlogStore
	users UserStore
	gate  auth.ActorResolver
	codec *globalid.Codec
}

func NewQueryService(
	blogs BlogStore,
	users UserStore,
	gate auth.ActorResolver,
	codec *globalid.Codec,
) *QueryService {
	return &QueryService{
		blogs: blogs,
		users: users,
		gate:  gate,
		codec: codec,
	}
}

// ListBlogs returns blogs newest first. Public.
func (s *QueryService) ListBlogs(ctx context.Context, filter BlogsFilter) (*Connection[*blog.Blog], error) {
	w, err := resolveWindow(s.codec, filter.PageArgs)
	if err != nil {
		return nil, err
	}

	storeFilter := blog.BlogsFilter{
		Limit:  w.storeLimit(),
		Offset: w.offset,
	}
	if filter.AuthorUsername != nil {
		author, err := s.users.GetByUsername(ctx, *filter.AuthorUsername)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return newConnection[*blog.Blog](s.codec, w, nil), nil
			}
			return nil, fmt.Errorf("get blogs author: %w", err)
		}
		storeFilter.AuthorID = author.ID
	}

	blogs, err := s.blogs.ListBlogs(ctx, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	return newConnection(s.codec, w, blogs), nil
}

// GetBlog requires an authenticated actor. Any id that does not lead to
// a stored blog is reported as NotFound.
func (s *QueryService) GetBlog(ctx context.Context, id string) (*BlogDetail, error) {
	return auth.Require(ctx, s.gate, func(*users.User) (*BlogDetail, error) {
		key, err := s.codec.DecodeAs(id, globalid.TypeBlog)
		if err != nil {
			log.Tracef("get blog: undecodable id %q: %s", id, err)
			return nil, fmt.Errorf("%w: blog %s", apperr.ErrNotFound, id)
		}

		b, err := s.blogs.GetBlog(ctx, key)
		if err != nil {
			return nil, storeErr(err)
		}

		comments, err := s.blogs.ListComments(ctx, blog.CommentsFilter{BlogID: b.ID})
		if err != nil {
			return nil, fmt.Errorf("list blog comments: %w", err)
		}

		return &BlogDetail{
			Blog:     b,
			Comments: comments,
		}, nil
	})
}

// ListUsers is public and returns every registered user.
func (s *QueryService) ListUsers(ctx context.Context) ([]*users.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if all == nil {
		all = []*users.User{}
	}
	return all, nil
}

func (s *QueryService) CurrentUser(ctx context.Context) (*users.User, error) {
	return s.gate.Actor(ctx)
}

// ListComments returns all comments, oldest first. Requires an authenticated actor.
func (s *QueryService) ListComments(ctx context.Context, args PageArgs) (*Connection[*blog.Comment], error) {
	return auth.Require(ctx, s.gate, func(*users.User) (*Connection[*blog.Comment], error) {
		w, err := resolveWindow(s.codec, args)
		if err != nil {
			return nil, err
		}

		comments, err := s.blogs.ListComments(ctx, blog.CommentsFilter{
			Limit:  w.storeLimit(),
			Offset: w.offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}

		return newConnection(s.codec, w, comments), nil
	})
}

// ListCommentsForBlog is public. An undecodable id is NotFound, while a
// well formed id of a blog without comments (or of a deleted blog) gives
// an empty list.
func (s *QueryService) ListCommentsForBlog(ctx context.Context, id string) ([]*blog.Comment, error) {
	key, err := s.codec.DecodeAs(id, globalid.TypeBlog)
	if err != nil {
		return nil, fmt.Errorf("%w: blog %s", apperr.ErrNotFound, id)
	}
	return s.BlogComments(ctx, key)
}

func (s *QueryService) BlogComments(ctx context.Context, blogID int) ([]*blog.Comment, error) {
	// a zero blog id would lift the filter in the store
	if blogID <= 0 {
		return []*blog.Comment{}, nil
	}
	comments, err := s.blogs.ListComments(ctx, blog.CommentsFilter{BlogID: blogID})
	if err != nil {
		return nil, fmt.Errorf("list comments of blog %d: %w", blogID, err)
	}
	if comments == nil {
		comments = []*blog.Comment{}
	}
	return comments, nil
}

// AuthorBlogs returns the blogs of one author, newest first.
func (s *QueryService) AuthorBlogs(ctx context.Context, authorID int) ([]*blog.Blog, error) {
	blogs, err := s.blogs.ListBlogs(ctx, blog.BlogsFilter{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("list blogs of author %d: %w", authorID, err)
	}
	if blogs == nil {
		blogs = []*blog.Blog{}
	}
	return blogs, nil
}

func (s *QueryService) User(ctx context.Context, id int) (*users.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}
