package service

import (
	"context"

	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/users"
)

// BlogStore persists blogs and their comments.
type BlogStore interface {
	AddBlog(ctx context.Context, blog *blog.Blog) error
	GetBlog(ctx context.Context, id int) (*blog.Blog, error)
	BlogAuthor(ctx context.Context, id int) (int, error)
	ListBlogs(ctx context.Context, filter blog.BlogsFilter) ([]*blog.Blog, error)
	UpdateBlog(ctx context.Context, id, authorID int, title, content *string) (*blog.Blog, error)
	DeleteBlog(ctx context.Context, id, authorID int) error

	AddComment(ctx context.Context, comment *blog.Comment) error
	CommentBlogAuthor(ctx context.Context, commentID int) (int, error)
	DeleteComment(ctx context.Context, id, blogAuthorID int) error
	ListComments(ctx context.Context, filter blog.CommentsFilter) ([]*blog.Comment, error)
}

type UserStore interface {
	Add(ctx context.Context, user *users.User) error
	Get(ctx context.Context, id int) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
	List(ctx context.Context) ([]*users.User, error)
}

type credentialIssuer interface {
	Obtain(ctx context.Context, username, password string) (*auth.TokenResult, error)
	Verify(token string) (*auth.Payload, error)
	Refresh(token string) (*auth.TokenResult, error)
}

var (
	_ BlogStore        = (*blog.Repo)(nil)
	_ BlogStore        = (*blog.RepoMock)(nil)
	_ UserStore        = (*users.Repo)(nil)
	_ UserStore        = (*users.RepoMock)(nil)
	_ credentialIssuer = (*auth.Credentials)(nil)
)
