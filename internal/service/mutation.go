package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogql/internal/auth"
	"github.com/2beens/blogql/internal/blog"
	"github.com/2beens/blogql/internal/globalid"
	"github.com/2beens/blogql/internal/users"
	"github.com/2beens/blogql/pkg"
)

type MutationService struct {
	blogs       BlogStore
	users       UserStore
	gate        auth.ActorResolver
	credentials credentialIssuer
	codec       *globalid.Codec

	// ability to swap the (slow) password hashing (for unit testing)
	HashPasswordFunc func(password string) (string, error)
}

func NewMutationService(
	blogs BlogStore,
	users UserStore,
	gate auth.ActorResolver,
	credentials credentialIssuer,
	codec *globalid.Codec,
) *MutationService {
	return &MutationService{
		blogs:            blogs,
		users:            users,
		gate:             gate,
		credentials:      credentials,
		codec:            codec,
		HashPasswordFunc: pkg.HashPassword,
	}
}

func (s *MutationService) CreateUser(ctx context.Context, username, password string) (*users.User, error) {
	if err := validateNewUser(username, password); err != nil {
		return nil, err
	}

	hash, err := s.HashPasswordFunc(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &users.User{
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Add(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	log.Debugf("new user %d registered: %s", user.ID, user.Username)
	return user, nil
}

func (s *MutationService) CreateBlog(ctx context.Context, title string, content *string) (*blog.Blog, error) {
	return auth.Require(ctx, s.gate, func(actor *users.User) (*blog.Blog, error) {
		if err := validateNewBlog(title); err != nil {
			return nil, err
		}

		b := &blog.Blog{
			Title:    title,
			AuthorID: actor.ID,
		}
		if content != nil {
			b.Content = *content
		}
		if err := s.blogs.AddBlog(ctx, b); err != nil {
			return nil, fmt.Errorf("add blog: %w", err)
		}

		log.Debugf("new blog %d added by %s", b.ID, actor.Username)
		return b, nil
	})
}

// UpdateBlog changes only the given fields. Only the author may update.
func (s *MutationService) UpdateBlog(ctx context.Context, id string, title, content *string) (*blog.Blog, error) {
	return auth.Require(ctx, s.gate, func(actor *users.User) (*blog.Blog, error) {
		key, err := s.codec.DecodeAs(id, globalid.TypeBlog)
		if err != nil {
			return nil, err
		}
		if err := validateBlogUpdate(title); err != nil {
			return nil, err
		}
		if err := requireOwner(ctx, actor, key, s.blogs.BlogAuthor); err != nil {
			return nil, err
		}

		updated, err := s.blogs.UpdateBlog(ctx, key, actor.ID, title, content)
		if err != nil {
			return nil, storeErr(err)
		}

		log.Debugf("blog %d updated by %s", key, actor.Username)
		return updated, nil
	})
}

// DeleteBlog removes a blog together with its comments. Only the author may delete.
func (s *MutationService) DeleteBlog(ctx context.Context, id string) error {
	_, err := auth.Require(ctx, s.gate, func(actor *users.User) (struct{}, error) {
		key, err := s.codec.DecodeAs(id, globalid.TypeBlog)
		if err != nil {
			return struct{}{}, err
		}
		if err := requireOwner(ctx, actor, key, s.blogs.BlogAuthor); err != nil {
			return struct{}{}, err
		}
		if err := s.blogs.DeleteBlog(ctx, key, actor.ID); err != nil {
			return struct{}{}, storeErr(err)
		}

		log.Debugf("blog %d deleted by %s", key, actor.Username)
		return struct{}{}, nil
	})
	return err
}

// CreateComment is open to anonymous callers.
func (s *MutationService) CreateComment(
	ctx context.Context,
	blogID string,
	body string,
	name, email *string,
) (*blog.Comment, error) {
	key, err := s.codec.DecodeAs(blogID, globalid.TypeBlog)
	if err != nil {
		return nil, err
	}

	comment := &blog.Comment{
		BlogID: key,
		Body:   body,
	}
	if name != nil {
		comment.Name = *name
	}
	if email != nil {
		comment.Email = *email
	}
	if err := validateNewComment(comment, email); err != nil {
		return nil, err
	}

	if err := s.blogs.AddComment(ctx, comment); err != nil {
		return nil, storeErr(err)
	}

	return comment, nil
}

// DeleteComment is allowed only to the author of the comment's blog.
func (s *MutationService) DeleteComment(ctx context.Context, id string) error {
	_, err := auth.Require(ctx, s.gate, func(actor *users.User) (struct{}, error) {
		key, err := s.codec.DecodeAs(id, globalid.TypeComment)
		if err != nil {
			return struct{}{}, err
		}
		if err := requireOwner(ctx, actor, key, s.blogs.CommentBlogAuthor); err != nil {
			return struct{}{}, err
		}
		if err := s.blogs.DeleteComment(ctx, key, actor.ID); err != nil {
			return struct{}{}, storeErr(err)
		}

		log.Debugf("comment %d deleted by %s", key, actor.Username)
		return struct{}{}, nil
	})
	return err
}

func (s *MutationService) TokenAuth(ctx context.Context, username, password string) (*auth.TokenResult, error) {
	return s.credentials.Obtain(ctx, username, password)
}

func (s *MutationService) VerifyToken(token string) (*auth.Payload, error) {
	return s.credentials.Verify(token)
}

func (s *MutationService) RefreshToken(token string) (*auth.TokenResult, error) {
	return s.credentials.Refresh(token)
}
