package blog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RepoMock is an in-memory Repo used by tests of the packages above.
// It honours the same ownership and cascade rules as the postgres schema.
type RepoMock struct {
	Posts    map[int]*Blog
	Comments map[int]*Comment

	nextBlogID    int
	nextCommentID int
	mutex         sync.Mutex
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Posts:         make(map[int]*Blog),
		Comments:      make(map[int]*Comment),
		nextBlogID:    1,
		nextCommentID: 1,
	}
}

func (r *RepoMock) PostsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Posts)
}

func (r *RepoMock) CommentsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Comments)
}

func (r *RepoMock) AddBlog(_ context.Context, blog *Blog) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	blog.ID = r.nextBlogID
	r.nextBlogID++
	stored := *blog
	r.Posts[blog.ID] = &stored
	return nil
}

func (r *RepoMock) GetBlog(_ context.Context, id int) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	b, ok := r.Posts[id]
	if !ok {
		return nil, ErrBlogNotFound
	}
	blog := *b
	return &blog, nil
}

func (r *RepoMock) BlogAuthor(_ context.Context, id int) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	b, ok := r.Posts[id]
	if !ok {
		return 0, ErrBlogNotFound
	}
	return b.AuthorID, nil
}

func (r *RepoMock) ListBlogs(_ context.Context, filter BlogsFilter) ([]*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var blogs []*Blog
	for _, b := range r.Posts {
		if filter.AuthorID != 0 && b.AuthorID != filter.AuthorID {
			continue
		}
		blog := *b
		blogs = append(blogs, &blog)
	}
	sort.Slice(blogs, func(i, j int) bool {
		return blogs[i].ID > blogs[j].ID
	})

	return page(blogs, filter.Limit, filter.Offset), nil
}

func (r *RepoMock) UpdateBlog(_ context.Context, id, authorID int, title, content *string) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	b, ok := r.Posts[id]
	if !ok || b.AuthorID != authorID {
		return nil, ErrBlogNotFound
	}
	if title != nil {
		b.Title = *title
	}
	if content != nil {
		b.Content = *content
	}
	blog := *b
	return &blog, nil
}

func (r *RepoMock) DeleteBlog(_ context.Context, id, authorID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	b, ok := r.Posts[id]
	if !ok || b.AuthorID != authorID {
		return ErrBlogNotFound
	}
	delete(r.Posts, id)
	for cid, c := range r.Comments {
		if c.BlogID == id {
			delete(r.Comments, cid)
		}
	}
	return nil
}

func (r *RepoMock) AddComment(_ context.Context, comment *Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[comment.BlogID]; !ok {
		return ErrBlogNotFound
	}
	if comment.CreatedOn.IsZero() {
		comment.CreatedOn = time.Now()
	}
	comment.ID = r.nextCommentID
	r.nextCommentID++
	stored := *comment
	r.Comments[comment.ID] = &stored
	return nil
}

func (r *RepoMock) GetComment(_ context.Context, id int) (*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.Comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	comment := *c
	return &comment, nil
}

func (r *RepoMock) CommentBlogAuthor(_ context.Context, commentID int) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.Comments[commentID]
	if !ok {
		return 0, ErrCommentNotFound
	}
	b, ok := r.Posts[c.BlogID]
	if !ok {
		return 0, ErrCommentNotFound
	}
	return b.AuthorID, nil
}

func (r *RepoMock) DeleteComment(_ context.Context, id, blogAuthorID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.Comments[id]
	if !ok {
		return ErrCommentNotFound
	}
	if b, ok := r.Posts[c.BlogID]; !ok || b.AuthorID != blogAuthorID {
		return ErrCommentNotFound
	}
	delete(r.Comments, id)
	return nil
}

func (r *RepoMock) ListComments(_ context.Context, filter CommentsFilter) ([]*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var comments []*Comment
	for _, c := range r.Comments {
		if filter.BlogID != 0 && c.BlogID != filter.BlogID {
			continue
		}
		comment := *c
		comments = append(comments, &comment)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedOn.Equal(comments[j].CreatedOn) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedOn.Before(comments[j].CreatedOn)
	})

	return page(comments, filter.Limit, filter.Offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
