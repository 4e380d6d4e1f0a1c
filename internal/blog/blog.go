package blog

import (
	"errors"
	"time"
)

const TitleMaxLength = 80

var (
	ErrBlogNotFound    = errors.New("blog not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type Blog struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID int    `json:"author_id"`
}

type Comment struct {
	ID        int       `json:"id"`
	BlogID    int       `json:"blog_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	CreatedOn time.Time `json:"created_on"`
}

// BlogsFilter narrows a blogs listing. Zero values mean "no restriction".
type BlogsFilter struct {
	AuthorID int
	Limit    int
	Offset   int
}

// CommentsFilter narrows a comments listing. Zero values mean "no restriction".
type CommentsFilter struct {
	BlogID int
	Limit  int
	Offset int
}
