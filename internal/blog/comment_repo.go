package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogql/internal/telemetry/tracing"
	"github.com/2beens/blogql/pkg"
)

func (r *Repo) AddComment(ctx context.Context, comment *Comment) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddComment")
	span.SetAttributes(attribute.Int("blog_id", comment.BlogID))
	defer span.End()

	if comment.Body == "" {
		return errors.New("comment body empty")
	}

	if comment.CreatedOn.IsZero() {
		comment.CreatedOn = time.Now()
	}

	err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO comment (blog_id, name, email, body, created_on)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;
		`,
		comment.BlogID, comment.Name, comment.Email, comment.Body, comment.CreatedOn,
	).Scan(&comment.ID)
	if err != nil {
		// blog removed in the meantime
		if pkg.IsForeignKeyViolationError(err) {
			return ErrBlogNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *Repo) GetComment(ctx context.Context, id int) (*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetComment")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	row := r.db.QueryRow(
		ctx,
		`SELECT id, blog_id, name, email, body, created_on FROM comment WHERE id = $1;`,
		id,
	)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

// CommentBlogAuthor returns the id of the author of the blog the comment belongs to.
func (r *Repo) CommentBlogAuthor(ctx context.Context, commentID int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.CommentBlogAuthor")
	span.SetAttributes(attribute.Int("comment_id", commentID))
	defer span.End()

	var authorID int
	err := r.db.QueryRow(
		ctx,
		`
			SELECT b.author_id FROM comment c
			JOIN blog b ON b.id = c.blog_id
			WHERE c.id = $1;
		`,
		commentID,
	).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}
	return authorID, nil
}

// DeleteComment removes a comment, given that its blog is owned by blogAuthorID.
func (r *Repo) DeleteComment(ctx context.Context, id, blogAuthorID int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.DeleteComment")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tag, err := r.db.Exec(
		ctx,
		`
			DELETE FROM comment c
			USING blog b
			WHERE c.id = $1 AND c.blog_id = b.id AND b.author_id = $2;
		`,
		id, blogAuthorID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListComments returns comments in creation order, oldest first.
func (r *Repo) ListComments(ctx context.Context, filter CommentsFilter) ([]*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.ListComments")
	span.SetAttributes(
		attribute.Int("blog_id", filter.BlogID),
		attribute.Int("limit", filter.Limit),
		attribute.Int("offset", filter.Offset),
	)
	defer span.End()

	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, blog_id, name, email, body, created_on FROM comment
			WHERE ($1 = 0 OR blog_id = $1)
			ORDER BY created_on, id
			LIMIT $2
			OFFSET $3;
		`,
		filter.BlogID, limit, filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.BlogID, &c.Name, &c.Email, &c.Body, &c.CreatedOn); err != nil {
		return nil, err
	}
	return &c, nil
}
