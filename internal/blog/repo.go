package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogql/internal/telemetry/tracing"
)

// manual caching of blog posts not needed (at least for this use case):
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddBlog(ctx context.Context, blog *Blog) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddBlog")
	defer span.End()

	if blog.Title == "" || blog.AuthorID == 0 {
		return errors.New("blog title or author empty")
	}

	err := r.db.QueryRow(
		ctx,
		`INSERT INTO blog (title, content, author_id) VALUES ($1, $2, $3) RETURNING id;`,
		blog.Title, blog.Content, blog.AuthorID,
	).Scan(&blog.ID)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}

	log.Tracef("new blog %d: [%s] added", blog.ID, blog.Title)
	return nil
}

func (r *Repo) GetBlog(ctx context.Context, id int) (*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetBlog")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	var b Blog
	err := r.db.QueryRow(
		ctx,
		`SELECT id, title, content, author_id FROM blog WHERE id = $1;`,
		id,
	).Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	return &b, nil
}

// BlogAuthor returns the id of the user owning the blog.
func (r *Repo) BlogAuthor(ctx context.Context, id int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.BlogAuthor")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	var authorID int
	if err := r.db.QueryRow(ctx, `SELECT author_id FROM blog WHERE id = $1;`, id).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBlogNotFound
		}
		return 0, err
	}
	return authorID, nil
}

// ListBlogs returns blogs ordered by id, newest first.
func (r *Repo) ListBlogs(ctx context.Context, filter BlogsFilter) ([]*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.ListBlogs")
	span.SetAttributes(
		attribute.Int("author_id", filter.AuthorID),
		attribute.Int("limit", filter.Limit),
		attribute.Int("offset", filter.Offset),
	)
	defer span.End()

	// NULL limit means no limit in postgres
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, title, content, author_id FROM blog
			WHERE ($1 = 0 OR author_id = $1)
			ORDER BY id DESC
			LIMIT $2
			OFFSET $3;
		`,
		filter.AuthorID, limit, filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []*Blog
	for rows.Next() {
		var b Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID); err != nil {
			return nil, err
		}
		blogs = append(blogs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// UpdateBlog sets title and/or content of a blog owned by authorID.
// A nil field keeps its stored value.
func (r *Repo) UpdateBlog(ctx context.Context, id, authorID int, title, content *string) (*Blog, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.UpdateBlog")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	var b Blog
	err := r.db.QueryRow(
		ctx,
		`
			UPDATE blog
			SET title = COALESCE($1, title), content = COALESCE($2, content)
			WHERE id = $3 AND author_id = $4
			RETURNING id, title, content, author_id;
		`,
		title, content, id, authorID,
	).Scan(&b.ID, &b.Title, &b.Content, &b.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Tracef("blog %d not updated", id)
			return nil, ErrBlogNotFound
		}
		return nil, err
	}

	return &b, nil
}

// DeleteBlog removes a blog owned by authorID, its comments go with it (ON DELETE CASCADE).
func (r *Repo) DeleteBlog(ctx context.Context, id, authorID int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.DeleteBlog")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM blog WHERE id = $1 AND author_id = $2;`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}
	return nil
}
