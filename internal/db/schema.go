package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Schema is idempotent, it can be applied on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS public.app_user
(
    id          SERIAL PRIMARY KEY,
    username    VARCHAR(150) NOT NULL UNIQUE,
    password    VARCHAR(128) NOT NULL,
    first_name  VARCHAR(150) NOT NULL DEFAULT '',
    last_name   VARCHAR(150) NOT NULL DEFAULT '',
    email       VARCHAR(254) NOT NULL DEFAULT '',
    is_active   BOOLEAN      NOT NULL DEFAULT TRUE,
    date_joined TIMESTAMPTZ  NOT NULL DEFAULT now(),
    last_login  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS public.blog
(
    id        SERIAL PRIMARY KEY,
    title     VARCHAR(80) NOT NULL,
    content   TEXT        NOT NULL DEFAULT '',
    author_id INTEGER     NOT NULL REFERENCES public.app_user (id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS ix_blog_author_id ON public.blog (author_id);

CREATE TABLE IF NOT EXISTS public.comment
(
    id         SERIAL PRIMARY KEY,
    blog_id    INTEGER      NOT NULL REFERENCES public.blog (id) ON DELETE CASCADE,
    name       VARCHAR(80)  NOT NULL DEFAULT '',
    email      VARCHAR(254) NOT NULL DEFAULT '',
    body       TEXT         NOT NULL,
    created_on TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ix_comment_blog_id_created_on ON public.comment (blog_id, created_on);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Debugln("db schema applied")
	return nil
}
