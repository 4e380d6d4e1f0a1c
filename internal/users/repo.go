package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogql/internal/telemetry/tracing"
	"github.com/2beens/blogql/pkg"
)

const userColumns = `id, username, password, first_name, last_name, email, is_active, date_joined, last_login`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user *User) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.Add")
	defer span.End()

	if user.Username == "" || user.PasswordHash == "" {
		return errors.New("username or password hash empty")
	}

	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now()
	}

	err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO app_user (username, password, first_name, last_name, email, is_active, date_joined)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;
		`,
		user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Email, user.IsActive, user.DateJoined,
	).Scan(&user.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	log.Tracef("user %d [%s] added", user.ID, user.Username)
	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.Get")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1;`, id)
	return scanUser(row)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.GetByUsername")
	defer span.End()

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE username = $1;`, username)
	return scanUser(row)
}

func (r *Repo) List(ctx context.Context) ([]*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.List")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM app_user ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repo) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.SetLastLogin")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tag, err := r.db.Exec(ctx, `UPDATE app_user SET last_login = $1 WHERE id = $2;`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.IsActive,
		&u.DateJoined,
		&u.LastLogin,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
