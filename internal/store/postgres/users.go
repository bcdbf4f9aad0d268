package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type userRepo struct{ tx pgx.Tx }

func (r userRepo) Find(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(ctx, `select id, email, password_hash, created_at, updated_at
		from users where id = $1`, id)
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(ctx, `select id, email, password_hash, created_at, updated_at
		from users where email = $1`, email)
}

func (r userRepo) scanOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	row := r.tx.QueryRow(ctx, sql, arg)
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.tx.Exec(ctx, `insert into users (id, email, password_hash, created_at, updated_at)
		values ($1, $2, $3, $4, $5)`, u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return err
}
