package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type sessionRepo struct{ tx pgx.Tx }

const sessionColumns = `id, user_id, expired_at, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ExpiredAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.Unauthorized, "session not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r sessionRepo) Find(ctx context.Context, id string) (*domain.Session, error) {
	row := r.tx.QueryRow(ctx, `select `+sessionColumns+` from sessions where id = $1 and expired_at is null`, id)
	return scanSession(row)
}

func (r sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.tx.Exec(ctx, `insert into sessions (id, user_id, expired_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.ExpiredAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r sessionRepo) Expire(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `update sessions set expired_at = now() where id = $1`, id)
	return err
}
