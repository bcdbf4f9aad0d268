package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type activeModelRepo struct{ tx pgx.Tx }

const activeModelColumns = `user_id, provider, model, effort, version, created_at, updated_at`

func scanActiveModel(row pgx.Row) (*domain.ActiveModel, error) {
	var m domain.ActiveModel
	var effort *string
	err := row.Scan(&m.UserID, &m.Provider, &m.Model, &effort, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "active model not found")
	}
	if err != nil {
		return nil, err
	}
	if effort != nil {
		e := domain.ReasoningEffort(*effort)
		m.Effort = &e
	}
	return &m, nil
}

func (r activeModelRepo) FindForUser(ctx context.Context, userID string) (*domain.ActiveModel, error) {
	row := r.tx.QueryRow(ctx, `select `+activeModelColumns+` from active_models where user_id = $1`, userID)
	return scanActiveModel(row)
}

func (r activeModelRepo) FindByIDs(ctx context.Context, userIDs []string) ([]*domain.ActiveModel, error) {
	rows, err := r.tx.Query(ctx, `select `+activeModelColumns+` from active_models where user_id = any($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ActiveModel
	for rows.Next() {
		m, err := scanActiveModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r activeModelRepo) Upsert(ctx context.Context, m *domain.ActiveModel) error {
	var effort *string
	if m.Effort != nil {
		e := string(*m.Effort)
		effort = &e
	}
	_, err := r.tx.Exec(ctx, `insert into active_models
		(user_id, provider, model, effort, version, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
		on conflict (user_id) do update set
			provider = excluded.provider,
			model = excluded.model,
			effort = excluded.effort,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		m.UserID, m.Provider, m.Model, effort, m.Version, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r activeModelRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.tx.Exec(ctx, `delete from active_models where user_id = $1`, userID)
	return err
}
