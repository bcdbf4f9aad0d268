package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type messageRepo struct{ tx pgx.Tx }

const messageColumns = `id, chat_id, user_id, role, body, reasoning, version, created_at, updated_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Role, &m.Body, &m.Reasoning,
		&m.Version, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "message not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r messageRepo) Find(ctx context.Context, id string) (*domain.Message, error) {
	row := r.tx.QueryRow(ctx, `select `+messageColumns+` from messages where id = $1`, id)
	return scanMessage(row)
}

func (r messageRepo) FindForUpdate(ctx context.Context, id string) (*domain.Message, error) {
	row := r.tx.QueryRow(ctx, `select `+messageColumns+` from messages where id = $1 for update`, id)
	return scanMessage(row)
}

func (r messageRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Message, error) {
	rows, err := r.tx.Query(ctx, `select `+messageColumns+` from messages where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r messageRepo) ListForChat(ctx context.Context, chatID string) ([]*domain.Message, error) {
	rows, err := r.tx.Query(ctx, `select `+messageColumns+` from messages where chat_id = $1 order by created_at`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r messageRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	rows, err := r.tx.Query(ctx, `select `+messageColumns+` from messages where user_id = $1 order by created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create is insert-or-ignore on id: a replayed mutation for an existing
// message id is a silent no-op, matching §3's Message invariant.
func (r messageRepo) Create(ctx context.Context, m *domain.Message) (bool, error) {
	tag, err := r.tx.Exec(ctx, `insert into messages
		(id, chat_id, user_id, role, body, reasoning, version, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict (id) do nothing`,
		m.ID, m.ChatID, m.UserID, m.Role, m.Body, m.Reasoning, m.Version, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r messageRepo) Update(ctx context.Context, m *domain.Message) error {
	_, err := r.tx.Exec(ctx, `update messages set
		body = $2, reasoning = $3, version = $4, updated_at = $5
		where id = $1`,
		m.ID, m.Body, m.Reasoning, m.Version, m.UpdatedAt)
	return err
}

func (r messageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `delete from messages where id = $1`, id)
	return err
}
