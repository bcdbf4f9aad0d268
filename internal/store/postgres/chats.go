package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type chatRepo struct{ tx pgx.Tx }

const chatColumns = `id, user_id, title, archived, pinned, forked, version, pinned_at, created_at, updated_at`

func scanChat(row pgx.Row) (*domain.Chat, error) {
	var c domain.Chat
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Archived, &c.Pinned, &c.Forked,
		&c.Version, &c.PinnedAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "chat not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r chatRepo) Find(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.tx.QueryRow(ctx, `select `+chatColumns+` from chats where id = $1`, id)
	return scanChat(row)
}

func (r chatRepo) FindForUpdate(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.tx.QueryRow(ctx, `select `+chatColumns+` from chats where id = $1 for update`, id)
	return scanChat(row)
}

func (r chatRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Chat, error) {
	rows, err := r.tx.Query(ctx, `select `+chatColumns+` from chats where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r chatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	rows, err := r.tx.Query(ctx, `select `+chatColumns+` from chats where user_id = $1 order by created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r chatRepo) Create(ctx context.Context, c *domain.Chat) error {
	_, err := r.tx.Exec(ctx, `insert into chats
		(id, user_id, title, archived, pinned, forked, version, pinned_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.UserID, c.Title, c.Archived, c.Pinned, c.Forked, c.Version, c.PinnedAt, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r chatRepo) Update(ctx context.Context, c *domain.Chat) error {
	_, err := r.tx.Exec(ctx, `update chats set
		title = $2, archived = $3, pinned = $4, forked = $5, version = $6, pinned_at = $7, updated_at = $8
		where id = $1`,
		c.ID, c.Title, c.Archived, c.Pinned, c.Forked, c.Version, c.PinnedAt, c.UpdatedAt)
	return err
}

func (r chatRepo) Delete(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `delete from chats where id = $1`, id)
	return err
}
