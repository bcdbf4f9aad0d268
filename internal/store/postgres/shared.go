package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type sharedChatRepo struct{ tx pgx.Tx }

func (r sharedChatRepo) Create(ctx context.Context, sc *domain.SharedChat, messages []*domain.SharedMessage) error {
	_, err := r.tx.Exec(ctx, `insert into shared_chats (id, chat_id, user_id, title, created_at)
		values ($1, $2, $3, $4, $5)`,
		sc.ID, sc.ChatID, sc.UserID, sc.Title, sc.CreatedAt)
	if err != nil {
		return err
	}

	for _, m := range messages {
		_, err := r.tx.Exec(ctx, `insert into shared_messages
			(id, shared_chat_id, role, body, reasoning, created_at)
			values ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.SharedChatID, m.Role, m.Body, m.Reasoning, m.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r sharedChatRepo) Find(ctx context.Context, id string) (*domain.SharedChat, []*domain.SharedMessage, error) {
	row := r.tx.QueryRow(ctx, `select id, chat_id, user_id, title, created_at from shared_chats where id = $1`, id)

	var sc domain.SharedChat
	err := row.Scan(&sc.ID, &sc.ChatID, &sc.UserID, &sc.Title, &sc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, errorx.New(errorx.NotFound, "shared chat not found")
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.tx.Query(ctx, `select id, shared_chat_id, role, body, reasoning, created_at
		from shared_messages where shared_chat_id = $1 order by created_at`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var messages []*domain.SharedMessage
	for rows.Next() {
		var m domain.SharedMessage
		if err := rows.Scan(&m.ID, &m.SharedChatID, &m.Role, &m.Body, &m.Reasoning, &m.CreatedAt); err != nil {
			return nil, nil, err
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return &sc, messages, nil
}

func (r sharedChatRepo) Delete(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `delete from shared_chats where id = $1`, id)
	return err
}
