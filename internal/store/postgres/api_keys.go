package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type apiKeyRepo struct{ tx pgx.Tx }

const apiKeyColumns = `id, user_id, provider, encrypted_key, created_at, updated_at`

func scanApiKey(row pgx.Row) (*domain.ApiKey, error) {
	var k domain.ApiKey
	err := row.Scan(&k.ID, &k.UserID, &k.Provider, &k.EncryptedKey, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "api key not found")
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r apiKeyRepo) FindForProvider(ctx context.Context, userID string, provider domain.ProviderID) (*domain.ApiKey, error) {
	row := r.tx.QueryRow(ctx, `select `+apiKeyColumns+` from api_keys where user_id = $1 and provider = $2`,
		userID, provider)
	return scanApiKey(row)
}

func (r apiKeyRepo) ListForUser(ctx context.Context, userID string) ([]*domain.ApiKey, error) {
	rows, err := r.tx.Query(ctx, `select `+apiKeyColumns+` from api_keys where user_id = $1 order by created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ApiKey
	for rows.Next() {
		k, err := scanApiKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r apiKeyRepo) Find(ctx context.Context, id string) (*domain.ApiKey, error) {
	row := r.tx.QueryRow(ctx, `select `+apiKeyColumns+` from api_keys where id = $1`, id)
	return scanApiKey(row)
}

func (r apiKeyRepo) Create(ctx context.Context, k *domain.ApiKey) error {
	_, err := r.tx.Exec(ctx, `insert into api_keys
		(id, user_id, provider, encrypted_key, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)
		on conflict (user_id, provider) do update set
			encrypted_key = excluded.encrypted_key,
			updated_at = excluded.updated_at`,
		k.ID, k.UserID, k.Provider, k.EncryptedKey, k.CreatedAt, k.UpdatedAt)
	return err
}

func (r apiKeyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `delete from api_keys where id = $1`, id)
	return err
}
