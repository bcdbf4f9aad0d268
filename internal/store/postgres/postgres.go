// Package postgres is the pgx-backed implementation of store.Store: the
// transactional relational store holding users, chats, messages, active
// model selections, encrypted API keys, replicache sync state and frozen
// shared-chat snapshots.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Scott-fo/t3-clone/internal/store"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	pgTx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	tx := &txHandle{pgTx}
	if err := fn(ctx, tx); err != nil {
		if rbErr := pgTx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
