// Package cache stores CVR snapshots under "cvr/<uuid>" keys, no TTL — a
// stale snapshot just forces a bigger patch on the next pull, it never
// causes incorrect sync (§4.4).
package cache

import (
	"context"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

type CvrCache interface {
	Get(ctx context.Context, id string) (*domain.CvrRecord, bool, error)
	Put(ctx context.Context, id string, rec *domain.CvrRecord) error
}
