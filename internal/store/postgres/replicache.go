package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type replicacheGroupRepo struct{ tx pgx.Tx }

// FindOrCreate enforces group ownership: a group id that already exists
// under a different user is an Unauthorized error, never silently adopted.
func (r replicacheGroupRepo) FindOrCreate(ctx context.Context, groupID, userID string) (*domain.ReplicacheClientGroup, error) {
	row := r.tx.QueryRow(ctx, `select id, user_id, cvr_version from replicache_client_groups where id = $1`, groupID)

	var g domain.ReplicacheClientGroup
	err := row.Scan(&g.ID, &g.UserID, &g.CvrVersion)
	if err == nil {
		if g.UserID != userID {
			return nil, errorx.New(errorx.Unauthorized, "client group owned by another user")
		}
		return &g, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	g = domain.ReplicacheClientGroup{ID: groupID, UserID: userID, CvrVersion: 0}
	_, err = r.tx.Exec(ctx, `insert into replicache_client_groups (id, user_id, cvr_version)
		values ($1, $2, $3)`, g.ID, g.UserID, g.CvrVersion)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r replicacheGroupRepo) FindForUpdate(ctx context.Context, groupID string) (*domain.ReplicacheClientGroup, error) {
	row := r.tx.QueryRow(ctx, `select id, user_id, cvr_version from replicache_client_groups
		where id = $1 for update`, groupID)

	var g domain.ReplicacheClientGroup
	err := row.Scan(&g.ID, &g.UserID, &g.CvrVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errorx.New(errorx.NotFound, "client group not found")
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r replicacheGroupRepo) UpdateCvrVersion(ctx context.Context, groupID string, version int32) error {
	_, err := r.tx.Exec(ctx, `update replicache_client_groups set cvr_version = $2 where id = $1`, groupID, version)
	return err
}

type replicacheClientRepo struct{ tx pgx.Tx }

// FindOrCreate enforces client/group pairing: a client id seen under a
// different group is an Unauthorized error.
func (r replicacheClientRepo) FindOrCreate(ctx context.Context, clientID, groupID string) (*domain.ReplicacheClient, error) {
	row := r.tx.QueryRow(ctx, `select id, client_group_id, last_mutation_id from replicache_clients where id = $1`, clientID)

	var c domain.ReplicacheClient
	err := row.Scan(&c.ID, &c.GroupID, &c.LastMutationID)
	if err == nil {
		if c.GroupID != groupID {
			return nil, errorx.New(errorx.Unauthorized, "client belongs to another group")
		}
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	c = domain.ReplicacheClient{ID: clientID, GroupID: groupID, LastMutationID: 0}
	_, err = r.tx.Exec(ctx, `insert into replicache_clients (id, client_group_id, last_mutation_id)
		values ($1, $2, $3)`, c.ID, c.GroupID, c.LastMutationID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r replicacheClientRepo) ListForGroup(ctx context.Context, groupID string) ([]*domain.ReplicacheClient, error) {
	rows, err := r.tx.Query(ctx, `select id, client_group_id, last_mutation_id from replicache_clients
		where client_group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ReplicacheClient
	for rows.Next() {
		var c domain.ReplicacheClient
		if err := rows.Scan(&c.ID, &c.GroupID, &c.LastMutationID); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r replicacheClientRepo) UpdateLastMutationID(ctx context.Context, clientID string, lastMutationID int32) error {
	_, err := r.tx.Exec(ctx, `update replicache_clients set last_mutation_id = $2 where id = $1`,
		clientID, lastMutationID)
	return err
}
