package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/Scott-fo/t3-clone/internal/cache"
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

// Puller is the Pull Pipeline (C5).
type Puller struct {
	store    store.Store
	cache    cache.CvrCache
	registry *Registry
}

func NewPuller(st store.Store, ch cache.CvrCache, registry *Registry) *Puller {
	return &Puller{store: st, cache: ch, registry: registry}
}

// Pull implements §4.5's algorithm end to end.
func (p *Puller) Pull(ctx context.Context, userID string, req domain.PullRequest) (domain.PullResponse, error) {
	base := domain.NewCvrRecord()
	if req.Cookie != nil {
		cached, found, err := p.cache.Get(ctx, req.Cookie.CvrID)
		if err != nil {
			return domain.PullResponse{}, err
		}
		if found {
			base = cached
		}
	}

	var resp domain.PullResponse

	err := p.store.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		group, err := tx.ReplicacheGroups().FindOrCreate(ctx, req.ClientGroupID, userID)
		if err != nil {
			return err
		}

		next, err := p.buildNextCvr(ctx, tx, userID, group.ID)
		if err != nil {
			return err
		}

		if next.Equal(base) {
			order := int32(0)
			cvrID := ""
			if req.Cookie != nil {
				order = req.Cookie.Order
				cvrID = req.Cookie.CvrID
			} else {
				order = group.CvrVersion
				cvrID = uuid.NewString()
			}
			resp = domain.PullResponse{
				Cookie:                domain.Cookie{Order: order, CvrID: cvrID},
				Patch:                 nil,
				LastMutationIDChanges: map[string]int32{},
			}
			return nil
		}

		patch, err := p.registry.GeneratePatch(ctx, tx, base, next)
		if err != nil {
			return err
		}

		cookieOrder := int32(0)
		if req.Cookie != nil {
			cookieOrder = req.Cookie.Order
		}
		newVersion := group.CvrVersion
		if cookieOrder > newVersion {
			newVersion = cookieOrder
		}
		newVersion++

		if err := tx.ReplicacheGroups().UpdateCvrVersion(ctx, group.ID, newVersion); err != nil {
			return err
		}

		cvrID := uuid.NewString()
		if err := p.cache.Put(ctx, cvrID, next); err != nil {
			return err
		}

		resp = domain.PullResponse{
			Cookie:                domain.Cookie{Order: newVersion, CvrID: cvrID},
			Patch:                 patch,
			LastMutationIDChanges: next.LastMutationIDs,
		}
		return nil
	})
	if err != nil {
		return domain.PullResponse{}, err
	}

	return resp, nil
}

// buildNextCvr lists every chat, message and active-model entity the user
// can see, plus every client's last_mutation_id in the group, and maps each
// to its "<prefix>/<id>" → version entry (§4.5 step 3).
func (p *Puller) buildNextCvr(ctx context.Context, tx store.Tx, userID, groupID string) (*domain.CvrRecord, error) {
	next := domain.NewCvrRecord()

	chats, err := tx.Chats().ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range chats {
		next.Entities[entityKey(prefixChat, c.ID)] = c.Version
	}

	messages, err := tx.Messages().ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range messages {
		next.Entities[entityKey(prefixMessage, m.ID)] = m.Version
	}

	active, err := tx.ActiveModels().FindForUser(ctx, userID)
	if err != nil {
		if errorx.KindOf(err) != errorx.NotFound {
			return nil, err
		}
	} else {
		next.Entities[entityKey(prefixActiveModel, userID)] = active.Version
	}

	clients, err := tx.ReplicacheClients().ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		next.LastMutationIDs[c.ID] = c.LastMutationID
	}

	return next, nil
}
