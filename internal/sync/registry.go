// Package sync implements the replicache-style incremental sync engine:
// the Entity Registry (C7), Patch Generator (C4) and the Pull (C5) and
// Push (C6) pipelines built on top of it.
package sync

import (
	"context"
	"fmt"

	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

// BatchLoader fetches every entity named by ids (all sharing one prefix) in
// a single query and returns each as its public DTO, keyed by id.
type BatchLoader func(ctx context.Context, tx store.Tx, ids []string) (map[string]any, error)

// Registry is the process-wide prefix → batch_loader mapping described in
// §4.7. Registration is append-only: registering the same prefix twice is a
// programmer error, not a runtime one.
type Registry struct {
	loaders map[string]BatchLoader
}

func NewRegistry() *Registry {
	return &Registry{loaders: map[string]BatchLoader{}}
}

func (r *Registry) Register(prefix string, loader BatchLoader) {
	if _, exists := r.loaders[prefix]; exists {
		panic("sync: batch loader already registered for prefix " + prefix)
	}
	r.loaders[prefix] = loader
}

func (r *Registry) lookup(prefix string) (BatchLoader, error) {
	loader, ok := r.loaders[prefix]
	if !ok {
		return nil, errorx.New(errorx.Fatal, fmt.Sprintf("sync: no batch loader registered for prefix %q", prefix))
	}
	return loader, nil
}

// NewDefaultRegistry wires the three entity kinds the sync engine knows
// about (§4.7): chat, message, activeModel.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("chat", func(ctx context.Context, tx store.Tx, ids []string) (map[string]any, error) {
		chats, err := tx.Chats().FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(chats))
		for _, c := range chats {
			out[c.ID] = c.ToDTO()
		}
		return out, nil
	})

	r.Register("message", func(ctx context.Context, tx store.Tx, ids []string) (map[string]any, error) {
		messages, err := tx.Messages().FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(messages))
		for _, m := range messages {
			out[m.ID] = m.ToDTO()
		}
		return out, nil
	})

	r.Register("activeModel", func(ctx context.Context, tx store.Tx, ids []string) (map[string]any, error) {
		models, err := tx.ActiveModels().FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(models))
		for _, m := range models {
			out[m.UserID] = m.ToDTO()
		}
		return out, nil
	})

	return r
}

// entityKey formats the "<prefix>/<id>" string keys the CVR and patches use.
func entityKey(prefix, id string) string {
	return prefix + "/" + id
}

func splitKey(key string) (prefix, id string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

const (
	prefixChat        = "chat"
	prefixMessage     = "message"
	prefixActiveModel = "activeModel"
)
