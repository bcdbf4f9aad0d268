package providers

import (
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

// Registry resolves a domain.ProviderID to its Provider implementation.
type Registry struct {
	byID map[domain.ProviderID]Provider
}

func NewRegistry(impls ...Provider) *Registry {
	r := &Registry{byID: make(map[domain.ProviderID]Provider, len(impls))}
	for _, p := range impls {
		r.byID[p.ID()] = p
	}
	return r
}

func (r *Registry) Get(id domain.ProviderID) (Provider, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, errorx.New(errorx.ValidationError, "unknown provider "+string(id))
	}
	return p, nil
}
