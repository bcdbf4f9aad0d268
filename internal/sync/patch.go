package sync

import (
	"context"
	"sort"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
)

// GeneratePatch is the Patch Generator (C4): given a base and next CVR, it
// produces the ordered list of operations that carries a client from base
// to next.
func (r *Registry) GeneratePatch(ctx context.Context, tx store.Tx, base, next *domain.CvrRecord) ([]domain.PatchOperation, error) {
	var patch []domain.PatchOperation

	if len(base.Entities) == 0 {
		patch = append(patch, domain.PatchOperation{Op: domain.PatchClear})
	}

	diff := next.Diff(base)

	sort.Strings(diff.Dels)
	for _, key := range diff.Dels {
		patch = append(patch, domain.PatchOperation{Op: domain.PatchDelete, Key: key})
	}

	puts := append(diff.Puts, diff.Changed...)
	byPrefix := map[string][]string{}
	for _, key := range puts {
		prefix, id, ok := splitKey(key)
		if !ok {
			continue
		}
		byPrefix[prefix] = append(byPrefix[prefix], id)
	}

	prefixes := make([]string, 0, len(byPrefix))
	for prefix := range byPrefix {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		loader, err := r.lookup(prefix)
		if err != nil {
			return nil, err
		}
		values, err := loader(ctx, tx, byPrefix[prefix])
		if err != nil {
			return nil, err
		}
		ids := byPrefix[prefix]
		sort.Strings(ids)
		for _, id := range ids {
			value, ok := values[id]
			if !ok {
				continue
			}
			patch = append(patch, domain.PatchOperation{Op: domain.PatchPut, Key: entityKey(prefix, id), Value: value})
		}
	}

	return patch, nil
}
