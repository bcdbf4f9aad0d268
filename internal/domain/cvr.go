package domain

// CvrRecord is a Client View Record: a snapshot of entity keys ("<prefix>/<id>")
// to version integers, plus each client's last applied mutation id. It is
// serialised into the cache under the key "cvr/<uuid>".
type CvrRecord struct {
	Entities        map[string]int32 `json:"entities"`
	LastMutationIDs map[string]int32 `json:"lastMutationIDs"`
}

func NewCvrRecord() *CvrRecord {
	return &CvrRecord{
		Entities:        map[string]int32{},
		LastMutationIDs: map[string]int32{},
	}
}

// CvrDiff is the three-way split between two CvrRecords' entity key sets.
type CvrDiff struct {
	Puts    []string // keys present in next but not in base
	Dels    []string // keys present in base but not in next
	Changed []string // keys present in both with a differing version
}

// Diff computes next.Diff(base): puts/dels/changed are named from next's
// perspective (next is "self", base is "other"), matching the CVR diff
// described in §4.4.
func (next *CvrRecord) Diff(base *CvrRecord) CvrDiff {
	var d CvrDiff

	for k := range next.Entities {
		if _, ok := base.Entities[k]; !ok {
			d.Puts = append(d.Puts, k)
		}
	}
	for k := range base.Entities {
		if _, ok := next.Entities[k]; !ok {
			d.Dels = append(d.Dels, k)
		}
	}
	for k, v := range next.Entities {
		if bv, ok := base.Entities[k]; ok && bv != v {
			d.Changed = append(d.Changed, k)
		}
	}

	return d
}

// Equal reports whether two CvrRecords carry the same entity versions and
// last-mutation-id map — used to detect the "nothing changed" pull case.
func (c *CvrRecord) Equal(other *CvrRecord) bool {
	if len(c.Entities) != len(other.Entities) || len(c.LastMutationIDs) != len(other.LastMutationIDs) {
		return false
	}
	for k, v := range c.Entities {
		if ov, ok := other.Entities[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range c.LastMutationIDs {
		if ov, ok := other.LastMutationIDs[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
