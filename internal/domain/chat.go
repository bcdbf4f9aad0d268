package domain

import "time"

// Chat is a conversation thread owned by a single user. Owner is immutable
// once set; Version increases by exactly one per successful update.
type Chat struct {
	ID        string
	UserID    string
	Title     *string
	Archived  bool
	Pinned    bool
	Forked    bool
	Version   int32
	PinnedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatDTO is the public shape serialised into replicache patches; internal
// fields like UserID never leave the Entity Registry's loaders.
type ChatDTO struct {
	ID        string     `json:"id"`
	Title     *string    `json:"title"`
	Archived  bool       `json:"archived"`
	Pinned    bool       `json:"pinned"`
	Forked    bool       `json:"forked"`
	Version   int32      `json:"version"`
	PinnedAt  *time.Time `json:"pinnedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Chat) ToDTO() ChatDTO {
	return ChatDTO{
		ID:        c.ID,
		Title:     c.Title,
		Archived:  c.Archived,
		Pinned:    c.Pinned,
		Forked:    c.Forked,
		Version:   c.Version,
		PinnedAt:  c.PinnedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
