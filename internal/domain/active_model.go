package domain

import "time"

// ActiveModel is a user's per-session selection of (provider, model,
// reasoning-effort). Effort is optional: the mutation handler checks that a
// given value is low, medium or high, but does not check whether Model
// requires an effort or accepts one.
type ActiveModel struct {
	UserID    string
	Provider  ProviderID
	Model     string
	Effort    *ReasoningEffort
	Version   int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ActiveModelDTO struct {
	Provider  ProviderID       `json:"provider"`
	Model     string           `json:"model"`
	Effort    *ReasoningEffort `json:"effort,omitempty"`
	Version   int32            `json:"version"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (a *ActiveModel) ToDTO() ActiveModelDTO {
	return ActiveModelDTO{
		Provider:  a.Provider,
		Model:     a.Model,
		Effort:    a.Effort,
		Version:   a.Version,
		UpdatedAt: a.UpdatedAt,
	}
}
