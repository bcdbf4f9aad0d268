package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message belongs to a Chat. Owner is carried redundantly for authorization
// checks that don't need to join through Chat. Creation is insert-or-ignore
// on ID so an idempotent mutation replay is a no-op.
type Message struct {
	ID        string
	ChatID    string
	UserID    string
	Role      MessageRole
	Body      string
	Reasoning *string
	Version   int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MessageDTO struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	Role      MessageRole `json:"role"`
	Body      string      `json:"body"`
	Reasoning *string     `json:"reasoning,omitempty"`
	Version   int32       `json:"version"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (m *Message) ToDTO() MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Body:      m.Body,
		Reasoning: m.Reasoning,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
