package domain

import "time"

// SharedChat is a frozen, public snapshot of a private chat, created on
// demand and identified by a fresh UUID. Read-only once created.
type SharedChat struct {
	ID        string
	ChatID    string
	UserID    string
	Title     *string
	CreatedAt time.Time
}

// SharedMessage is a frozen copy of a Message belonging to a SharedChat.
type SharedMessage struct {
	ID           string
	SharedChatID string
	Role         MessageRole
	Body         string
	Reasoning    *string
	CreatedAt    time.Time
}

type SharedChatDTO struct {
	ID        string              `json:"id"`
	Title     *string             `json:"title"`
	CreatedAt time.Time           `json:"createdAt"`
	Messages  []SharedMessageDTO  `json:"messages"`
}

type SharedMessageDTO struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Body      string      `json:"body"`
	Reasoning *string     `json:"reasoning,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
