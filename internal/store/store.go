// Package store defines the transactional relational store contract the
// sync engine and job worker depend on. Concrete backends (postgres,
// memory) live in sibling packages and satisfy these interfaces — the
// "Repository trait + generic changesets" design note (§9) becomes a
// small per-entity interface with find/find_for_update/create/update/delete,
// no inheritance hierarchy.
package store

import (
	"context"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

// Store opens transactions against the relational store. All writes that
// must be atomic (a push mutation, a pull's version bump) go through WithTx.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}

// Tx exposes one repository per entity, scoped to a single transaction.
type Tx interface {
	Users() UserRepository
	Chats() ChatRepository
	Messages() MessageRepository
	ActiveModels() ActiveModelRepository
	ApiKeys() ApiKeyRepository
	ReplicacheGroups() ReplicacheGroupRepository
	ReplicacheClients() ReplicacheClientRepository
	SharedChats() SharedChatRepository
	Sessions() SessionRepository
}

type UserRepository interface {
	Find(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type ChatRepository interface {
	Find(ctx context.Context, id string) (*domain.Chat, error)
	FindForUpdate(ctx context.Context, id string) (*domain.Chat, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error)
	Create(ctx context.Context, c *domain.Chat) error
	Update(ctx context.Context, c *domain.Chat) error
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Find(ctx context.Context, id string) (*domain.Message, error)
	FindForUpdate(ctx context.Context, id string) (*domain.Message, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Message, error)
	ListForChat(ctx context.Context, chatID string) ([]*domain.Message, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Message, error)
	// Create is insert-or-ignore on id: replaying the same mutation is a no-op.
	Create(ctx context.Context, m *domain.Message) (created bool, err error)
	Update(ctx context.Context, m *domain.Message) error
	Delete(ctx context.Context, id string) error
}

type ActiveModelRepository interface {
	FindForUser(ctx context.Context, userID string) (*domain.ActiveModel, error)
	FindByIDs(ctx context.Context, userIDs []string) ([]*domain.ActiveModel, error)
	Upsert(ctx context.Context, m *domain.ActiveModel) error
	Delete(ctx context.Context, userID string) error
}

type ApiKeyRepository interface {
	FindForProvider(ctx context.Context, userID string, provider domain.ProviderID) (*domain.ApiKey, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.ApiKey, error)
	Find(ctx context.Context, id string) (*domain.ApiKey, error)
	Create(ctx context.Context, k *domain.ApiKey) error
	Delete(ctx context.Context, id string) error
}

type ReplicacheGroupRepository interface {
	// FindOrCreate resolves a client group, creating it owned by userID on
	// first use. Returns errorx.Unauthorized if it exists under another user.
	FindOrCreate(ctx context.Context, groupID, userID string) (*domain.ReplicacheClientGroup, error)
	FindForUpdate(ctx context.Context, groupID string) (*domain.ReplicacheClientGroup, error)
	UpdateCvrVersion(ctx context.Context, groupID string, version int32) error
}

type ReplicacheClientRepository interface {
	// FindOrCreate resolves a client row, failing if it exists under a
	// different group than groupID.
	FindOrCreate(ctx context.Context, clientID, groupID string) (*domain.ReplicacheClient, error)
	ListForGroup(ctx context.Context, groupID string) ([]*domain.ReplicacheClient, error)
	UpdateLastMutationID(ctx context.Context, clientID string, lastMutationID int32) error
}

type SharedChatRepository interface {
	Create(ctx context.Context, sc *domain.SharedChat, messages []*domain.SharedMessage) error
	Find(ctx context.Context, id string) (*domain.SharedChat, []*domain.SharedMessage, error)
	Delete(ctx context.Context, id string) error
}

type SessionRepository interface {
	Find(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Expire(ctx context.Context, id string) error
}
