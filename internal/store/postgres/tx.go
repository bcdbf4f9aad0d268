package postgres

import (
	"github.com/jackc/pgx/v5"

	"github.com/Scott-fo/t3-clone/internal/store"
)

// txHandle implements store.Tx by handing out repository views over the
// same *pgx.Tx; every repository is a thin wrapper, no buffering.
type txHandle struct {
	tx pgx.Tx
}

func (h *txHandle) Users() store.UserRepository         { return userRepo{h.tx} }
func (h *txHandle) Chats() store.ChatRepository         { return chatRepo{h.tx} }
func (h *txHandle) Messages() store.MessageRepository   { return messageRepo{h.tx} }
func (h *txHandle) ActiveModels() store.ActiveModelRepository {
	return activeModelRepo{h.tx}
}
func (h *txHandle) ApiKeys() store.ApiKeyRepository { return apiKeyRepo{h.tx} }
func (h *txHandle) ReplicacheGroups() store.ReplicacheGroupRepository {
	return replicacheGroupRepo{h.tx}
}
func (h *txHandle) ReplicacheClients() store.ReplicacheClientRepository {
	return replicacheClientRepo{h.tx}
}
func (h *txHandle) SharedChats() store.SharedChatRepository { return sharedChatRepo{h.tx} }
func (h *txHandle) Sessions() store.SessionRepository       { return sessionRepo{h.tx} }
