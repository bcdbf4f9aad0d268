// Package memory is an in-process fake of store.Store for unit tests that
// exercise the sync engine and job worker without a running Postgres.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

type Memory struct {
	mu sync.Mutex

	users          map[string]*domain.User
	chats          map[string]*domain.Chat
	messages       map[string]*domain.Message
	activeModels   map[string]*domain.ActiveModel
	apiKeys        map[string]*domain.ApiKey
	groups         map[string]*domain.ReplicacheClientGroup
	clients        map[string]*domain.ReplicacheClient
	sharedChats    map[string]*domain.SharedChat
	sharedMessages map[string][]*domain.SharedMessage
	sessions       map[string]*domain.Session
}

func New() *Memory {
	return &Memory{
		users:          make(map[string]*domain.User),
		chats:          make(map[string]*domain.Chat),
		messages:       make(map[string]*domain.Message),
		activeModels:   make(map[string]*domain.ActiveModel),
		apiKeys:        make(map[string]*domain.ApiKey),
		groups:         make(map[string]*domain.ReplicacheClientGroup),
		clients:        make(map[string]*domain.ReplicacheClient),
		sharedChats:    make(map[string]*domain.SharedChat),
		sharedMessages: make(map[string][]*domain.SharedMessage),
		sessions:       make(map[string]*domain.Session),
	}
}

// WithTx runs fn against the whole store under a single lock: no partial
// rollback semantics, callers must not rely on torn writes on error either
// way (good enough for a test fake, the point is never a real failure mode).
func (m *Memory) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func (m *Memory) Close() {}

func (m *Memory) Users() store.UserRepository                       { return (*userRepo)(m) }
func (m *Memory) Chats() store.ChatRepository                       { return (*chatRepo)(m) }
func (m *Memory) Messages() store.MessageRepository                 { return (*messageRepo)(m) }
func (m *Memory) ActiveModels() store.ActiveModelRepository         { return (*activeModelRepo)(m) }
func (m *Memory) ApiKeys() store.ApiKeyRepository                   { return (*apiKeyRepo)(m) }
func (m *Memory) ReplicacheGroups() store.ReplicacheGroupRepository { return (*groupRepo)(m) }
func (m *Memory) ReplicacheClients() store.ReplicacheClientRepository {
	return (*clientRepo)(m)
}
func (m *Memory) SharedChats() store.SharedChatRepository { return (*sharedChatRepo)(m) }
func (m *Memory) Sessions() store.SessionRepository        { return (*sessionRepo)(m) }

type userRepo Memory

func (r *userRepo) Find(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errorx.New(errorx.NotFound, "user not found")
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

type chatRepo Memory

func (r *chatRepo) Find(ctx context.Context, id string) (*domain.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "chat not found")
	}
	cp := *c
	return &cp, nil
}

func (r *chatRepo) FindForUpdate(ctx context.Context, id string) (*domain.Chat, error) {
	return r.Find(ctx, id)
}

func (r *chatRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Chat, error) {
	var out []*domain.Chat
	for _, id := range ids {
		if c, ok := r.chats[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *chatRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	var out []*domain.Chat
	for _, c := range r.chats {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *chatRepo) Create(ctx context.Context, c *domain.Chat) error {
	cp := *c
	r.chats[c.ID] = &cp
	return nil
}

func (r *chatRepo) Update(ctx context.Context, c *domain.Chat) error {
	if _, ok := r.chats[c.ID]; !ok {
		return errorx.New(errorx.NotFound, "chat not found")
	}
	cp := *c
	r.chats[c.ID] = &cp
	return nil
}

func (r *chatRepo) Delete(ctx context.Context, id string) error {
	delete(r.chats, id)
	return nil
}

type messageRepo Memory

func (r *messageRepo) Find(ctx context.Context, id string) (*domain.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "message not found")
	}
	cp := *m
	return &cp, nil
}

func (r *messageRepo) FindForUpdate(ctx context.Context, id string) (*domain.Message, error) {
	return r.Find(ctx, id)
}

func (r *messageRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, id := range ids {
		if m, ok := r.messages[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *messageRepo) ListForChat(ctx context.Context, chatID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *messageRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *messageRepo) Create(ctx context.Context, m *domain.Message) (bool, error) {
	if _, exists := r.messages[m.ID]; exists {
		return false, nil
	}
	cp := *m
	r.messages[m.ID] = &cp
	return true, nil
}

func (r *messageRepo) Update(ctx context.Context, m *domain.Message) error {
	if _, ok := r.messages[m.ID]; !ok {
		return errorx.New(errorx.NotFound, "message not found")
	}
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *messageRepo) Delete(ctx context.Context, id string) error {
	delete(r.messages, id)
	return nil
}

type activeModelRepo Memory

func (r *activeModelRepo) FindForUser(ctx context.Context, userID string) (*domain.ActiveModel, error) {
	m, ok := r.activeModels[userID]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "active model not found")
	}
	cp := *m
	return &cp, nil
}

func (r *activeModelRepo) FindByIDs(ctx context.Context, userIDs []string) ([]*domain.ActiveModel, error) {
	var out []*domain.ActiveModel
	for _, id := range userIDs {
		if m, ok := r.activeModels[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *activeModelRepo) Upsert(ctx context.Context, m *domain.ActiveModel) error {
	cp := *m
	r.activeModels[m.UserID] = &cp
	return nil
}

func (r *activeModelRepo) Delete(ctx context.Context, userID string) error {
	delete(r.activeModels, userID)
	return nil
}

type apiKeyRepo Memory

func (r *apiKeyRepo) FindForProvider(ctx context.Context, userID string, provider domain.ProviderID) (*domain.ApiKey, error) {
	for _, k := range r.apiKeys {
		if k.UserID == userID && k.Provider == provider {
			cp := *k
			return &cp, nil
		}
	}
	return nil, errorx.New(errorx.NotFound, "api key not found")
}

func (r *apiKeyRepo) ListForUser(ctx context.Context, userID string) ([]*domain.ApiKey, error) {
	var out []*domain.ApiKey
	for _, k := range r.apiKeys {
		if k.UserID == userID {
			cp := *k
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *apiKeyRepo) Find(ctx context.Context, id string) (*domain.ApiKey, error) {
	k, ok := r.apiKeys[id]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "api key not found")
	}
	cp := *k
	return &cp, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, k *domain.ApiKey) error {
	for id, existing := range r.apiKeys {
		if existing.UserID == k.UserID && existing.Provider == k.Provider {
			delete(r.apiKeys, id)
		}
	}
	cp := *k
	r.apiKeys[k.ID] = &cp
	return nil
}

func (r *apiKeyRepo) Delete(ctx context.Context, id string) error {
	delete(r.apiKeys, id)
	return nil
}

type groupRepo Memory

func (r *groupRepo) FindOrCreate(ctx context.Context, groupID, userID string) (*domain.ReplicacheClientGroup, error) {
	if g, ok := r.groups[groupID]; ok {
		if g.UserID != userID {
			return nil, errorx.New(errorx.Unauthorized, "client group owned by another user")
		}
		cp := *g
		return &cp, nil
	}
	g := &domain.ReplicacheClientGroup{ID: groupID, UserID: userID, CvrVersion: 0}
	r.groups[groupID] = g
	cp := *g
	return &cp, nil
}

func (r *groupRepo) FindForUpdate(ctx context.Context, groupID string) (*domain.ReplicacheClientGroup, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, errorx.New(errorx.NotFound, "client group not found")
	}
	cp := *g
	return &cp, nil
}

func (r *groupRepo) UpdateCvrVersion(ctx context.Context, groupID string, version int32) error {
	g, ok := r.groups[groupID]
	if !ok {
		return errorx.New(errorx.NotFound, "client group not found")
	}
	g.CvrVersion = version
	return nil
}

type clientRepo Memory

func (r *clientRepo) FindOrCreate(ctx context.Context, clientID, groupID string) (*domain.ReplicacheClient, error) {
	if c, ok := r.clients[clientID]; ok {
		if c.GroupID != groupID {
			return nil, errorx.New(errorx.Unauthorized, "client belongs to another group")
		}
		cp := *c
		return &cp, nil
	}
	c := &domain.ReplicacheClient{ID: clientID, GroupID: groupID, LastMutationID: 0}
	r.clients[clientID] = c
	cp := *c
	return &cp, nil
}

func (r *clientRepo) ListForGroup(ctx context.Context, groupID string) ([]*domain.ReplicacheClient, error) {
	var out []*domain.ReplicacheClient
	for _, c := range r.clients {
		if c.GroupID == groupID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *clientRepo) UpdateLastMutationID(ctx context.Context, clientID string, lastMutationID int32) error {
	c, ok := r.clients[clientID]
	if !ok {
		return errorx.New(errorx.NotFound, "client not found")
	}
	c.LastMutationID = lastMutationID
	return nil
}

type sharedChatRepo Memory

func (r *sharedChatRepo) Create(ctx context.Context, sc *domain.SharedChat, messages []*domain.SharedMessage) error {
	cp := *sc
	r.sharedChats[sc.ID] = &cp
	cpMessages := make([]*domain.SharedMessage, len(messages))
	for i, m := range messages {
		mc := *m
		cpMessages[i] = &mc
	}
	r.sharedMessages[sc.ID] = cpMessages
	return nil
}

func (r *sharedChatRepo) Find(ctx context.Context, id string) (*domain.SharedChat, []*domain.SharedMessage, error) {
	sc, ok := r.sharedChats[id]
	if !ok {
		return nil, nil, errorx.New(errorx.NotFound, "shared chat not found")
	}
	cp := *sc
	return &cp, r.sharedMessages[id], nil
}

func (r *sharedChatRepo) Delete(ctx context.Context, id string) error {
	delete(r.sharedChats, id)
	delete(r.sharedMessages, id)
	return nil
}

type sessionRepo Memory

func (r *sessionRepo) Find(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok || s.ExpiredAt != nil {
		return nil, errorx.New(errorx.Unauthorized, "session not found")
	}
	cp := *s
	return &cp, nil
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.Session) error {
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *sessionRepo) Expire(ctx context.Context, id string) error {
	s, ok := r.sessions[id]
	if !ok {
		return errorx.New(errorx.Unauthorized, "session not found")
	}
	now := s.UpdatedAt
	s.ExpiredAt = &now
	return nil
}
