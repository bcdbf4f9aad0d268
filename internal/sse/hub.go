// Package sse implements the per-user broadcast hub described in §4.2: one
// buffered channel per connected client, a bounded per-chat backlog so a
// client that (re)subscribes mid-stream can catch up, and an open_chats set
// used to know which chats currently have a live backlog worth keeping.
package sse

import (
	"sync"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

const (
	userChannelCapacity = 2000
	chatBacklogLimit    = 500
)

type userState struct {
	mu         sync.Mutex
	clients    map[chan domain.SseMessage]struct{}
	openChats  map[string]struct{}
	backlogs   map[string][]domain.SseMessage
}

func newUserState() *userState {
	return &userState{
		clients:   make(map[chan domain.SseMessage]struct{}),
		openChats: make(map[string]struct{}),
		backlogs:  make(map[string][]domain.SseMessage),
	}
}

// Hub fans messages out to every connected client of a user, and to the
// replicache poke stream, backed by one userState per user id.
type Hub struct {
	mu    sync.RWMutex
	users map[string]*userState
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]*userState)}
}

func (h *Hub) stateFor(userID string, create bool) *userState {
	h.mu.RLock()
	u, ok := h.users[userID]
	h.mu.RUnlock()
	if ok || !create {
		return u
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if u, ok := h.users[userID]; ok {
		return u
	}
	u = newUserState()
	h.users[userID] = u
	return u
}

// AddClient registers a new subscriber channel for userID and replays any
// backlog for chatID (if chatID is non-empty and currently open) so the
// client does not miss chunks sent before it connected.
func (h *Hub) AddClient(userID, chatID string) chan domain.SseMessage {
	u := h.stateFor(userID, true)
	ch := make(chan domain.SseMessage, userChannelCapacity)

	u.mu.Lock()
	u.clients[ch] = struct{}{}
	if chatID != "" {
		if backlog, ok := u.backlogs[chatID]; ok {
			for _, msg := range backlog {
				select {
				case ch <- msg:
				default:
				}
			}
		}
	}
	u.mu.Unlock()

	return ch
}

// RemoveClient unregisters a subscriber channel and closes it.
func (h *Hub) RemoveClient(userID string, ch chan domain.SseMessage) {
	u := h.stateFor(userID, false)
	if u == nil {
		return
	}

	u.mu.Lock()
	delete(u.clients, ch)
	u.mu.Unlock()
	close(ch)
}

// SendToUser delivers msg to every one of userID's connected clients,
// non-blocking: a lagging or full client drops the message rather than
// stalling the sender. Chat-scoped messages are appended to the chat's
// backlog (bounded, drop-oldest) so late subscribers can catch up.
func (h *Hub) SendToUser(userID string, msg domain.SseMessage) {
	u := h.stateFor(userID, true)

	u.mu.Lock()
	if msg.HasChatID() {
		if msg.OpensChat() {
			u.openChats[msg.ChatID] = struct{}{}
		}
		backlog := append(u.backlogs[msg.ChatID], msg)
		if len(backlog) > chatBacklogLimit {
			dropped := len(backlog) - chatBacklogLimit
			logger.Warn("sse: dropping %d oldest backlog entries for chat %s (user %s)", dropped, msg.ChatID, userID)
			backlog = backlog[dropped:]
		}
		u.backlogs[msg.ChatID] = backlog

		if msg.ClosesChat() {
			delete(u.openChats, msg.ChatID)
			delete(u.backlogs, msg.ChatID)
		}
	}
	clients := make([]chan domain.SseMessage, 0, len(u.clients))
	for ch := range u.clients {
		clients = append(clients, ch)
	}
	u.mu.Unlock()

	for _, ch := range clients {
		select {
		case ch <- msg:
		default:
			logger.Warn("sse: dropping message for lagging client (user %s)", userID)
		}
	}
}

// ReplicachePoke notifies every client of userID that new data is available
// to pull. Poke events are never backlogged: a client that missed one will
// simply get the same answer on its next scheduled pull.
func (h *Hub) ReplicachePoke(userID string) {
	h.SendToUser(userID, domain.SseMessage{Type: domain.EventReplicachePoke})
}

// TryGC drops the user's state entirely once it has no connected clients
// and no open chats, so idle users don't pin memory.
func (h *Hub) TryGC(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	u, ok := h.users[userID]
	if !ok {
		return
	}

	u.mu.Lock()
	empty := len(u.clients) == 0 && len(u.openChats) == 0
	u.mu.Unlock()

	if empty {
		delete(h.users, userID)
	}
}
