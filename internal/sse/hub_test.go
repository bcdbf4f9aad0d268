package sse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

func TestSendToUserDeliversToEveryClient(t *testing.T) {
	h := NewHub()
	a := h.AddClient("user-1", "")
	b := h.AddClient("user-1", "")

	h.SendToUser("user-1", domain.SseMessage{Type: domain.EventReplicachePoke})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
}

func TestAddClientReplaysBacklogForOpenChat(t *testing.T) {
	h := NewHub()
	h.SendToUser("user-1", domain.SseMessage{Type: domain.EventChatStreamChunk, ChatID: "chat-1", Chunk: "hello"})

	ch := h.AddClient("user-1", "chat-1")

	require.Len(t, ch, 1)
	msg := <-ch
	require.Equal(t, "hello", msg.Chunk)
}

func TestSendToUserClearsBacklogOnDone(t *testing.T) {
	h := NewHub()
	h.SendToUser("user-1", domain.SseMessage{Type: domain.EventChatStreamChunk, ChatID: "chat-1", Chunk: "hello"})
	h.SendToUser("user-1", domain.SseMessage{Type: domain.EventChatStreamDone, ChatID: "chat-1"})

	ch := h.AddClient("user-1", "chat-1")

	require.Len(t, ch, 0)
}

func TestRemoveClientStopsDelivery(t *testing.T) {
	h := NewHub()
	ch := h.AddClient("user-1", "")
	h.RemoveClient("user-1", ch)

	_, open := <-ch
	require.False(t, open)
}

func TestTryGCDropsIdleUserOnly(t *testing.T) {
	h := NewHub()
	ch := h.AddClient("user-1", "")

	h.TryGC("user-1")
	require.NotNil(t, h.stateFor("user-1", false), "user with a connected client must survive GC")

	h.RemoveClient("user-1", ch)
	h.TryGC("user-1")
	require.Nil(t, h.stateFor("user-1", false), "user with no clients and no open chats must be collected")
}
