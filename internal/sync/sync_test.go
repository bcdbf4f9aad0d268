package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/internal/cache"
	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/jobs"
	"github.com/Scott-fo/t3-clone/internal/providers"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/internal/store/memory"
)

type fakeDecrypter struct{}

func (fakeDecrypter) Decrypt(ciphertext []byte) (string, error) { return string(ciphertext), nil }

func newHarness() (*memory.Memory, *Puller, *Pusher) {
	st := memory.New()
	ch := cache.NewMemory()
	registry := NewDefaultRegistry()
	hub := sse.NewHub()
	worker := jobs.NewWorker(st, ch, hub, providers.NewRegistry(), fakeDecrypter{})

	return st, NewPuller(st, ch, registry), NewPusher(st, hub, worker)
}

func TestPushCreateChatThenCreateUserMessageSucceeds(t *testing.T) {
	_, _, pusher := newHarness()
	ctx := context.Background()

	_, err := pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 1, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-1"}, Timestamp: 1000},
			{ClientID: "client-1", ID: 2, Name: domain.MutationCreateMessage, Args: map[string]any{
				"id": "msg-1", "chat_id": "chat-1", "role": "user", "body": "hello",
			}, Timestamp: 1001},
		},
	})

	require.NoError(t, err)
}

func TestPushAdvancesLastMutationIDAndSkipsReplays(t *testing.T) {
	st, _, pusher := newHarness()
	ctx := context.Background()

	_, err := pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 1, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-1"}, Timestamp: 1000},
		},
	})
	require.NoError(t, err)

	// Replaying mutation id 1 is a no-op, not an out-of-order failure.
	_, err = pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 1, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-1"}, Timestamp: 1000},
		},
	})
	require.NoError(t, err)

	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		clients, err := tx.ReplicacheClients().ListForGroup(ctx, "group-1")
		require.NoError(t, err)
		require.Len(t, clients, 1)
		require.Equal(t, int32(1), clients[0].LastMutationID)
		return nil
	})
	require.NoError(t, err)
}

func TestPushRejectsOutOfOrderMutation(t *testing.T) {
	_, _, pusher := newHarness()
	ctx := context.Background()

	_, err := pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 5, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-1"}, Timestamp: 1000},
		},
	})

	require.Error(t, err)
}

func TestPushErrorModeAdvancesCounterOnBusinessFailure(t *testing.T) {
	_, _, pusher := newHarness()
	ctx := context.Background()

	// updateChat on a nonexistent chat fails business logic but must still
	// advance last_mutation_id so the client doesn't replay forever.
	_, err := pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 1, Name: domain.MutationUpdateChat, Args: map[string]any{"id": "missing-chat"}, Timestamp: 1000},
		},
	})
	require.NoError(t, err)

	_, err = pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 2, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-2"}, Timestamp: 1001},
		},
	})
	require.NoError(t, err)
}

func TestPullReturnsEmptyPatchWhenNothingChanged(t *testing.T) {
	_, puller, pusher := newHarness()
	ctx := context.Background()

	resp1, err := puller.Pull(ctx, "user-1", domain.PullRequest{ClientGroupID: "group-1"})
	require.NoError(t, err)
	require.Empty(t, resp1.Patch)

	resp2, err := puller.Pull(ctx, "user-1", domain.PullRequest{ClientGroupID: "group-1", Cookie: &resp1.Cookie})
	require.NoError(t, err)
	require.Empty(t, resp2.Patch)
	require.Equal(t, resp1.Cookie, resp2.Cookie)

	_ = pusher
}

func TestPullEmitsClearOnFirstSyncThenIncrementalPatch(t *testing.T) {
	_, puller, pusher := newHarness()
	ctx := context.Background()

	_, err := pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 1, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-1"}, Timestamp: 1000},
		},
	})
	require.NoError(t, err)

	resp1, err := puller.Pull(ctx, "user-1", domain.PullRequest{ClientGroupID: "group-1"})
	require.NoError(t, err)
	require.Equal(t, domain.PatchClear, resp1.Patch[0].Op)

	foundPut := false
	for _, op := range resp1.Patch {
		if op.Op == domain.PatchPut && op.Key == "chat/chat-1" {
			foundPut = true
		}
	}
	require.True(t, foundPut)

	_, err = pusher.Push(ctx, "user-1", domain.PushRequest{
		ClientGroupID: "group-1",
		Mutations: []domain.RawMutation{
			{ClientID: "client-1", ID: 2, Name: domain.MutationCreateChat, Args: map[string]any{"id": "chat-2"}, Timestamp: 1002},
		},
	})
	require.NoError(t, err)

	resp2, err := puller.Pull(ctx, "user-1", domain.PullRequest{ClientGroupID: "group-1", Cookie: &resp1.Cookie})
	require.NoError(t, err)
	require.NotEqual(t, resp1.Cookie, resp2.Cookie)

	for _, op := range resp2.Patch {
		require.NotEqual(t, domain.PatchClear, op.Op)
	}
}
