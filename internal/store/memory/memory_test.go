package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/internal/store"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

func TestSessionExpireBlocksFutureFind(t *testing.T) {
	m := New()
	ctx := context.Background()
	now := time.Now()

	err := m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Sessions().Create(ctx, &domain.Session{ID: "s-1", UserID: "u-1", CreatedAt: now, UpdatedAt: now})
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		s, err := tx.Sessions().Find(ctx, "s-1")
		require.NoError(t, err)
		require.Equal(t, "u-1", s.UserID)
		return nil
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Sessions().Expire(ctx, "s-1")
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Sessions().Find(ctx, "s-1")
		return err
	})
	require.Error(t, err)
	require.Equal(t, errorx.Unauthorized, errorx.KindOf(err))
}

func TestSharedChatCreateFindDelete(t *testing.T) {
	m := New()
	ctx := context.Background()
	now := time.Now()

	shared := &domain.SharedChat{ID: "sc-1", ChatID: "chat-1", UserID: "u-1", CreatedAt: now}
	messages := []*domain.SharedMessage{{ID: "m-1", SharedChatID: "sc-1", Role: domain.RoleUser, Body: "hi", CreatedAt: now}}

	err := m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.SharedChats().Create(ctx, shared, messages)
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		sc, msgs, err := tx.SharedChats().Find(ctx, "sc-1")
		require.NoError(t, err)
		require.Equal(t, "chat-1", sc.ChatID)
		require.Len(t, msgs, 1)
		return nil
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.SharedChats().Delete(ctx, "sc-1")
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, _, err := tx.SharedChats().Find(ctx, "sc-1")
		return err
	})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, errorx.KindOf(err))
}

func TestActiveModelUpsertReplacesExistingRow(t *testing.T) {
	m := New()
	ctx := context.Background()
	now := time.Now()

	err := m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.ActiveModels().Upsert(ctx, &domain.ActiveModel{
			UserID: "u-1", Provider: domain.ProviderOpenAI, Model: "gpt-4.1-mini",
			Version: 1, CreatedAt: now, UpdatedAt: now,
		})
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.ActiveModels().Upsert(ctx, &domain.ActiveModel{
			UserID: "u-1", Provider: domain.ProviderAnthropic, Model: "claude-opus-4",
			Version: 2, CreatedAt: now, UpdatedAt: now,
		})
	})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		active, err := tx.ActiveModels().FindForUser(ctx, "u-1")
		require.NoError(t, err)
		require.Equal(t, domain.ProviderAnthropic, active.Provider)
		require.Equal(t, int32(2), active.Version)
		return nil
	})
	require.NoError(t, err)
}
