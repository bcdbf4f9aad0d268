package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

func TestMemoryGetMissReturnsFalse(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryPutThenGetRoundTrips(t *testing.T) {
	m := NewMemory()
	rec := domain.NewCvrRecord()
	rec.Entities["chat/1"] = 1

	require.NoError(t, m.Put(context.Background(), "snap-1", rec))

	got, ok, err := m.Get(context.Background(), "snap-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(1), got.Entities["chat/1"])
}
