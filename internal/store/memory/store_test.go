package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wurt83ow/yandex-dialogs/internal/store"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	now := time.Now()
	require.NoError(t, s.SaveEntry(ctx, store.Entry{ID: "b", WebhookID: "hook-b", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, s.SaveEntry(ctx, store.Entry{ID: "a", WebhookID: "hook-a", CreatedAt: now}))

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)

	assert.ErrorIs(t, s.SaveEntry(ctx, store.Entry{ID: "a", WebhookID: "other"}), store.ErrConflict)
	assert.ErrorIs(t, s.SaveEntry(ctx, store.Entry{ID: "c", WebhookID: "hook-a"}), store.ErrConflict)

	require.NoError(t, s.DeleteEntry(ctx, "a"))
	assert.ErrorIs(t, s.DeleteEntry(ctx, "a"), store.ErrNotFound)

	entries, err = s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hook-b", entries[0].WebhookID)
}
