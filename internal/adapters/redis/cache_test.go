package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "sonachala/internal/adapters/redis"
	"sonachala/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	snap := domain.CatalogSnapshot{
		Available: []domain.RoomType{{ID: "room1", Type: "Deluxe Room", AvailableCount: 4}},
		Source:    domain.SourceLive,
	}
	require.NoError(t, cache.Set(ctx, "rooms:test", snap, 60))

	var got domain.CatalogSnapshot
	ok, err := cache.Get(ctx, "rooms:test", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Available[0].ID, got.Available[0].ID)
	assert.Equal(t, domain.SourceLive, got.Source)

	require.NoError(t, cache.Del(ctx, "rooms:test"))
	ok, err = cache.Get(ctx, "rooms:test", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_MissIsNotAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	var dst domain.Hotel
	ok, err := cache.Get(context.Background(), "absent", &dst)
	require.NoError(t, err)
	assert.False(t, ok)
}
