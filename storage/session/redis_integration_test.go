//go:build integration
// +build integration

package session

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/trezcool/minicrm/core/user"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)

	_, err = store.Get(ctx, "nope")
	assert.Equal(t, ErrNotFound, err)

	s := New()
	s.Login(&user.Principal{ID: 4, Name: "Ann", Email: "ann@test.cd", Role: user.RoleAdmin})
	s.AddToCart(9)
	s.AddToCart(9)
	s.AddFlash(FlashSuccess, "Login success!")
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, s.IsNew())
	assert.False(t, s.Dirty())

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Principal, got.Principal)
	assert.Equal(t, 2, got.Cart[9])
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "Login success!"}}, got.Flashes)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.Equal(t, ErrNotFound, err)
}
