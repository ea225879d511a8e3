package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mathview/pkg/adapters/redis"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PreferenceStore = (*redis.Store)(nil)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunPreferenceStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "braille_code=UEB;"))

	got, err := mr.Get("test:alice")
	require.NoError(t, err)
	assert.Equal(t, "braille_code=UEB;", got)

	members, err := mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ephemeral", "speech_style=SimpleSpeak;"))
	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, profiles, "ephemeral")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ephemeral")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	mr.Close()

	_, err := store.Load(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProfileNotFound)
}
