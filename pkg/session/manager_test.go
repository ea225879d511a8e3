package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
	"github.com/aretw0/mathview/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFactory(store ports.PreferenceStore, created *atomic.Int32) session.Factory {
	return func(ctx context.Context, id string) (*mathview.Controller, error) {
		created.Add(1)
		time.Sleep(5 * time.Millisecond)
		c := mathview.New(mathview.WithSessionID(id), mathview.WithStore(store))
		c.Start(ctx)
		return c, nil
	}
}

func TestManager_OpenCreatesOnce(t *testing.T) {
	var created atomic.Int32
	mgr := session.NewManager(countingFactory(memory.NewStore(), &created))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.Open(ctx, "shared", func(ctx context.Context, c *mathview.Controller) error {
				_, err := c.Submit(ctx, "`x+1`")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, []string{"shared"}, mgr.List())
}

func TestManager_View(t *testing.T) {
	var created atomic.Int32
	mgr := session.NewManager(countingFactory(memory.NewStore(), &created))
	ctx := context.Background()

	err := mgr.View(ctx, "missing", func(context.Context, *mathview.Controller) error { return nil })
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	require.NoError(t, mgr.Open(ctx, "a", func(ctx context.Context, c *mathview.Controller) error {
		_, err := c.SetPreference(ctx, domain.PrefBrailleCode, "UEB")
		return err
	}))
	require.NoError(t, mgr.View(ctx, "a", func(_ context.Context, c *mathview.Controller) error {
		assert.Equal(t, "UEB", c.Preferences().Get(domain.PrefBrailleCode))
		return nil
	}))

	require.NoError(t, mgr.Close(ctx, "a"))
	assert.Empty(t, mgr.List())
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	mgr := session.NewManager(func(context.Context, string) (*mathview.Controller, error) {
		return nil, boom
	})
	err := mgr.Open(context.Background(), "x", func(context.Context, *mathview.Controller) error { return nil })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mgr.List())
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
}

func (l *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked = append(l.unlocked, key)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	var created atomic.Int32
	locker := &fakeLocker{}
	mgr := session.NewManager(countingFactory(memory.NewStore(), &created),
		session.WithLocker(locker),
		session.WithLockTTL(time.Second),
	)

	require.NoError(t, mgr.Open(context.Background(), "s1", func(context.Context, *mathview.Controller) error { return nil }))
	assert.Equal(t, []string{"session:s1"}, locker.locked)
	assert.Equal(t, []string{"session:s1"}, locker.unlocked)
	assert.Equal(t, time.Second, locker.ttl)
}
