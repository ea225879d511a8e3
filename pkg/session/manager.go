package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/internal/logging"
	"github.com/aretw0/mathview/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if its holder dies.
const DefaultLockTTL = 30 * time.Second

// ErrSessionNotFound is returned for operations on a session that was never opened.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds and starts the controller of a new session.
type Factory func(ctx context.Context, sessionID string) (*mathview.Controller, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps the live controllers of a multi-user host and serializes
// access to each one. Lock entries are reference counted and dropped when unused.
type Manager struct {
	factory Factory

	mu          sync.Mutex
	locks       map[string]*lockEntry
	controllers map[string]*mathview.Controller

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that builds controllers with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:     factory,
		locks:       make(map[string]*lockEntry),
		controllers: make(map[string]*mathview.Controller),
		lockTTL:     DefaultLockTTL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*mathview.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[sessionID]
	return c, ok
}

// Open runs fn with the controller of sessionID, creating the session first
// if needed. fn has exclusive access to the controller.
func (m *Manager) Open(ctx context.Context, sessionID string, fn func(context.Context, *mathview.Controller) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		c, ok := m.lookup(sessionID)
		if !ok {
			var err error
			c, err = m.factory(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to create session %s: %w", sessionID, err)
			}
			m.mu.Lock()
			m.controllers[sessionID] = c
			m.mu.Unlock()
			m.logger.Info("session opened", "session_id", sessionID)
		}
		return fn(ctx, c)
	})
}

// View runs fn with the controller of an existing session.
// Returns ErrSessionNotFound if the session was never opened.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(context.Context, *mathview.Controller) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		c, ok := m.lookup(sessionID)
		if !ok {
			return ErrSessionNotFound
		}
		return fn(ctx, c)
	})
}

// Close drops the controller of sessionID. Closing an unknown session is a no-op.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.controllers[sessionID]; ok {
			delete(m.controllers, sessionID)
			m.logger.Info("session closed", "session_id", sessionID)
		}
		return nil
	})
}

// List returns the open session ids, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.controllers))
	for id := range m.controllers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, ports.SessionLockKey(sessionID), m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
