package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mathview/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "mathview:prefs:"

// farFuture scores index entries of blobs that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.PreferenceStore using Redis. Blobs are plain string
// keys; a sorted set indexes the profiles by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires blobs that were not saved for ttl.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(profile string) string {
	return s.prefix + profile
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Save stores the blob and indexes the profile in one pipeline.
func (s *Store) Save(ctx context.Context, profile, blob string) error {
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(profile), blob, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: profile})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the blob of profile.
func (s *Store) Load(ctx context.Context, profile string) (string, error) {
	val, err := s.client.Get(ctx, s.key(profile)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrProfileNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the blob and its index entry.
func (s *Store) Delete(ctx context.Context, profile string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(profile))
	pipe.ZRem(ctx, s.indexKey(), profile)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the profiles whose blob has not expired, pruning the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired profiles: %w", err)
	}

	profiles, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
