package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/pkg/adapters/file"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/adapters/redis"
	"github.com/aretw0/mathview/pkg/adapters/sqlite"
	"github.com/aretw0/mathview/pkg/persistence/middleware"
	"github.com/aretw0/mathview/pkg/ports"
)

// persistence bundles the preference store chosen by configuration with the
// locker that backend offers, if any.
type persistence struct {
	Store  ports.PreferenceStore
	Locker ports.DistributedLocker
	close  func() error
}

func (p *persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// openStore builds the preference store for cfg.Backend, encrypting blobs
// when an encryption key is configured.
func openStore(ctx context.Context, cfg config.Store, logger *slog.Logger) (*persistence, error) {
	var mws []middleware.Middleware
	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
		logger.Debug("preference encryption enabled")
	}

	p, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	p.Store = middleware.Chain(p.Store, mws...)
	return p, nil
}

func openBackend(ctx context.Context, cfg config.Store, logger *slog.Logger) (*persistence, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &persistence{Store: memory.NewStore()}, nil

	case config.BackendFile, "":
		return &persistence{Store: file.New(cfg.Path)}, nil

	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &persistence{Store: store, close: store.Close}, nil

	case config.BackendRedis:
		opts, err := redisOptions(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		client := backend.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		store := redis.NewFromClient(client, redis.WithPrefix(cfg.RedisPrefix))
		logger.Debug("redis store connected", "addr", opts.Addr, "prefix", cfg.RedisPrefix)
		return &persistence{
			Store:  store,
			Locker: redis.NewLocker(client, cfg.RedisPrefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// redisOptions accepts a bare host:port or a redis:// URL.
func redisOptions(addr string) (*backend.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := backend.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &backend.Options{Addr: addr}, nil
}
