package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/internal/metrics"
	httpadapter "github.com/aretw0/mathview/pkg/adapters/http"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP host until SIGINT or SIGTERM.
func Serve(opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.Log.Level, opts.Debug)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	p, err := openStore(sigCtx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	var serverOpts []httpadapter.Option
	serverOpts = append(serverOpts, httpadapter.WithLogger(logger))

	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = createDebugHooks(logger)
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c, err := metrics.New(reg, metrics.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		hooks = combineHooks(hooks, c.Hooks())
		serverOpts = append(serverOpts, httpadapter.WithMetrics(reg))
	}
	if p.Locker != nil {
		serverOpts = append(serverOpts, httpadapter.WithSessionOptions(session.WithLocker(p.Locker)))
	}

	factory := func(ctx context.Context, sessionID string, display *memory.Display) (*mathview.Controller, error) {
		return newController(cfg, p, display, hooks, logger, sessionID), nil
	}
	server := httpadapter.NewServer(factory, serverOpts...)

	if rulesCh := startRuleWatcher(sigCtx, cfg.Rules, logger); rulesCh != nil {
		go func() {
			for ev := range rulesCh {
				if err := server.LoadRuleFile(sigCtx, ev); err != nil {
					logger.Error("rule file not applied", "name", ev.Name, "err", err)
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end with the signal context.
		BaseContext: func(net.Listener) context.Context { return sigCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTP.Addr, "store", cfg.Store.Backend, "metrics", cfg.Metrics.Enabled)
		errCh <- srv.ListenAndServe()
	}()
	printSystemMessage(os.Stdout, "Serving mathview %s on %s", strings.TrimSpace(mathview.Version), cfg.HTTP.Addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("Shutting down HTTP server", "signal", sigCtx.Signal())
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		return srv.Close()
	}
	return nil
}
