// Package metrics binds controller lifecycle hooks to Prometheus collectors.
package metrics

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/mathview/internal/logging"
	"github.com/aretw0/mathview/pkg/domain"
)

// Collectors holds the mathview metric families.
type Collectors struct {
	commands    *prometheus.CounterVec
	commandTime *prometheus.HistogramVec
	regenerated *prometheus.CounterVec
	regenTime   *prometheus.HistogramVec
	navigations *prometheus.CounterVec
	logger      *slog.Logger
}

// Option configures Collectors.
type Option func(*Collectors)

// WithLogger logs every event at debug level next to the metric update.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collectors) {
		c.logger = logger
	}
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, opts ...Option) (*Collectors, error) {
	c := &Collectors{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathview_commands_total",
			Help: "Commands dispatched to the controller.",
		}, []string{"kind", "changed"}),
		commandTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mathview_command_duration_seconds",
			Help:    "Time spent dispatching a command, regeneration included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		regenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathview_regenerations_total",
			Help: "Speech and braille artifacts recomputed.",
		}, []string{"artifact", "error"}),
		regenTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mathview_regeneration_duration_seconds",
			Help:    "Time spent recomputing one artifact.",
			Buckets: prometheus.DefBuckets,
		}, []string{"artifact"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathview_navigations_total",
			Help: "Navigation keys handed to the engine.",
		}, []string{"key", "rejected"}),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, col := range []prometheus.Collector{c.commands, c.commandTime, c.regenerated, c.regenTime, c.navigations} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			c.logger.DebugContext(ctx, "command",
				"session_id", e.SessionID,
				"kind", e.Kind,
				"changed", e.Changed,
				"duration", e.Duration,
			)
			c.commands.WithLabelValues(string(e.Kind), strconv.FormatBool(e.Changed)).Inc()
			c.commandTime.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
		OnRegenerate: func(ctx context.Context, e *domain.RegenerateEvent) {
			c.logger.DebugContext(ctx, "regenerate",
				"session_id", e.SessionID,
				"artifact", e.Artifact,
				"focus_id", e.FocusID,
				"is_error", e.IsError,
			)
			c.regenerated.WithLabelValues(e.Artifact, strconv.FormatBool(e.IsError)).Inc()
			c.regenTime.WithLabelValues(e.Artifact).Observe(e.Duration.Seconds())
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			c.logger.DebugContext(ctx, "navigate",
				"session_id", e.SessionID,
				"key", e.Key,
				"node_id", e.NodeID,
				"rejected", e.Rejected,
			)
			c.navigations.WithLabelValues(e.Key, strconv.FormatBool(e.Rejected)).Inc()
		},
	}
}
