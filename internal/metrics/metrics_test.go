package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathview/internal/metrics"
	"github.com/aretw0/mathview/pkg/domain"
)

func TestHooks_UpdateCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	hooks := c.Hooks()
	ctx := context.Background()
	hooks.OnCommand(ctx, &domain.CommandEvent{Kind: domain.CommandSubmitInput, Changed: true, Duration: time.Millisecond})
	hooks.OnCommand(ctx, &domain.CommandEvent{Kind: domain.CommandSubmitInput, Changed: true})
	hooks.OnRegenerate(ctx, &domain.RegenerateEvent{Artifact: "speech"})
	hooks.OnRegenerate(ctx, &domain.RegenerateEvent{Artifact: "braille", IsError: true})
	hooks.OnNavigate(ctx, &domain.NavigateEvent{Key: "ArrowRight", NodeID: "id-7"})

	count, err := testutil.GatherAndCount(reg,
		"mathview_commands_total",
		"mathview_regenerations_total",
		"mathview_navigations_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	var commands float64
	for _, mf := range families {
		if mf.GetName() == "mathview_commands_total" {
			for _, m := range mf.GetMetric() {
				commands += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, commands)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}
