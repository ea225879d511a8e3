package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	key    domain.KeyEvent
	nodeID string // empty: the move must fail
	speech string
}

func key(name string) domain.KeyEvent {
	return domain.KeyFromName(name)
}

func runSteps(t *testing.T, e *memory.Engine, steps []step) {
	t.Helper()
	for i, s := range steps {
		got, err := e.Navigate(context.Background(), s.key)
		if s.nodeID == "" {
			assert.Error(t, err, "step %d (%s)", i, s.key.Key)
			continue
		}
		require.NoError(t, err, "step %d (%s)", i, s.key.Key)
		assert.Equal(t, s.nodeID, got.NodeID, "step %d (%s)", i, s.key.Key)
		if s.speech != "" {
			assert.Equal(t, s.speech, got.Speech, "step %d (%s)", i, s.key.Key)
		}
	}
}

func TestNavigate_Enhanced(t *testing.T) {
	e := memory.NewEngine()
	registerTeX(t, e, "x+y")

	runSteps(t, e, []step{
		{key: key("Left")},
		{key: key("Right"), nodeID: "id-1", speech: "x"},
		{key: key("Right"), nodeID: "id-2", speech: "plus"},
		{key: key("Right"), nodeID: "id-3", speech: "y"},
		{key: key("Right")},
		{key: key("Home"), nodeID: "id-1"},
		{key: key("End"), nodeID: "id-3"},
		{key: key("Enter"), nodeID: "id-3", speech: "y"},
		{key: key("Down")},
		{key: key("Up"), nodeID: "id-0", speech: "x plus y"},
		{key: key("Up")},
		{key: key("Down"), nodeID: "id-1"},
	})
}

func TestNavigate_ClimbsOutOfStructures(t *testing.T) {
	e := memory.NewEngine()
	registerTeX(t, e, `\frac{1}{2}+z`)

	runSteps(t, e, []step{
		{key: key("Right"), nodeID: "id-1", speech: "the fraction with numerator 1 and denominator 2"},
		{key: key("Down"), nodeID: "id-2", speech: "1"},
		{key: key("Right"), nodeID: "id-3"},
		{key: key("Right"), nodeID: "id-4", speech: "plus"},
	})
}

func TestNavigate_SimpleStaysInRow(t *testing.T) {
	e := memory.NewEngine()
	require.NoError(t, e.SetPreference(context.Background(), "NavMode", "Simple"))
	registerTeX(t, e, `\frac{1}{2}+z`)

	runSteps(t, e, []step{
		{key: key("Right"), nodeID: "id-1"},
		{key: key("Down"), nodeID: "id-2"},
		{key: key("Right"), nodeID: "id-3"},
		{key: key("Right")},
	})
}

func TestNavigate_Character(t *testing.T) {
	e := memory.NewEngine()
	require.NoError(t, e.SetPreference(context.Background(), "NavMode", "Character"))
	registerTeX(t, e, `\frac{1}{2}+z`)

	runSteps(t, e, []step{
		{key: key("Right"), nodeID: "id-2", speech: "1"},
		{key: key("Right"), nodeID: "id-3", speech: "2"},
		{key: key("Right"), nodeID: "id-4"},
		{key: key("Right"), nodeID: "id-5", speech: "z"},
		{key: key("Right")},
		{key: key("Up")},
		{key: key("Home"), nodeID: "id-2"},
	})
}

func TestNavigate_HistoryAndPlacemarkers(t *testing.T) {
	e := memory.NewEngine()
	registerTeX(t, e, "a+b+c")

	setMark := key("3")
	setMark.Ctrl = true

	runSteps(t, e, []step{
		{key: key("Backspace")},
		{key: key("Right"), nodeID: "id-1"},
		{key: key("Right"), nodeID: "id-2"},
		{key: setMark, nodeID: "id-2"},
		{key: key("End"), nodeID: "id-5"},
		{key: key("Backspace"), nodeID: "id-2"},
		{key: key("Home"), nodeID: "id-1"},
		{key: key("3"), nodeID: "id-2"},
		{key: key("5")},
	})
}

func TestNavigate_Verbose(t *testing.T) {
	e := memory.NewEngine()
	require.NoError(t, e.SetPreference(context.Background(), "NavVerbosity", "Verbose"))
	registerTeX(t, e, `\sqrt{x}`)

	got, err := e.Navigate(context.Background(), key("Right"))
	require.NoError(t, err)
	assert.Equal(t, "square root, the square root of x", got.Speech)
}

func TestNavigate_NothingRegistered(t *testing.T) {
	_, err := memory.NewEngine().Navigate(context.Background(), key("Right"))
	assert.Error(t, err)
}

func TestNavigate_ResetOnRegister(t *testing.T) {
	e := memory.NewEngine()
	registerTeX(t, e, "x+y")
	runSteps(t, e, []step{{key: key("End"), nodeID: "id-3"}})

	registerTeX(t, e, "a+b")
	runSteps(t, e, []step{{key: key("Right"), nodeID: "id-1", speech: "a"}})
}
