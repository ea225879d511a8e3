package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/internal/logging"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
)

func TestRunPrefs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cfg := config.Default()
	cfg.Profile = "alice"

	run := func(action PrefsAction, args ...string) (string, error) {
		var out bytes.Buffer
		err := runPrefs(ctx, store, cfg, action, args, &out, logging.NewNop())
		return out.String(), err
	}

	out, err := run(PrefsShow)
	require.NoError(t, err)
	assert.Contains(t, out, "speech_style           ClearSpeak\n")

	out, err = run(PrefsSet, "speech_style", "SimpleSpeak")
	require.NoError(t, err)
	assert.Equal(t, ">>> speech_style = SimpleSpeak\n", out)

	blob, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Contains(t, blob, "speech_style=SimpleSpeak;")

	out, err = run(PrefsShow)
	require.NoError(t, err)
	assert.Contains(t, out, "speech_style           SimpleSpeak\n")

	out, err = run(PrefsList)
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)

	_, err = run(PrefsSet, "speech_style", "Loud")
	assert.ErrorIs(t, err, domain.ErrInvalidPreferenceValue)
	_, err = run(PrefsSet, "volume", "11")
	assert.ErrorIs(t, err, domain.ErrUnknownPreference)
	_, err = run(PrefsSet, "speech_style")
	assert.Error(t, err)

	out, err = run(PrefsReset)
	require.NoError(t, err)
	assert.Equal(t, ">>> Preferences of 'alice' reset.\n", out)
	_, err = store.Load(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = run(PrefsReset)
	assert.NoError(t, err, "resetting a profile that was never saved is fine")

	_, err = run(PrefsAction("export"))
	assert.Error(t, err)
}

func TestLoadPreferences_SkipsBadEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Save(ctx, "bob", "braille_code=UEB;volume=11;garbage;"))

	prefs, err := loadPreferences(ctx, store, "bob", logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "UEB", prefs.Get(domain.PrefBrailleCode))
	assert.Equal(t, "ClearSpeak", prefs.Get(domain.PrefSpeechStyle))
}
