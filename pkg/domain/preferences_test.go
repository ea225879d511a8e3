package domain_test

import (
	"testing"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_Defaults(t *testing.T) {
	p := domain.DefaultPreferences()
	for _, key := range domain.PreferenceKeys() {
		assert.NotEmpty(t, p.Get(key), "key %s must always have a value", key)
		assert.Contains(t, domain.PreferenceValues(key), p.Get(key))
	}
	assert.Equal(t, "ClearSpeak", p.Get(domain.PrefSpeechStyle))
	assert.Equal(t, domain.BrailleDisplayDots, p.Get(domain.PrefBrailleDisplay))
}

func TestPreferences_Serialize(t *testing.T) {
	p := domain.DefaultPreferences()
	want := "navigation_mode=Enhanced;navigation_verbosity=Medium;speech_style=ClearSpeak;" +
		"speech_verbosity=Medium;text_to_speech=Off;braille_code=Nemeth;braille_display=Dots;" +
		"braille_nav_highlight=EndPoints;"
	assert.Equal(t, want, p.Serialize())
}

func TestPreferences_RoundTrip(t *testing.T) {
	src := domain.DefaultPreferences()
	_, err := src.Set(domain.PrefSpeechStyle, "SimpleSpeak")
	require.NoError(t, err)
	_, err = src.Set(domain.PrefBrailleCode, "UEB")
	require.NoError(t, err)
	_, err = src.Set(domain.PrefBrailleNavHighlight, "All")
	require.NoError(t, err)

	loaded, skipped := domain.ParsePreferences(src.Serialize())
	assert.Empty(t, skipped)
	if diff := cmp.Diff(src.Map(), loaded.Map()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferences_LoadSkipsBadEntries(t *testing.T) {
	p := domain.DefaultPreferences()
	before := p.Map()

	skipped := p.Load("foo;bar=baz;speech_verbosity=Verbose;braille_code=Braille6;")

	require.Len(t, skipped, 3)
	assert.ErrorIs(t, skipped[0].Reason, domain.ErrMalformedEntry)
	assert.ErrorIs(t, skipped[1].Reason, domain.ErrUnknownPreference)
	assert.ErrorIs(t, skipped[2].Reason, domain.ErrInvalidPreferenceValue)

	want := before
	want["speech_verbosity"] = "Verbose"
	if diff := cmp.Diff(want, p.Map()); diff != "" {
		t.Errorf("unexpected preferences (-want +got):\n%s", diff)
	}
}

func TestPreferences_LoadTrimsCookieWhitespace(t *testing.T) {
	p, skipped := domain.ParsePreferences(" braille_display = ASCIIBraille ; text_to_speech=SSML")
	assert.Empty(t, skipped)
	assert.Equal(t, domain.BrailleDisplayASCII, p.Get(domain.PrefBrailleDisplay))
	assert.Equal(t, "SSML", p.Get(domain.PrefTextToSpeech))
}

func TestPreferences_LoadEmpty(t *testing.T) {
	p, skipped := domain.ParsePreferences("")
	assert.Empty(t, skipped)
	assert.Equal(t, domain.DefaultPreferences().Map(), p.Map())
}

func TestPreferences_Set(t *testing.T) {
	p := domain.DefaultPreferences()

	changed, err := p.Set(domain.PrefSpeechStyle, "ClearSpeak")
	assert.NoError(t, err)
	assert.False(t, changed, "same value is not a change")

	changed, err = p.Set(domain.PrefSpeechStyle, "SimpleSpeak")
	assert.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.Set("colour", "blue")
	assert.ErrorIs(t, err, domain.ErrUnknownPreference)
	assert.False(t, changed)
	assert.Empty(t, p.Get("colour"))

	changed, err = p.Set(domain.PrefSpeechStyle, "Loud")
	assert.ErrorIs(t, err, domain.ErrInvalidPreferenceValue)
	assert.False(t, changed)
	assert.Equal(t, "SimpleSpeak", p.Get(domain.PrefSpeechStyle))
}

func TestPreferences_Clone(t *testing.T) {
	p := domain.DefaultPreferences()
	c := p.Clone()
	_, _ = c.Set(domain.PrefBrailleCode, "UEB")
	assert.Equal(t, "Nemeth", p.Get(domain.PrefBrailleCode))
}

func TestPreferenceKey_Affects(t *testing.T) {
	tests := []struct {
		key  domain.PreferenceKey
		want domain.Artifact
	}{
		{domain.PrefNavigationMode, domain.ArtifactNone},
		{domain.PrefNavigationVerbosity, domain.ArtifactNone},
		{domain.PrefSpeechStyle, domain.ArtifactSpeech},
		{domain.PrefSpeechVerbosity, domain.ArtifactSpeech},
		{domain.PrefTextToSpeech, domain.ArtifactSpeech},
		{domain.PrefBrailleCode, domain.ArtifactBraille},
		{domain.PrefBrailleDisplay, domain.ArtifactBraille},
		{domain.PrefBrailleNavHighlight, domain.ArtifactBraille},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Affects())
		})
	}
}

func TestPreferenceKey_EngineMapping(t *testing.T) {
	assert.Equal(t, "SpeechStyle", domain.PrefSpeechStyle.EngineName())
	assert.Empty(t, domain.PrefBrailleDisplay.EngineName())
	assert.Equal(t, "None", domain.PrefTextToSpeech.EngineValue("Off"))
	assert.Equal(t, "None", domain.PrefTextToSpeech.EngineValue("Plain"))
	assert.Equal(t, "SSML", domain.PrefTextToSpeech.EngineValue("SSML"))
	assert.Equal(t, "UEB", domain.PrefBrailleCode.EngineValue("UEB"))
}
