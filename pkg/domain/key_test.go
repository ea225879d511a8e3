package domain_test

import (
	"testing"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestKeyEvent_IsNavigation(t *testing.T) {
	allowed := []int{8, 13, 32, 35, 36, 37, 38, 39, 40}
	for c := 48; c <= 57; c++ {
		allowed = append(allowed, c)
	}
	for _, code := range allowed {
		assert.True(t, domain.KeyEvent{Code: code}.IsNavigation(), "code %d", code)
	}
	for _, code := range []int{0, 9, 27, 33, 34, 46, 47, 58, 65, 112} {
		assert.False(t, domain.KeyEvent{Code: code}.IsNavigation(), "code %d", code)
	}
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name     string
		wantKey  string
		wantCode int
	}{
		{"ArrowRight", "ArrowRight", domain.KeyCodeArrowRight},
		{"right", "ArrowRight", domain.KeyCodeArrowRight},
		{"home", "Home", domain.KeyCodeHome},
		{"Space", "Space", domain.KeyCodeSpace},
		{"7", "7", 55},
		{"Esc", "Escape", 27},
		{"F1", "F1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := domain.KeyFromName(tt.name)
			assert.Equal(t, tt.wantKey, ev.Key)
			assert.Equal(t, tt.wantCode, ev.Code)
		})
	}
	assert.True(t, domain.KeyFromName("Esc").IsEscape())
	assert.False(t, domain.KeyFromName("Esc").IsNavigation())
}

func TestFlags_Mark(t *testing.T) {
	var f domain.Flags
	f.Mark(domain.ArtifactSpeech)
	assert.Equal(t, domain.Flags{SpeechStale: true}, f)
	f.Mark(domain.ArtifactBraille)
	assert.Equal(t, domain.Flags{SpeechStale: true, BrailleStale: true}, f)
	assert.False(t, f.Clean())

	var g domain.Flags
	g.Mark(domain.ArtifactNone)
	assert.True(t, g.Clean())
}

func TestNewSession(t *testing.T) {
	s := domain.NewSession("abc")
	assert.False(t, s.HasMarkup())
	assert.Empty(t, s.FocusedNodeID)
	assert.Empty(t, s.SpeechText)
	assert.Empty(t, s.BrailleText)

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.ID)
	assert.Equal(t, "Enhanced", snap.Preferences["navigation_mode"])
}
