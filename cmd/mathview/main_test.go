package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "mathview version "))
}

func TestPrefsCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	base := []string{"--store", "file", "--store-path", dir, "--profile", "carol"}

	out := execute(t, append([]string{"prefs", "set", "braille_code", "UEB"}, base...)...)
	assert.Contains(t, out, "braille_code = UEB")

	out = execute(t, append([]string{"prefs", "show"}, base...)...)
	assert.Contains(t, out, "braille_code           UEB\n")

	out = execute(t, append([]string{"prefs", "list"}, base...)...)
	assert.Equal(t, "carol\n", out)
}
