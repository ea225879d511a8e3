package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/mathview/pkg/adapters/sqlite"
	"github.com/aretw0/mathview/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PreferenceStore = (*sqlite.Store)(nil)

func newTestStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunPreferenceStoreContract(t, newTestStore(t, filepath.Join(t.TempDir(), "prefs.db")))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	ctx := context.Background()

	first, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "bob", "navigation_mode=Character;"))
	require.NoError(t, first.Close())

	second := newTestStore(t, path)
	blob, err := second.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "navigation_mode=Character;", blob)

	profiles, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, profiles)
}
