package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPreferenceStoreContract runs a suite of tests to verify that a PreferenceStore
// implementation adheres to the defined interface contract.
func RunPreferenceStoreContract(t *testing.T, store PreferenceStore) {
	ctx := context.Background()
	profile := "contract-profile-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		prefs := domain.DefaultPreferences()
		_, err := prefs.Set(domain.PrefBrailleCode, "UEB")
		require.NoError(t, err)
		blob := prefs.Serialize()

		err = store.Save(ctx, profile, blob)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, blob, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, "speech_style=ClearSpeak;"))
		require.NoError(t, store.Save(ctx, profile, "speech_style=SimpleSpeak;"))

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "speech_style=SimpleSpeak;", loaded)
	})

	t.Run("Empty Blob", func(t *testing.T) {
		id := profile + "-empty"
		require.NoError(t, store.Save(ctx, id, ""))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "an empty blob is still a saved profile")
		assert.Empty(t, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, domain.DefaultPreferences().Serialize()))

		err := store.Delete(ctx, profile)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound, "Load after Delete should return ErrProfileNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := profile + "-1"
		id2 := profile + "-2"
		_ = store.Save(ctx, id1, "")
		_ = store.Save(ctx, id2, "braille_code=UEB;")

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		profiles, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, profiles, id1)
		assert.Contains(t, profiles, id2)
	})
}
