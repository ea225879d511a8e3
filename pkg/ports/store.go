package ports

import (
	"context"
)

// PreferenceStore persists the serialized preference blob of a profile.
// The blob is opaque to the store.
type PreferenceStore interface {
	// Save persists the blob for a profile, replacing any previous one.
	Save(ctx context.Context, profile, blob string) error

	// Load retrieves the blob for a profile.
	// Returns domain.ErrProfileNotFound if nothing was saved.
	Load(ctx context.Context, profile string) (string, error)

	// Delete removes the blob for a profile.
	Delete(ctx context.Context, profile string) error

	// List returns the profiles that have a saved blob.
	List(ctx context.Context) ([]string, error)
}
