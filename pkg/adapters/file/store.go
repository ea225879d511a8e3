package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/mathview/pkg/domain"
)

const blobExt = ".prefs"

// Store implements ports.PreferenceStore on the local filesystem, one plain
// text file per profile holding the serialized blob.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".mathview/profiles".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".mathview", "profiles")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(profile string) (string, error) {
	if profile == "" {
		return "", errors.New("profile cannot be empty")
	}
	if strings.ContainsAny(profile, `/\`) || profile == "." || profile == ".." {
		return "", fmt.Errorf("invalid profile name %q", profile)
	}
	return filepath.Join(s.BasePath, profile+blobExt), nil
}

// Save writes the blob atomically: temp file in the same directory, fsync,
// then rename over the destination.
func (s *Store) Save(ctx context.Context, profile, blob string) error {
	dest, err := s.path(profile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+profile+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.WriteString(blob); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace profile file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move profile file into place: %w", err)
	}
	return nil
}

// Load reads the blob of profile.
func (s *Store) Load(ctx context.Context, profile string) (string, error) {
	p, err := s.path(profile)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrProfileNotFound
		}
		return "", fmt.Errorf("failed to read profile file: %w", err)
	}
	return string(data), nil
}

// Delete removes the profile file. Deleting a missing profile is not an error.
func (s *Store) Delete(ctx context.Context, profile string) error {
	p, err := s.path(profile)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete profile file: %w", err)
	}
	return nil
}

// List returns the saved profiles, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != blobExt || strings.HasPrefix(name, "tmp-") {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(name, blobExt))
	}
	slices.Sort(profiles)
	return profiles, nil
}
