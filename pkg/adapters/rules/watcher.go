// Package rules delivers rule files read from disk as domain.RuleFileLoaded
// commands, either on demand or by watching a directory.
package rules

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce is how long a file must stay quiet before it is delivered.
const DefaultDebounce = 300 * time.Millisecond

// IsRuleFile reports whether path names a YAML rule file.
func IsRuleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Read loads a rule file and checks that it parses as YAML.
func Read(path string) (domain.RuleFileLoaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RuleFileLoaded{}, fmt.Errorf("read rule file: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.RuleFileLoaded{}, fmt.Errorf("rule file %s is not valid YAML: %w", filepath.Base(path), err)
	}
	return domain.RuleFileLoaded{Name: filepath.Base(path), Contents: string(data)}, nil
}

// Watcher reports rule files created or rewritten in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger configures a logger for the Watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns the stream of loaded rule files. The
// channel is closed once ctx is done. Files that fail to parse are logged
// and skipped.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.RuleFileLoaded, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching rule files", "dir", w.dir)

	out := make(chan domain.RuleFileLoaded)
	go w.run(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.RuleFileLoaded) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !IsRuleFile(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("rule watcher error", "err", err)

		case now := <-tick.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.debounce {
					continue
				}
				delete(pending, path)

				loaded, err := Read(path)
				if err != nil {
					w.logger.Warn("skipping rule file", "path", path, "err", err)
					continue
				}
				select {
				case out <- loaded:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
