package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// Store holds the current rule snapshot behind an atomic pointer. Reload
// builds a complete new snapshot before swapping, so readers never observe
// a partially updated rule set.
type Store struct {
	path    string
	logger  logger.Logger
	current atomic.Pointer[Snapshot]
}

// NewStore loads the rules file and returns a store watching that path.
func NewStore(path string, log logger.Logger) (*Store, error) {
	snap, err := LoadRules(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, logger: log}
	s.current.Store(snap)
	return s, nil
}

// NewStoreFromRules builds a store from an in-memory rule set. Used by the
// CLI and tests when no rules file is given.
func NewStoreFromRules(r *Rules, log logger.Logger) (*Store, error) {
	snap, err := NewSnapshot(r)
	if err != nil {
		return nil, err
	}

	s := &Store{logger: log}
	s.current.Store(snap)
	return s, nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload re-reads the rules file and swaps the snapshot. A broken file
// leaves the previous snapshot in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("store has no rules file to reload")
	}

	snap, err := LoadRules(s.path)
	if err != nil {
		return err
	}

	s.current.Store(snap)
	s.logger.Info("Rules reloaded",
		logger.String("path", s.path),
		logger.Int("policyRules", len(snap.Rules.PolicyRules)),
		logger.Int("routingRules", len(snap.Rules.RoutingRules)),
	)
	return nil
}

// Watch reloads the snapshot on file changes until the context is done.
// Editors often emit bursts of write events, so reloads are debounced.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("store has no rules file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops the
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := s.Reload(); err != nil {
						s.logger.Error("Failed to reload rules, keeping previous snapshot",
							logger.String("path", s.path),
							logger.Error(err),
						)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("Rules watcher error", logger.Error(err))
			}
		}
	}()

	return nil
}
