// Package configstore persists the live {interval, limit} pair behind
// the ports.LimitStore contract.
package configstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
)

// FileStore keeps the limits in a single JSON object at a fixed path,
// fully overwritten on every update. Reads are served from an in-memory
// snapshot that an fsnotify watcher invalidates whenever the file
// changes on disk, so checks do not pay a disk read each time.
type FileStore struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu     sync.RWMutex
	cached domain.Limits
	loaded bool
}

var _ ports.LimitStore = (*FileStore)(nil)

// NewFileStore creates a file-backed limit store watching path's
// directory for external edits. Close must be called to release the
// watcher.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("limits file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	s := &FileStore{
		path:    filepath.Clean(path),
		logger:  logger,
		watcher: watcher,
	}
	go s.watch()
	return s, nil
}

// Close stops the file watcher.
func (s *FileStore) Close() error {
	return s.watcher.Close()
}

// Limits returns the current configuration, reading the file lazily on
// the first call and after every detected change.
// domain.ErrLimitsNotConfigured is returned while no configuration has
// ever been written.
func (s *FileStore) Limits() (domain.Limits, error) {
	s.mu.RLock()
	if s.loaded {
		limits := s.cached
		s.mu.RUnlock()
		return limits, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Limits{}, domain.ErrLimitsNotConfigured
	}
	if err != nil {
		return domain.Limits{}, fmt.Errorf("failed to read limits file: %w", err)
	}

	var limits domain.Limits
	if err := json.Unmarshal(raw, &limits); err != nil {
		return domain.Limits{}, fmt.Errorf("failed to decode limits file: %w", err)
	}

	s.cached = limits
	s.loaded = true
	return limits, nil
}

// SetLimits validates and persists the new configuration, replacing the
// file contents wholesale. On failure the previous configuration
// remains in effect.
func (s *FileStore) SetLimits(limits domain.Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("failed to encode limits: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write limits file: %w", err)
	}
	s.cached = limits
	s.loaded = true
	return nil
}

func (s *FileStore) watch() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.mu.Lock()
			s.loaded = false
			s.mu.Unlock()
			s.logger.Debug("limits file changed on disk", zap.String("path", s.path))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("limits file watcher error", zap.Error(err))
		}
	}
}
