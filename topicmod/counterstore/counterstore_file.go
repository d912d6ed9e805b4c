package counterstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileCounterStore keeps the full counter map in memory and writes it out as
// a single JSON document after every mutation, using a write-to-temp-file
// then atomic-rename discipline. A crash mid-write never corrupts the
// previous durable state.
//
// Save failures are logged and the in-memory state stays authoritative; a
// later successful save reconciles.
type FileCounterStore struct {
	lk       sync.Mutex
	path     string
	logger   *slog.Logger
	counters map[string]Counter
}

func NewFileCounterStore(path string, logger *slog.Logger) (*FileCounterStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("subsystem", "counterstore", "path", path)

	s := &FileCounterStore{
		path:     path,
		logger:   logger,
		counters: make(map[string]Counter),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no pre-existing counter state, starting empty")
		return s, nil
	} else if err != nil {
		logger.Warn("failed reading counter state, starting empty", "err", err)
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.counters); err != nil {
		logger.Warn("counter state file is invalid, starting empty", "err", err)
		s.counters = make(map[string]Counter)
		return s, nil
	}
	logger.Info("loaded counter state", "chats", len(s.counters))
	return s, nil
}

func (s *FileCounterStore) Get(ctx context.Context, chatID string) (Counter, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.counters[chatID], nil
}

func (s *FileCounterStore) Apply(ctx context.Context, chatID string, fn func(*Counter)) (Counter, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	c := s.counters[chatID]
	fn(&c)
	s.counters[chatID] = c
	if err := s.save(); err != nil {
		// in-memory state is authoritative; the next successful save reconciles
		s.logger.Error("failed persisting counter state", "err", err, "chatID", chatID)
	}
	return c, nil
}

func (s *FileCounterStore) ResetAll(ctx context.Context) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.counters = make(map[string]Counter)
	return s.save()
}

// caller must hold s.lk
func (s *FileCounterStore) save() error {
	raw, err := json.MarshalIndent(s.counters, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding counter state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("writing counter state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing counter state: %w", err)
	}
	return nil
}
