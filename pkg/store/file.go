package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/floorplace/floorplace/pkg/observability"
)

// FileStore is a file-based run store for CLI usage.
// Runs are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based run store.
// If baseDir is empty, defaults to ~/.config/floorplace/runs/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "floorplace", "runs")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Put saves or replaces a run.
func (s *FileStore) Put(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		err = fmt.Errorf("marshal run: %w", err)
		observability.Store().OnPut(ctx, run.ID, 0, time.Since(start), err)
		return err
	}

	if err := os.WriteFile(s.runPath(run.ID), data, 0600); err != nil {
		err = fmt.Errorf("write run file: %w", err)
		observability.Store().OnPut(ctx, run.ID, len(data), time.Since(start), err)
		return err
	}

	observability.Store().OnPut(ctx, run.ID, len(data), time.Since(start), nil)
	return nil
}

// Get retrieves a run by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()

	data, err := os.ReadFile(s.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			observability.Store().OnGet(ctx, id, false, time.Since(start))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read run file: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}

	observability.Store().OnGet(ctx, id, true, time.Since(start))
	return &run, nil
}

// List returns summaries of all runs, newest first.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			// Skip unparseable files rather than failing the listing.
			continue
		}
		summaries = append(summaries, summarize(&run))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a run.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.runPath(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove run file: %w", err)
	}
	return nil
}

// Close does nothing for file stores.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
