package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/langmodel"
	"github.com/cognicore/noweats/pkg/noweats/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]store.Run
	models map[string]langmodel.Features
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:   make(map[string]store.Run),
		models: make(map[string]langmodel.Features),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of r, replacing any run with the same ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// LatestRun returns the run with the greatest ID.
func (s *Store) LatestRun(ctx context.Context) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest string
	for id := range s.runs {
		if id > latest {
			latest = id
		}
	}
	if latest == "" {
		return store.Run{}, fmt.Errorf("run: %w", internalerr.ErrNotFound)
	}
	return copyRun(s.runs[latest]), nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	out := make([]store.RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, store.RunSummary{ID: r.ID, CreatedAt: r.CreatedAt, Stats: r.Stats})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveModel stores a copy of the features under name.
func (s *Store) SaveModel(ctx context.Context, name string, f langmodel.Features) error {
	if name == "" {
		return fmt.Errorf("save model: empty name: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models[name] = copyFeatures(f)
	return nil
}

// LoadModel returns the features stored under name.
func (s *Store) LoadModel(ctx context.Context, name string) (langmodel.Features, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.models[name]
	if !ok {
		return langmodel.Features{}, fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}
	return copyFeatures(f), nil
}

func copyRun(r store.Run) store.Run {
	out := r
	out.Counts = copyCounts(r.Counts)
	out.Merged = copyCounts(r.Merged)
	out.Ranking = append([]string(nil), r.Ranking...)
	return out
}

func copyCounts(c counts.Counts) counts.Counts {
	out := counts.New()
	for k, v := range c {
		out[k] = v
	}
	return out
}

func copyFeatures(f langmodel.Features) langmodel.Features {
	return langmodel.Features{
		Prefixes: copyInt64Map(f.Prefixes),
		Suffixes: copyInt64Map(f.Suffixes),
		Bags:     copyInt64Map(f.Bags),
	}
}

func copyInt64Map(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ store.Store = (*Store)(nil)
