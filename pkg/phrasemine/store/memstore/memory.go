package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]store.Run
	results map[string][]store.MessageResult
	vectors map[string][]float64 // modelID + "\x00" + entry
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:    make(map[string]store.Run),
		results: make(map[string][]store.MessageResult),
		vectors: make(map[string][]float64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun stores a new run, assigning an id and start time when missing.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = store.NewRunID(r.StartedAt)
	}
	s.runs[r.ID] = r
	return r, nil
}

// FinishRun records the final stats of a run.
func (s *Store) FinishRun(ctx context.Context, id string, stats store.RunStats, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	r.Stats = stats
	r.FinishedAt = finishedAt
	s.runs[id] = r
	return nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// ListRuns returns runs newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveResults appends results to a run, replacing any with the same index.
func (s *Store) SaveResults(ctx context.Context, runID string, results []store.MessageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	byIndex := make(map[int]store.MessageResult)
	for _, r := range s.results[runID] {
		byIndex[r.Index] = r
	}
	for _, r := range results {
		byIndex[r.Index] = copyResult(r)
	}
	merged := make([]store.MessageResult, 0, len(byIndex))
	for _, r := range byIndex {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Index < merged[j].Index })
	s.results[runID] = merged
	return nil
}

// GetResults returns the results of a run ordered by message index.
func (s *Store) GetResults(ctx context.Context, runID string) ([]store.MessageResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	out := make([]store.MessageResult, len(s.results[runID]))
	for i, r := range s.results[runID] {
		out[i] = copyResult(r)
	}
	return out, nil
}

// SaveVocabEmbeddings caches one vector per entry for modelID.
func (s *Store) SaveVocabEmbeddings(ctx context.Context, modelID string, entries []string, vecs [][]float64) error {
	if len(entries) != len(vecs) {
		return fmt.Errorf("%w: %d vectors for %d entries", internalerr.ErrInvalidInput, len(vecs), len(entries))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range entries {
		s.vectors[vectorKey(modelID, e)] = append([]float64(nil), vecs[i]...)
	}
	return nil
}

// GetVocabEmbeddings returns cached vectors in entry order. ok is false
// unless every entry is cached.
func (s *Store) GetVocabEmbeddings(ctx context.Context, modelID string, entries []string) ([][]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]float64, len(entries))
	for i, e := range entries {
		vec, ok := s.vectors[vectorKey(modelID, e)]
		if !ok {
			return nil, false, nil
		}
		out[i] = append([]float64(nil), vec...)
	}
	return out, true, nil
}

func vectorKey(modelID, entry string) string {
	return strings.Join([]string{modelID, entry}, "\x00")
}

func copyResult(r store.MessageResult) store.MessageResult {
	r.Phrases = append([]string(nil), r.Phrases...)
	r.Records = append([]decide.ScoreRecord(nil), r.Records...)
	return r
}
