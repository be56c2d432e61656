// Package store persists extraction runs and cached vocabulary embeddings.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
)

// Store is the persistence interface for extraction runs
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	FinishRun(ctx context.Context, id string, stats RunStats, finishedAt time.Time) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Results
	SaveResults(ctx context.Context, runID string, results []MessageResult) error
	GetResults(ctx context.Context, runID string) ([]MessageResult, error)

	// Vocabulary embeddings, keyed by encoder model id
	SaveVocabEmbeddings(ctx context.Context, modelID string, entries []string, vecs [][]float64) error
	GetVocabEmbeddings(ctx context.Context, modelID string, entries []string) ([][]float64, bool, error)
}

// Run is one batch extraction
type Run struct {
	ID         string
	Source     string // corpus path or other origin
	Config     string // YAML snapshot of the settings used
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Stats      RunStats
}

// RunStats summarizes a finished run
type RunStats struct {
	Messages int
	Phrases  int
	Failures int
}

// MessageResult is the stored outcome for one message of a run
type MessageResult struct {
	Index     int
	MessageID string
	Text      string
	Phrases   []string
	Error     string // empty when extraction succeeded
	Records   []decide.ScoreRecord
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a lexically sortable unique run id.
func NewRunID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
