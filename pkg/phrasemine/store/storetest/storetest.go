// Package storetest holds behaviour checks shared by store implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

// Run exercises st through the whole store.Store interface.
func Run(t *testing.T, st store.Store) {
	t.Helper()
	t.Run("Runs", func(t *testing.T) { testRuns(t, st) })
	t.Run("Results", func(t *testing.T) { testResults(t, st) })
	t.Run("VocabEmbeddings", func(t *testing.T) { testVocabEmbeddings(t, st) })
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := st.CreateRun(ctx, store.Run{Source: "a.jsonl", Config: "top_k: 10\n", StartedAt: start})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID, "CreateRun should assign an id")
	second, err := st.CreateRun(ctx, store.Run{Source: "b.jsonl", StartedAt: start.Add(time.Minute)})
	require.NoError(t, err)

	stats := store.RunStats{Messages: 3, Phrases: 4, Failures: 1}
	require.NoError(t, st.FinishRun(ctx, first.ID, stats, start.Add(time.Second)))

	got, err := st.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.jsonl", got.Source)
	assert.Equal(t, "top_k: 10\n", got.Config)
	assert.Equal(t, stats, got.Stats)
	assert.True(t, got.StartedAt.Equal(start), "started_at = %v", got.StartedAt)
	assert.True(t, got.FinishedAt.Equal(start.Add(time.Second)), "finished_at = %v", got.FinishedAt)

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(runs), 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest run first")

	limited, err := st.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	assert.ErrorIs(t, st.FinishRun(ctx, "missing", stats, start), internalerr.ErrNotFound)
}

func testResults(t *testing.T, st store.Store) {
	ctx := context.Background()
	run, err := st.CreateRun(ctx, store.Run{Source: "results"})
	require.NoError(t, err)

	results := []store.MessageResult{
		{Index: 1, MessageID: "m2", Text: "nothing here"},
		{
			Index:     0,
			MessageID: "m1",
			Text:      "incentivized testnet on polygon",
			Phrases:   []string{"incentivized testnet", "polygon"},
			Records: []decide.ScoreRecord{
				{Phrase: "incentivized testnet", Semantic: 0.9, Lexical: 1, Combined: 0.935, Accepted: true},
				{Phrase: "polygon", Semantic: 0.9, Lexical: 1, Combined: 0.935, Accepted: true},
			},
		},
		{Index: 2, MessageID: "m3", Text: "boom", Error: "candidate generation failed"},
	}
	require.NoError(t, st.SaveResults(ctx, run.ID, results))

	got, err := st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, []string{"incentivized testnet", "polygon"}, got[0].Phrases)
	require.Len(t, got[0].Records, 2)
	assert.True(t, got[0].Records[0].Accepted)
	assert.Equal(t, 0.935, got[0].Records[0].Combined)
	assert.Empty(t, got[1].Phrases)
	assert.Empty(t, got[1].Error)
	assert.NotEmpty(t, got[2].Error, "error side channel lost")

	// Saving the same index again replaces it.
	require.NoError(t, st.SaveResults(ctx, run.ID, []store.MessageResult{{Index: 1, Text: "nothing here", Phrases: []string{"here"}}}))
	got, err = st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"here"}, got[1].Phrases)

	assert.ErrorIs(t, st.SaveResults(ctx, "missing", results), internalerr.ErrNotFound)
}

func testVocabEmbeddings(t *testing.T, st store.Store) {
	ctx := context.Background()
	entries := []string{"testnet", "polygon"}
	vecs := [][]float64{{0.1, 0.2}, {0.3, 0.4}}

	_, ok, err := st.GetVocabEmbeddings(ctx, "hash-ngram-2", entries)
	require.NoError(t, err)
	require.False(t, ok, "empty cache should miss")
	require.NoError(t, st.SaveVocabEmbeddings(ctx, "hash-ngram-2", entries, vecs))

	got, ok, err := st.GetVocabEmbeddings(ctx, "hash-ngram-2", []string{"polygon", "testnet"})
	require.NoError(t, err)
	require.True(t, ok, "expected cache hit")
	assert.Equal(t, [][]float64{{0.3, 0.4}, {0.1, 0.2}}, got, "vectors in requested order")

	_, ok, _ = st.GetVocabEmbeddings(ctx, "other-model", entries)
	assert.False(t, ok, "vectors must not leak across models")
	_, ok, _ = st.GetVocabEmbeddings(ctx, "hash-ngram-2", []string{"testnet", "airdrop"})
	assert.False(t, ok, "partial coverage should miss")
	assert.ErrorIs(t, st.SaveVocabEmbeddings(ctx, "m", entries, vecs[:1]), internalerr.ErrInvalidInput)
}
