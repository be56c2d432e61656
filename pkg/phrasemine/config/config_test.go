package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/topk"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("vocabulary: vocab.yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, topk.DefaultK, cfg.TopK)
	assert.Equal(t, decide.DefaultWeights(), cfg.Weights)
	assert.Equal(t, decide.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, 3, cfg.MaxWords)
	assert.Equal(t, "hash", cfg.Embedder.Kind)
	assert.NotZero(t, cfg.Embedder.Dimension)
	assert.Equal(t, 1, cfg.Workers)
}

func TestDefaultMatchesEmptyFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	parsed, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), parsed)
}

func TestParseFull(t *testing.T) {
	yml := `
vocabulary: crypto.yaml
top_k: 5
weights:
  semantic: 0.5
  lexical: 0.5
thresholds:
  combined: 0.7
  lexical: 0.4
  semantic: 0.8
workers: 4
message_timeout: 2s
clean_messages: true
embedder:
  kind: http
  base_url: https://api.test/v1/embeddings
  model: embed-small
  cache_size: 1000
store:
  path: runs.db
metrics:
  addr: ":9100"
`
	cfg, err := Parse([]byte(yml))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.CleanMessages)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.MessageTimeout))
	assert.Equal(t, decide.Weights{Semantic: 0.5, Lexical: 0.5}, cfg.Weights)
	assert.Equal(t, decide.Thresholds{Combined: 0.7, Lexical: 0.4, Semantic: 0.8}, cfg.Thresholds)
	assert.Equal(t, 1000, cfg.Embedder.CacheSize)
	assert.Equal(t, "runs.db", cfg.Store.Path)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestParsePartialDecisionSettingsKeepDefaults(t *testing.T) {
	cfg, err := Parse([]byte("vocabulary: v.yaml\nthresholds:\n  semantic: 0.8\nweights:\n  semantic: 0.7\n"))
	require.NoError(t, err)

	assert.Equal(t, decide.Thresholds{Combined: 0.6, Lexical: 0.5, Semantic: 0.8}, cfg.Thresholds)
	assert.Equal(t, decide.Weights{Semantic: 0.7, Lexical: 0.35}, cfg.Weights)

	// a weak candidate with a little overlap must still be rejected
	ok, rec := decide.New(cfg.Weights, cfg.Thresholds).Decide("lunch", 0.2, 0.1)
	assert.False(t, ok, "combined=%v", rec.Combined)
}

func TestParseExplicitZeroThreshold(t *testing.T) {
	cfg, err := Parse([]byte("vocabulary: v.yaml\nthresholds:\n  lexical: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Thresholds.Lexical)
	assert.Equal(t, 0.6, cfg.Thresholds.Combined)
}

func TestParseAPIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	cfg, err := Parse([]byte("vocabulary: v.txt\nembedder:\n  kind: http\n  base_url: http://x\n  model: m\n  api_key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedder.APIKey)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{"missing vocabulary", "top_k: 3\n", "vocabulary path"},
		{"threshold range", "vocabulary: v\nthresholds:\n  semantic: 1.5\n", "thresholds.semantic"},
		{"http without url", "vocabulary: v\nembedder:\n  kind: http\n", "base_url"},
		{"unknown kind", "vocabulary: v\nembedder:\n  kind: word2vec\n", "unknown embedder kind"},
		{"bad duration", "vocabulary: v\nmessage_timeout: soon\n", "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			require.Error(t, err)
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("/nonexistent/phrasemine.yaml")
	assert.Error(t, err)
}

func TestLoadPhrases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phrases.txt")
	content := "# comment\nproof of stake|pos\n\nlayer two|l2|layer-2\nairdrop\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	phrases, err := LoadPhrases(path)
	require.NoError(t, err)
	require.Len(t, phrases, 3)

	assert.Equal(t, "proof of stake", phrases[0].Canonical)
	assert.Equal(t, []string{"pos"}, phrases[0].Variants)
	assert.Equal(t, []string{"layer two", "l2", "layer-2"}, phrases[1].Forms())
	assert.Empty(t, phrases[2].Variants)
}
