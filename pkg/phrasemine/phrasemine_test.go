package phrasemine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/phrasemine/pkg/phrasemine/candidates"
	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/metrics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
	"github.com/cognicore/phrasemine/pkg/phrasemine/vocab"
)

// constOracle scores every pair the same.
type constOracle struct {
	sim  float64
	fail string // Embed fails for this text
}

func (o constOracle) Embed(_ context.Context, text string) (oracle.Embedding, error) {
	if o.fail != "" && text == o.fail {
		return nil, errors.New("encoder down")
	}
	return oracle.Embedding{1, 0}, nil
}

func (o constOracle) ModelID() string                          { return "const" }
func (o constOracle) Similarity(_, _ oracle.Embedding) float64 { return o.sim }

// slowOracle blocks on one text until its context ends.
type slowOracle struct {
	constOracle
	slow string
}

func (o slowOracle) Embed(ctx context.Context, text string) (oracle.Embedding, error) {
	if text == o.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return o.constOracle.Embed(ctx, text)
}

func fixedCandidates(cands ...string) candidates.Generator {
	return candidates.GeneratorFunc(func(context.Context, string) ([]string, error) {
		return cands, nil
	})
}

func newTestExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	if opts.Vocabulary == nil {
		v, err := vocab.New([]string{"testnet", "polygon", "incentivized"})
		require.NoError(t, err)
		opts.Vocabulary = v
	}
	if opts.Oracle == nil {
		opts.Oracle = constOracle{sim: 0.9}
	}
	if opts.K == 0 {
		opts.K = 3
	}
	e, err := New(context.Background(), opts)
	require.NoError(t, err)
	return e
}

func TestExtractTestnetScenario(t *testing.T) {
	msg := "We are launching incentivized testnet on polygon today"
	e := newTestExtractor(t, Options{
		Generator: fixedCandidates("incentivized testnet", "on", "Incentivized Testnet", "polygon"),
	})

	res := e.Extract(context.Background(), msg)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"incentivized testnet", "polygon"}, res.Phrases)
	require.Len(t, res.Records, 4)

	rec := res.Records[0]
	assert.InDelta(t, 0.9, rec.Semantic, 1e-9)
	assert.InDelta(t, 1.0, rec.Lexical, 1e-9)
	assert.True(t, rec.Accepted)
}

func TestExtractWithRuleGenerator(t *testing.T) {
	e := newTestExtractor(t, Options{Stopwords: stoplist.English()})
	res := e.Extract(context.Background(), "We are launching incentivized testnet on polygon today")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Phrases, "launching incentivized testnet")
	for _, p := range res.Phrases {
		assert.Contains(t, "We are launching incentivized testnet on polygon today", p)
	}
}

func TestScoreCandidatesRejectsLowScores(t *testing.T) {
	e := newTestExtractor(t, Options{Oracle: constOracle{sim: 0.5}})
	phrases, records, err := e.ScoreCandidates(context.Background(), "zkSync airdrop and polygon", []string{"airdrop", "polygon", "  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"polygon"}, phrases)
	require.Len(t, records, 3)
	assert.False(t, records[0].Accepted)
	assert.Zero(t, records[2].Lexical)
}

func TestNewRejectsEmptyVocabulary(t *testing.T) {
	_, err := New(context.Background(), Options{Oracle: constOracle{sim: 1}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidVocabulary)

	_, err = New(context.Background(), Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestNewDecisionSettings(t *testing.T) {
	e := newTestExtractor(t, Options{})
	assert.Equal(t, decide.DefaultWeights(), e.decider.Weights())
	assert.Equal(t, decide.DefaultThresholds(), e.decider.Thresholds())

	// explicit zeros are kept, not replaced by defaults
	th := decide.Thresholds{Semantic: 0.9}
	e = newTestExtractor(t, Options{Thresholds: &th})
	assert.Equal(t, th, e.decider.Thresholds())
	assert.Equal(t, decide.DefaultWeights(), e.decider.Weights())
}

func TestNewUsesPrecomputedEmbeddings(t *testing.T) {
	v, err := vocab.New([]string{"defi"})
	require.NoError(t, err)
	emb, err := vocab.NewEmbedded(v, []oracle.Embedding{{0, 1}}, "const")
	require.NoError(t, err)

	e, err := New(context.Background(), Options{Embedded: emb, Oracle: constOracle{sim: 0.9}})
	require.NoError(t, err)
	assert.Equal(t, []string{"defi"}, e.Vocabulary().Entries())
	assert.Equal(t, oracle.Embedding{0, 1}, e.Embedded().Vectors[0])
}

func TestScoreMessagesKeepsOrder(t *testing.T) {
	gen := candidates.GeneratorFunc(func(_ context.Context, msg string) ([]string, error) {
		return strings.Fields(msg), nil
	})
	for _, workers := range []int{1, 4} {
		e := newTestExtractor(t, Options{Generator: gen, Workers: workers})
		msgs := []string{"polygon", "", "testnet mainnet", "nothing", "incentivized"}

		results, err := e.ScoreMessages(context.Background(), msgs)
		require.NoError(t, err)
		require.Len(t, results, len(msgs))
		for i, r := range results {
			assert.Equal(t, msgs[i], r.Message)
			assert.NoError(t, r.Err)
		}
		assert.Equal(t, []string{"polygon"}, results[0].Phrases)
		assert.Empty(t, results[1].Phrases)
		assert.Equal(t, []string{"testnet", "mainnet"}, results[2].Phrases)
		assert.Empty(t, results[3].Phrases, "stopword candidate")
		assert.Equal(t, []string{"incentivized"}, results[4].Phrases)
	}
}

func TestScoreMessagesFailureSideChannel(t *testing.T) {
	gen := candidates.GeneratorFunc(func(_ context.Context, msg string) ([]string, error) {
		if msg == "boom" {
			return nil, errors.New("tagger crashed")
		}
		return strings.Fields(msg), nil
	})
	rec := metrics.New()
	e := newTestExtractor(t, Options{
		Generator: gen,
		Oracle:    constOracle{sim: 0.9, fail: "bad"},
		Metrics:   rec,
	})

	results, err := e.ScoreMessages(context.Background(), []string{"polygon", "boom", "bad", "none"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{"polygon"}, results[0].Phrases)
	assert.ErrorIs(t, results[1].Err, internalerr.ErrCandidateGeneration)
	assert.Empty(t, results[1].Phrases)
	assert.Error(t, results[2].Err)
	assert.Empty(t, results[2].Phrases)
	assert.NoError(t, results[3].Err)
}

func TestScoreMessagesCancelled(t *testing.T) {
	e := newTestExtractor(t, Options{Generator: fixedCandidates("polygon")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScoreMessages(ctx, []string{"polygon", "testnet"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreMessagesMessageTimeout(t *testing.T) {
	gen := candidates.GeneratorFunc(func(_ context.Context, msg string) ([]string, error) {
		return strings.Fields(msg), nil
	})
	e := newTestExtractor(t, Options{
		Generator:      gen,
		Oracle:         slowOracle{constOracle: constOracle{sim: 0.9}, slow: "slow"},
		MessageTimeout: 20 * time.Millisecond,
	})

	msgs := []string{"polygon", "slow", "testnet"}
	results, err := e.ScoreMessages(context.Background(), msgs)
	require.NoError(t, err, "a message deadline must not abort the batch")
	require.Len(t, results, len(msgs))
	for i, r := range results {
		assert.Equal(t, msgs[i], r.Message)
	}

	assert.NoError(t, results[0].Err)
	assert.Equal(t, []string{"polygon"}, results[0].Phrases)
	assert.ErrorIs(t, results[1].Err, context.DeadlineExceeded)
	assert.Empty(t, results[1].Phrases)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, []string{"testnet"}, results[2].Phrases)
}

func TestExtractCleansBeforeGeneration(t *testing.T) {
	var seen string
	gen := candidates.GeneratorFunc(func(_ context.Context, text string) ([]string, error) {
		seen = text
		return append(strings.Fields(text), text), nil
	})
	e := newTestExtractor(t, Options{Generator: gen, CleanMessages: true})

	raw := "layer 2 rollups 🚀"
	res := e.Extract(context.Background(), raw)
	require.NoError(t, res.Err)

	assert.Equal(t, "layer rollups", seen, "generator sees cleaned text")
	assert.Equal(t, raw, res.Message)
	require.Len(t, res.Records, 3)
	// "layer rollups" is accepted but does not occur in the raw message
	assert.True(t, res.Records[2].Accepted)
	assert.Equal(t, []string{"layer", "rollups"}, res.Phrases)
}
