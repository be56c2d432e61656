// Package phrasemine extracts domain keyphrases from short messages by
// scoring generated candidates against a curated vocabulary.
package phrasemine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/phrasemine/pkg/phrasemine/candidates"
	"github.com/cognicore/phrasemine/pkg/phrasemine/clean"
	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/lexical"
	"github.com/cognicore/phrasemine/pkg/phrasemine/metrics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
	"github.com/cognicore/phrasemine/pkg/phrasemine/topk"
	"github.com/cognicore/phrasemine/pkg/phrasemine/validate"
	"github.com/cognicore/phrasemine/pkg/phrasemine/vocab"
)

// Stage names a step of per-message processing.
type Stage string

const (
	StageCandidatesGenerated Stage = "candidates_generated"
	StageScored              Stage = "scored"
	StageValidated           Stage = "validated"
	StageDone                Stage = "done"
)

// Extractor is the keyphrase extraction facade. It is safe for concurrent
// use; all state is read-only after New.
type Extractor struct {
	vocab     *vocab.Vocabulary
	refs      [][]float64
	oracle    oracle.Oracle
	generator candidates.Generator
	matcher   *lexical.Matcher
	agg       *topk.Aggregator
	decider   *decide.Decider
	validator *validate.Validator

	workers int
	timeout time.Duration
	clean   bool
	log     *slog.Logger
	metrics *metrics.Recorder
}

// Options configures an Extractor
type Options struct {
	// Vocabulary is embedded with Oracle at construction. Ignored when
	// Embedded is set and was produced by the same model.
	Vocabulary *vocab.Vocabulary
	Embedded   *vocab.Embedded

	Oracle    oracle.Oracle
	Generator candidates.Generator // defaults to a RuleGenerator over Stopwords
	Stopwords *stoplist.Set        // defaults to stoplist.English()

	K          int                // top-k matches averaged; <= 0 uses topk.DefaultK
	Weights    *decide.Weights    // nil uses decide.DefaultWeights
	Thresholds *decide.Thresholds // nil uses decide.DefaultThresholds
	MaxWords   int                // candidate length limit for the default generator

	Workers        int           // parallel messages in ScoreMessages; <= 1 is sequential
	MessageTimeout time.Duration // per-message deadline; 0 disables
	CleanMessages  bool          // run clean.Message before candidate generation

	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Result is the outcome for one message.
type Result struct {
	Message string               `json:"message"`
	Phrases []string             `json:"phrases"`
	Records []decide.ScoreRecord `json:"records,omitempty"`
	// Err is set when extraction failed for this message; Phrases is then
	// empty. A nil Err with no phrases means none were found.
	Err error `json:"-"`
}

// New validates options and embeds the vocabulary once.
func New(ctx context.Context, opts Options) (*Extractor, error) {
	if opts.Oracle == nil {
		return nil, fmt.Errorf("%w: oracle is required", internalerr.ErrInvalidConfig)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	emb, err := resolveVocabulary(ctx, opts, log)
	if err != nil {
		return nil, err
	}

	stops := opts.Stopwords
	if stops == nil {
		stops = stoplist.English()
	}
	gen := opts.Generator
	if gen == nil {
		gen = candidates.NewRuleGenerator(stops, candidates.WithMaxWords(opts.MaxWords))
	}
	weights := decide.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	thresholds := decide.DefaultThresholds()
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}

	refs := make([][]float64, len(emb.Vectors))
	for i, v := range emb.Vectors {
		refs[i] = v
	}

	e := &Extractor{
		vocab:     emb.Vocabulary,
		refs:      refs,
		oracle:    opts.Oracle,
		generator: gen,
		matcher:   lexical.NewMatcher(emb.Vocabulary.Entries()),
		decider:   decide.New(weights, thresholds),
		validator: validate.New(stops),
		workers:   opts.Workers,
		timeout:   opts.MessageTimeout,
		clean:     opts.CleanMessages,
		log:       log,
		metrics:   opts.Metrics,
	}
	e.agg = topk.NewAggregator(opts.K, func(a, b []float64) float64 {
		return e.oracle.Similarity(a, b)
	})
	return e, nil
}

func resolveVocabulary(ctx context.Context, opts Options, log *slog.Logger) (*vocab.Embedded, error) {
	if emb := opts.Embedded; emb != nil && emb.Vocabulary != nil && emb.Vocabulary.Len() > 0 {
		if emb.ModelID == opts.Oracle.ModelID() {
			return emb, nil
		}
		log.Warn("vocabulary embeddings from another model, re-embedding",
			"have", emb.ModelID, "want", opts.Oracle.ModelID())
		return vocab.Embed(ctx, emb.Vocabulary, opts.Oracle)
	}
	if opts.Vocabulary == nil || opts.Vocabulary.Len() == 0 {
		return nil, fmt.Errorf("%w: vocabulary is empty", internalerr.ErrInvalidVocabulary)
	}
	return vocab.Embed(ctx, opts.Vocabulary, opts.Oracle)
}

// Vocabulary returns the vocabulary candidates are scored against.
func (e *Extractor) Vocabulary() *vocab.Vocabulary { return e.vocab }

// Embedded returns the vocabulary with its embeddings, for persisting.
func (e *Extractor) Embedded() *vocab.Embedded {
	vecs := make([]oracle.Embedding, len(e.refs))
	for i, r := range e.refs {
		vecs[i] = r
	}
	return &vocab.Embedded{Vocabulary: e.vocab, Vectors: vecs, ModelID: e.oracle.ModelID()}
}

// ScoreCandidates scores pre-generated candidates for one message and
// returns the accepted phrases that survive validation against message, in
// candidate order, along with a record for every candidate.
func (e *Extractor) ScoreCandidates(ctx context.Context, message string, cands []string) ([]string, []decide.ScoreRecord, error) {
	records := make([]decide.ScoreRecord, 0, len(cands))
	accepted := make([]string, 0, len(cands))
	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return nil, records, err
		}
		vec, err := e.oracle.Embed(ctx, strings.ToLower(cand))
		if err != nil {
			return nil, records, fmt.Errorf("embed candidate %q: %w", cand, err)
		}
		semantic := e.agg.Mean(vec, e.refs)
		lex := e.matcher.Score(cand)
		ok, rec := e.decider.Decide(cand, semantic, lex)
		records = append(records, rec)
		e.metrics.Decision(ok)
		if ok {
			accepted = append(accepted, cand)
		}
	}
	e.log.Debug("phrasemine stage", "stage", StageScored, "candidates", len(cands), "accepted", len(accepted))

	kept := e.validator.Filter(accepted, message)
	e.metrics.Dropped(len(accepted) - len(kept))
	e.log.Debug("phrasemine stage", "stage", StageValidated, "kept", len(kept))
	return kept, records, nil
}

// Extract generates candidates for a single message and scores them.
// Candidate generation failure is reported as ErrCandidateGeneration.
func (e *Extractor) Extract(ctx context.Context, message string) Result {
	start := time.Now()
	res := e.extract(ctx, message)
	e.metrics.Message(res.Err != nil, time.Since(start))
	return res
}

func (e *Extractor) extract(ctx context.Context, message string) Result {
	res := Result{Message: message, Phrases: []string{}}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text := message
	if e.clean {
		text = clean.Message(message)
	}
	cands, err := e.generator.Generate(ctx, text)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", internalerr.ErrCandidateGeneration, err)
		return res
	}
	e.log.Debug("phrasemine stage", "stage", StageCandidatesGenerated, "candidates", len(cands))

	phrases, records, err := e.ScoreCandidates(ctx, message, cands)
	res.Records = records
	if err != nil {
		res.Err = err
		return res
	}
	res.Phrases = phrases
	e.log.Debug("phrasemine stage", "stage", StageDone, "phrases", len(phrases))
	return res
}

// ScoreMessages extracts keyphrases from every message. The output has one
// Result per input in the same order. Per-message failures are logged and
// recorded in Result.Err without stopping the batch; only cancellation of
// ctx aborts it.
func (e *Extractor) ScoreMessages(ctx context.Context, messages []string) ([]Result, error) {
	results := make([]Result, len(messages))

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 1 {
		g.SetLimit(e.workers)
	} else {
		g.SetLimit(1)
	}
	for i, msg := range messages {
		i, msg := i, msg // per-iteration copies (pre-Go 1.22 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := e.Extract(gctx, msg)
			if res.Err != nil {
				if errors.Is(res.Err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				e.log.Warn("keyphrase extraction failed", "message_index", i, "err", res.Err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
