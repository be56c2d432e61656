package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/phrasemine/internal/llm"
	"github.com/cognicore/phrasemine/pkg/phrasemine"
	"github.com/cognicore/phrasemine/pkg/phrasemine/candidates"
	"github.com/cognicore/phrasemine/pkg/phrasemine/metrics"
	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
	"github.com/cognicore/phrasemine/pkg/phrasemine/stoplist"
	"github.com/cognicore/phrasemine/pkg/phrasemine/vocab"
)

// Loader loads the files a Config points at and constructs components
type Loader struct {
	Config *Config
}

// Components holds everything needed to build an extractor
type Components struct {
	Vocabulary *vocab.Vocabulary
	Stopwords  *stoplist.Set
	Phrases    []string
	Oracle     oracle.Oracle
	Generator  candidates.Generator
}

// Load reads all configured files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	comp := &Components{}

	v, err := vocab.Load(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	comp.Vocabulary = v

	comp.Stopwords = stoplist.English()
	if cfg.Stoplist != "" {
		extra, err := stoplist.Load(cfg.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stopwords = comp.Stopwords.Merge(extra)
	}

	if cfg.Phrases != "" {
		phrases, err := LoadPhrases(cfg.Phrases)
		if err != nil {
			return nil, fmt.Errorf("load phrases: %w", err)
		}
		for _, p := range phrases {
			comp.Phrases = append(comp.Phrases, p.Forms()...)
		}
	}

	enc, err := NewEncoder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	comp.Oracle = oracle.WithCosine(enc)

	comp.Generator = candidates.NewRuleGenerator(comp.Stopwords,
		candidates.WithPhrases(comp.Phrases),
		candidates.WithMaxWords(cfg.MaxWords),
	)
	return comp, nil
}

// NewEncoder builds the configured encoder, wrapped in an LRU cache when
// cache_size is positive.
func NewEncoder(e Embedder) (oracle.Encoder, error) {
	var enc oracle.Encoder
	switch e.Kind {
	case "", "hash":
		enc = oracle.NewHashEncoder(e.Dimension)
	case "http":
		enc = &llm.Client{BaseURL: e.BaseURL, APIKey: e.APIKey, Model: e.Model}
	default:
		return nil, fmt.Errorf("unknown embedder kind %q", e.Kind)
	}
	if e.CacheSize > 0 {
		cached, err := oracle.NewCachedEncoder(enc, e.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		enc = cached
	}
	return enc, nil
}

// Options maps the configuration and loaded components onto extractor
// options. Logger and recorder may be nil.
func (c *Config) Options(comp *Components, log *slog.Logger, rec *metrics.Recorder) phrasemine.Options {
	weights, thresholds := c.Weights, c.Thresholds
	return phrasemine.Options{
		Vocabulary:     comp.Vocabulary,
		Oracle:         comp.Oracle,
		Generator:      comp.Generator,
		Stopwords:      comp.Stopwords,
		K:              c.TopK,
		Weights:        &weights,
		Thresholds:     &thresholds,
		MaxWords:       c.MaxWords,
		Workers:        c.Workers,
		MessageTimeout: time.Duration(c.MessageTimeout),
		CleanMessages:  c.CleanMessages,
		Logger:         log,
		Metrics:        rec,
	}
}
