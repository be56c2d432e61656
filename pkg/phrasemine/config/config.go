// Package config loads phrasemine settings from YAML and builds the
// components they describe.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/phrasemine/pkg/phrasemine/candidates"
	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
	"github.com/cognicore/phrasemine/pkg/phrasemine/topk"
)

// APIKeyEnv overrides embedder.api_key when set.
const APIKeyEnv = "PHRASEMINE_API_KEY"

// Config is the top-level configuration file
type Config struct {
	Vocabulary     string            `yaml:"vocabulary"`
	Stoplist       string            `yaml:"stoplist"` // empty uses the built-in English list
	Phrases        string            `yaml:"phrases"`  // multi-word phrases kept whole during tokenization
	TopK           int               `yaml:"top_k"`
	Weights        decide.Weights    `yaml:"weights"`
	Thresholds     decide.Thresholds `yaml:"thresholds"`
	MaxWords       int               `yaml:"max_words"`
	Workers        int               `yaml:"workers"`
	MessageTimeout Duration          `yaml:"message_timeout"`
	CleanMessages  bool              `yaml:"clean_messages"`
	Embedder       Embedder          `yaml:"embedder"`
	Store          Store             `yaml:"store"`
	Metrics        Metrics           `yaml:"metrics"`
}

// Embedder selects and configures the text encoder
type Embedder struct {
	Kind      string `yaml:"kind"` // "hash" or "http"
	Dimension int    `yaml:"dimension"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	CacheSize int    `yaml:"cache_size"` // 0 disables the embedding cache
}

// Store configures run persistence
type Store struct {
	Path string `yaml:"path"` // empty disables run persistence
}

// Metrics configures the Prometheus endpoint
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Duration is a time.Duration read from strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Weights:    decide.DefaultWeights(),
		Thresholds: decide.DefaultThresholds(),
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML config file, applies defaults and the environment
// override, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that override fields
// before validating.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals YAML and applies defaults and the environment override.
func Decode(data []byte) (*Config, error) {
	// Seeded so that a partial weights or thresholds block keeps the
	// defaults for the fields it leaves out.
	cfg := Config{
		Weights:    decide.DefaultWeights(),
		Thresholds: decide.DefaultThresholds(),
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Embedder.APIKey = key
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values. Weights and thresholds are left alone:
// zero is a legal setting for each of their fields, so their defaults are
// seeded before decoding instead.
func (c *Config) ApplyDefaults() {
	if c.TopK <= 0 {
		c.TopK = topk.DefaultK
	}
	if c.MaxWords <= 0 {
		c.MaxWords = candidates.DefaultMaxWords
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Embedder.Kind == "" {
		c.Embedder.Kind = "hash"
	}
	if c.Embedder.Kind == "hash" && c.Embedder.Dimension <= 0 {
		c.Embedder.Dimension = oracle.DefaultDimension
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var problems []string
	if c.Vocabulary == "" {
		problems = append(problems, "vocabulary path is required")
	}
	if c.Weights.Semantic < 0 || c.Weights.Lexical < 0 {
		problems = append(problems, "weights must be non-negative")
	}
	for name, v := range map[string]float64{
		"thresholds.combined": c.Thresholds.Combined,
		"thresholds.lexical":  c.Thresholds.Lexical,
		"thresholds.semantic": c.Thresholds.Semantic,
	} {
		if v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be in [0,1]", name))
		}
	}
	if c.MessageTimeout < 0 {
		problems = append(problems, "message_timeout must not be negative")
	}
	if c.Embedder.CacheSize < 0 {
		problems = append(problems, "embedder.cache_size must not be negative")
	}
	switch c.Embedder.Kind {
	case "hash":
	case "http":
		if c.Embedder.BaseURL == "" || c.Embedder.Model == "" {
			problems = append(problems, "embedder.base_url and embedder.model are required for kind http")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown embedder kind %q", c.Embedder.Kind))
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
}

// Phrase is one entry of the phrases file.
type Phrase struct {
	Canonical string
	Variants  []string
}

// LoadPhrases reads multi-word phrases to keep intact during candidate
// generation.
// Format: canonical|variant1|variant2, one per line; # starts a comment.
func LoadPhrases(path string) ([]Phrase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var phrases []Phrase
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		p := Phrase{Canonical: parts[0]}
		for _, v := range parts[1:] {
			if v != "" {
				p.Variants = append(p.Variants, v)
			}
		}
		phrases = append(phrases, p)
	}
	return phrases, nil
}

// Forms returns the canonical form and every variant.
func (p Phrase) Forms() []string {
	return append([]string{p.Canonical}, p.Variants...)
}
