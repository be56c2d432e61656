// Package vocab holds the curated keyphrase vocabulary that candidates are
// scored against.
package vocab

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/oracle"
)

// Vocabulary is an immutable, ordered list of reference keyphrases.
// Order is preserved exactly as loaded because lexical matching credits the
// first overlapping entry.
type Vocabulary struct {
	entries []string
}

// New creates a vocabulary. Empty entries are dropped; an empty result is
// rejected with ErrInvalidVocabulary.
func New(entries []string) (*Vocabulary, error) {
	kept := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no entries", internalerr.ErrInvalidVocabulary)
	}
	return &Vocabulary{entries: kept}, nil
}

// Entries returns a copy of the entries in load order.
func (v *Vocabulary) Entries() []string {
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int { return len(v.entries) }

// At returns the i-th entry.
func (v *Vocabulary) At(i int) string { return v.entries[i] }

type file struct {
	Terms []string `yaml:"terms"`
}

// Load reads a vocabulary from disk. Files ending in .yaml/.yml use the
// `terms:` list layout; anything else is read as one entry per line, with
// blank lines and lines starting with # ignored.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
		}
		return New(f.Terms)
	default:
		return New(readLines(data))
	}
}

func readLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Save writes the vocabulary as YAML.
func (v *Vocabulary) Save(path string) error {
	data, err := yaml.Marshal(file{Terms: v.entries})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Embedded pairs a vocabulary with one embedding per entry, same order.
// It is computed once and shared read-only across scoring calls.
type Embedded struct {
	Vocabulary *Vocabulary
	Vectors    []oracle.Embedding
	ModelID    string
}

// Embed computes embeddings for every entry.
func Embed(ctx context.Context, v *Vocabulary, enc oracle.Encoder) (*Embedded, error) {
	vecs, err := oracle.EmbedAll(ctx, enc, v.entries)
	if err != nil {
		return nil, fmt.Errorf("embed vocabulary: %w", err)
	}
	return &Embedded{Vocabulary: v, Vectors: vecs, ModelID: enc.ModelID()}, nil
}

// NewEmbedded wraps precomputed vectors, e.g. loaded from a store.
func NewEmbedded(v *Vocabulary, vecs []oracle.Embedding, modelID string) (*Embedded, error) {
	if len(vecs) != v.Len() {
		return nil, fmt.Errorf("%w: %d vectors for %d entries", internalerr.ErrInvalidVocabulary, len(vecs), v.Len())
	}
	return &Embedded{Vocabulary: v, Vectors: vecs, ModelID: modelID}, nil
}
