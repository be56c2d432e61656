// Package stoplist holds the stopword sets used when cleaning candidate
// phrases and when validating accepted keyphrases.
package stoplist

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords-en.yaml
var englishYAML []byte

// Set is a stopword set. Membership is exact: callers lower-case tokens
// themselves when they want case-insensitive checks.
type Set struct {
	stops map[string]struct{}
}

// New creates a set from the given terms
func New(terms []string) *Set {
	stops := make(map[string]struct{}, len(terms))
	for _, s := range terms {
		if s == "" {
			continue
		}
		stops[s] = struct{}{}
	}
	return &Set{stops: stops}
}

// file is the on-disk YAML layout: a single terms list.
type file struct {
	Terms []string `yaml:"terms"`
}

// Parse reads a YAML stoplist document (`terms: [...]`).
func Parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}
	return New(f.Terms), nil
}

// Load reads a YAML stoplist from disk.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// English returns the built-in English stopword list.
func English() *Set {
	s, err := Parse(englishYAML)
	if err != nil {
		panic(err)
	}
	return s
}

// IsStop checks if a token is a stopword
func (s *Set) IsStop(token string) bool {
	if s == nil {
		return false
	}
	_, ok := s.stops[token]
	return ok
}

// Add adds a token to the set
func (s *Set) Add(token string) {
	s.stops[token] = struct{}{}
}

// Remove removes a token from the set
func (s *Set) Remove(token string) {
	delete(s.stops, token)
}

// Len returns the number of stopwords.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stops)
}

// All returns all stopwords, sorted
func (s *Set) All() []string {
	result := make([]string, 0, s.Len())
	if s == nil {
		return result
	}
	for w := range s.stops {
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}

// Merge returns a new set holding the union of s and other.
func (s *Set) Merge(other *Set) *Set {
	out := New(s.All())
	for _, w := range other.All() {
		out.Add(w)
	}
	return out
}
