package oracle

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimension is the HashEncoder vector size.
const DefaultDimension = 256

// HashEncoder is a deterministic local encoder built from hashed character
// n-grams and word tokens. It needs no model files and is used when no
// embedding endpoint is configured.
type HashEncoder struct {
	dimension int
}

// NewHashEncoder creates an encoder with the given dimension.
// dimension <= 0 uses DefaultDimension.
func NewHashEncoder(dimension int) *HashEncoder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEncoder{dimension: dimension}
}

// Dimension returns the vector size.
func (h *HashEncoder) Dimension() int { return h.dimension }

// ModelID implements Encoder.
func (h *HashEncoder) ModelID() string {
	return fmt.Sprintf("hash-ngram-%d", h.dimension)
}

// Embed implements Encoder.
func (h *HashEncoder) Embed(_ context.Context, text string) (Embedding, error) {
	vec := make(Embedding, h.dimension)
	text = strings.ToLower(text)

	tokens := tokenize(text)
	for _, tok := range tokens {
		h.add(vec, "w:"+tok, 0.5/math.Sqrt(float64(len(tokens))))
		padded := " " + tok + " "
		grams := ngrams(padded, 3)
		for _, g := range grams {
			h.add(vec, "c:"+g, 0.5/math.Sqrt(float64(len(grams)*len(tokens))))
		}
	}

	normalize(vec)
	return vec, nil
}

func (h *HashEncoder) add(vec Embedding, feature string, weight float64) {
	hash := fnvHash64(feature)
	state := hash
	for i := 0; i < 4; i++ {
		state = state*6364136223846793005 + 1442695040888963407
		idx := int(state % uint64(h.dimension))
		sign := 1.0
		if (hash>>i)&1 == 0 {
			sign = -1
		}
		vec[idx] += sign * weight
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func ngrams(s string, n int) []string {
	runes := []rune(s)
	if len(runes) < n {
		return []string{s}
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

func fnvHash64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func normalize(vec Embedding) {
	var mag float64
	for _, v := range vec {
		mag += v * v
	}
	if mag == 0 {
		return
	}
	inv := 1 / math.Sqrt(mag)
	for i := range vec {
		vec[i] *= inv
	}
}
