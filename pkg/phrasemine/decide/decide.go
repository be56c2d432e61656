// Package decide combines semantic and lexical scores into keyphrase
// verdicts.
package decide

// Decider accepts or rejects candidate phrases from their semantic and
// lexical scores.
type Decider struct {
	weights    Weights
	thresholds Thresholds
}

// Weights defines the blend of the two scores
type Weights struct {
	Semantic float64 `yaml:"semantic"` // mean top-k similarity
	Lexical  float64 `yaml:"lexical"`  // substring overlap
}

// Thresholds defines the acceptance rule. All comparisons are strict.
type Thresholds struct {
	Combined float64 `yaml:"combined"` // combined score floor, paired with Lexical
	Lexical  float64 `yaml:"lexical"`  // lexical floor, paired with Combined
	Semantic float64 `yaml:"semantic"` // semantic score that accepts on its own
}

// DefaultWeights returns the empirically tuned blend.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.65, Lexical: 0.35}
}

// DefaultThresholds returns the empirically tuned acceptance thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Combined: 0.6, Lexical: 0.5, Semantic: 0.725}
}

// New creates a decider with the given weights and thresholds
func New(w Weights, th Thresholds) *Decider {
	return &Decider{weights: w, thresholds: th}
}

// NewDefault creates a decider with the default constants.
func NewDefault() *Decider {
	return New(DefaultWeights(), DefaultThresholds())
}

// ScoreRecord holds every score computed for one candidate
type ScoreRecord struct {
	Phrase   string  `json:"phrase"`
	Semantic float64 `json:"semantic"`
	Lexical  float64 `json:"lexical"`
	Combined float64 `json:"combined"`
	Accepted bool    `json:"accepted"`
}

// Combine calculates the weighted score
//
// combined = w_sem·semantic + w_lex·lexical
func (d *Decider) Combine(semantic, lexical float64) float64 {
	return semantic*d.weights.Semantic + lexical*d.weights.Lexical
}

// Accepts applies the acceptance rule to an already combined record:
//
// (combined > θ_comb ∧ lexical > θ_lex) ∨ semantic > θ_sem
func (d *Decider) Accepts(rec ScoreRecord) bool {
	th := d.thresholds
	return (rec.Combined > th.Combined && rec.Lexical > th.Lexical) || rec.Semantic > th.Semantic
}

// Decide scores a phrase and reports whether it is a keyphrase.
func (d *Decider) Decide(phrase string, semantic, lexical float64) (bool, ScoreRecord) {
	rec := ScoreRecord{
		Phrase:   phrase,
		Semantic: semantic,
		Lexical:  lexical,
		Combined: d.Combine(semantic, lexical),
	}
	rec.Accepted = d.Accepts(rec)
	return rec.Accepted, rec
}

// Weights returns the configured weights.
func (d *Decider) Weights() Weights { return d.weights }

// Thresholds returns the configured thresholds.
func (d *Decider) Thresholds() Thresholds { return d.thresholds }
