// Package complexity produces a comparable per-element complexity signal
// straight from element store fields, without graph traversal.
package complexity

import (
	"depscope/internal/element"
	"depscope/internal/match"
)

// Bucket is the qualitative complexity classification.
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

// Signal names reported in SignalsUsed.
const (
	SignalLinesOfCode = "lines_of_code"
	SignalParamCount  = "param_count"
)

// Result is the score for one element. Partial is set when the scanner did
// not supply every signal; missing signals are omitted from the formula
// rather than treated as zero.
type Result struct {
	Element     string   `json:"element"`
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	Bucket      Bucket   `json:"bucket"`
	SignalsUsed []string `json:"signals_used"`
	Partial     bool     `json:"partial"`
}

// Weights of the fixed formula. Lines of code carry more weight than
// parameter count.
const (
	locWeight   = 0.25
	paramWeight = 1.5
)

// Bucket boundaries on the numeric score.
const (
	lowCeiling    = 10.0
	mediumCeiling = 20.0
)

// Scorer reads one element store.
type Scorer struct {
	store *element.Store
}

// NewScorer wraps a store.
func NewScorer(store *element.Store) *Scorer {
	return &Scorer{store: store}
}

// Score computes the metric for the element with the given id (or unique
// name). Unknown targets fail with ranked near-matches.
func (s *Scorer) Score(target string) (*Result, error) {
	el, err := s.resolve(target)
	if err != nil {
		return nil, err
	}

	res := &Result{Element: el.ID, Name: el.Name, SignalsUsed: []string{}}

	if el.EndLine >= el.Line && el.EndLine > 0 {
		loc := el.EndLine - el.Line + 1
		res.Score += locWeight * float64(loc)
		res.SignalsUsed = append(res.SignalsUsed, SignalLinesOfCode)
	} else {
		res.Partial = true
	}

	if el.ParamCount != nil {
		res.Score += paramWeight * float64(*el.ParamCount)
		res.SignalsUsed = append(res.SignalsUsed, SignalParamCount)
	} else {
		res.Partial = true
	}

	res.Bucket = bucketOf(res.Score)
	return res, nil
}

// ScoreAll computes the metric for every element, in store order.
func (s *Scorer) ScoreAll() []*Result {
	out := make([]*Result, 0, s.store.Len())
	for _, el := range s.store.All() {
		res, _ := s.Score(el.ID)
		out = append(out, res)
	}
	return out
}

func (s *Scorer) resolve(target string) (*element.CodeElement, error) {
	if el := s.store.Get(target); el != nil {
		return el, nil
	}
	if byName := s.store.FindByName(target); len(byName) == 1 {
		return byName[0], nil
	}
	names := make([]string, 0, s.store.Len())
	for _, el := range s.store.All() {
		names = append(names, el.Name)
	}
	return nil, &element.NotFoundError{Target: target, Suggestions: match.RankNearest(target, names, 5)}
}

func bucketOf(score float64) Bucket {
	switch {
	case score < lowCeiling:
		return BucketLow
	case score <= mediumCeiling:
		return BucketMedium
	default:
		return BucketHigh
	}
}
