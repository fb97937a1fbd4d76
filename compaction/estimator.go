package compaction

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates the token cost of a piece of text. Estimates are
// approximations used for budget decisions, not exact tokenizer output.
type Estimator interface {
	Estimate(text string) int
}

// HeuristicEstimator counts one token per four characters. This is the
// default estimator; it is deliberately cheap and deterministic.
type HeuristicEstimator struct{}

func (HeuristicEstimator) Estimate(text string) int {
	return len(text) / 4
}

// TiktokenEstimator uses the cl100k_base encoding for a closer estimate.
// If the encoding fails to initialize it falls back to the heuristic.
type TiktokenEstimator struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
}

func NewTiktokenEstimator() *TiktokenEstimator {
	return &TiktokenEstimator{}
}

func (e *TiktokenEstimator) Estimate(text string) int {
	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			e.encoding = enc
		}
	})
	if e.encoding == nil {
		return HeuristicEstimator{}.Estimate(text)
	}
	return len(e.encoding.Encode(text, nil, nil))
}
