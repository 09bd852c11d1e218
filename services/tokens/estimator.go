// Package tokens estimates token counts for prompt payloads.
//
// Routing decisions only need a rough magnitude, not tokenizer parity
// with any specific vendor, so the shipped estimator uses a
// characters-per-token heuristic. A precise tokenizer can be plugged in
// through the Estimator interface without touching the router.
package tokens

// Estimator approximates the number of tokens in a piece of text.
type Estimator interface {
	// Estimate returns the approximate token count. It is
	// deterministic for a given input and never returns a negative
	// value.
	Estimate(text string) int
}

// charsPerToken is the average characters per token; ~4 works well for
// English text.
const charsPerToken = 4

// Heuristic estimates tokens as one per four characters, using integer
// division. It is the fallback strategy used when no precise tokenizer
// is configured.
type Heuristic struct{}

// Estimate implements Estimator.
func (Heuristic) Estimate(text string) int {
	n := len(text) / charsPerToken
	if n < 0 {
		return 0
	}
	return n
}
