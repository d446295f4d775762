package tokens

// DefaultCharsPerToken is the ratio used when none is configured. Four
// characters per token is a reasonable average for delimited text.
const DefaultCharsPerToken = 4.0

// Estimator estimates token counts for emitted output lines using a
// characters-per-token ratio.
type Estimator struct {
	charsPerToken float64
}

// NewEstimator creates an estimator with the given ratio. A zero or
// negative ratio selects DefaultCharsPerToken.
func NewEstimator(charsPerToken float64) *Estimator {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &Estimator{charsPerToken: charsPerToken}
}

// EstimateLine estimates tokens for one formatted output line. Non-empty
// lines cost at least one token; the result is rounded to nearest.
func (e *Estimator) EstimateLine(line string) int {
	if line == "" {
		return 0
	}

	tokens := float64(len(line)) / e.charsPerToken
	if tokens < 1.0 {
		tokens = 1.0
	}
	return int(tokens + 0.5)
}
