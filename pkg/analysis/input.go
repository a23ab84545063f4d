package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxInputLength caps input at a size comfortably above any short
// chat message while keeping classifier latency bounded.
const DefaultMaxInputLength = 2000

// SanitizeInput normalizes and validates raw text before it reaches any
// provider. NFKC normalization folds stylistic Unicode variants (fullwidth,
// mathematical bold) to their ASCII equivalents so they cannot skew the
// classifiers. Oversized input is rejected, never truncated.
func SanitizeInput(text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxInputLength
	}

	normalized := strings.TrimSpace(norm.NFKC.String(text))
	if normalized == "" {
		return "", fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(normalized); n > maxLength {
		return "", fmt.Errorf("%w: text is %d characters, limit is %d", ErrInvalidInput, n, maxLength)
	}
	return normalized, nil
}
