package analysis

import "errors"

// Error taxonomy. All errors returned by Analyze wrap one of these
// sentinels so callers can branch with errors.Is. Labels like "risky" are
// valid outcomes, never errors.
var (
	// ErrInvalidInput indicates the text failed validation (empty after
	// trimming, or over the configured length limit). The wrapped message
	// names the violated constraint. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAnalysisFailed indicates a failure after input validation passed.
	// Always wraps the originating error, typically a provider's
	// providers.ErrUnavailable. No partial result accompanies it.
	ErrAnalysisFailed = errors.New("analysis failed")
)
