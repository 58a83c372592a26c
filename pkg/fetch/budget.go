package fetch

// DefaultMaxConsecutiveErrors is the budget used when none is configured.
const DefaultMaxConsecutiveErrors = 2

// ErrorBudget counts consecutive failures between successful pages. By
// default rate-limit rejections and transient failures draw from one shared
// counter; Separate gives each kind its own. Either way only Reset clears
// them, so with Separate a transient failure between two rate-limit
// rejections does not restart the rate-limit count.
type ErrorBudget struct {
	Max      int
	Separate bool

	rateLimited int
	failed      int
}

// NewErrorBudget returns a budget that is exceeded after limit consecutive
// failures. limit <= 0 takes DefaultMaxConsecutiveErrors.
func NewErrorBudget(limit int, separate bool) *ErrorBudget {
	if limit <= 0 {
		limit = DefaultMaxConsecutiveErrors
	}
	return &ErrorBudget{Max: limit, Separate: separate}
}

// RateLimited records a rate-limit rejection and reports whether the budget
// is now exceeded.
func (b *ErrorBudget) RateLimited() bool {
	b.rateLimited++
	return b.exceeded(b.rateLimited)
}

// Failed records a transient failure and reports whether the budget is now
// exceeded.
func (b *ErrorBudget) Failed() bool {
	b.failed++
	return b.exceeded(b.failed)
}

func (b *ErrorBudget) exceeded(own int) bool {
	if b.Separate {
		return own >= b.Max
	}
	return b.rateLimited+b.failed >= b.Max
}

// Consecutive returns the failures counted since the last Reset.
func (b *ErrorBudget) Consecutive() int {
	return b.rateLimited + b.failed
}

// Reset clears both counters after a successful page.
func (b *ErrorBudget) Reset() {
	b.rateLimited = 0
	b.failed = 0
}
