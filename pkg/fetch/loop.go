package fetch

import (
	"context"
	"errors"
	"fmt"

	twerrors "twharvest/pkg/errors"
	"twharvest/pkg/logger"
	"twharvest/pkg/quota"
)

// State is a loop's position in its lifecycle.
type State int

const (
	StateInit State = iota
	StateFetching
	StateDraining
	StateDone
	StateAborted
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateFetching:
		return "fetching"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	case StateDrained:
		return "drained"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Capacity makes sure the active credential can spend on a target.
type Capacity interface {
	EnsureCapacity(ctx context.Context, target quota.Target) error
}

// Result is what a finished loop collected.
type Result[T any] struct {
	Items  []T
	Pages  int
	State  State
	Reason string
	Err    error
}

// Loop pages through Source until it finishes.
type Loop[T any] struct {
	Source   PageSource[T]
	Capacity Capacity
	Target   quota.Target

	// Limit stops the loop once this many items were collected. The last
	// page is kept whole, so up to one page more may be returned.
	Limit int

	MaxConsecutiveErrors int
	// SeparateRateLimitBudget counts rate-limit and transient errors apart.
	// Both counters still only clear on a successful page.
	SeparateRateLimitBudget bool

	// OnPage is called after every successful page with the page count and
	// the number of items so far.
	OnPage func(pages, total int)

	Logger logger.Logger
}

type stepKind int

const (
	stepPage stepKind = iota
	stepRateLimited
	stepFailed
	stepExhausted
	stepDrained
	stepFatal
)

func (k stepKind) String() string {
	return [...]string{"page", "rate_limited", "failed", "exhausted", "drained", "fatal"}[k]
}

type step[T any] struct {
	kind stepKind
	page Page[T]
	err  error
}

func classify[T any](page Page[T], err error) step[T] {
	switch {
	case err == nil:
		return step[T]{kind: stepPage, page: page}
	case errors.Is(err, ErrExhausted):
		return step[T]{kind: stepExhausted}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return step[T]{kind: stepDrained, err: err}
	case twerrors.IsRateLimit(err):
		return step[T]{kind: stepRateLimited, err: err}
	case twerrors.IsTransient(err):
		return step[T]{kind: stepFailed, err: err}
	}
	return step[T]{kind: stepFatal, err: err}
}

// Run fetches until the loop reaches a final state. The returned error is
// non-nil only if capacity arbitration fails; the partial result is returned
// with it.
func (l *Loop[T]) Run(ctx context.Context) (Result[T], error) {
	log := l.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithFields(map[string]interface{}{
		"resource": l.Target.Resource,
		"endpoint": l.Target.Endpoint,
	})

	res := Result[T]{State: StateInit}
	budget := NewErrorBudget(l.MaxConsecutiveErrors, l.SeparateRateLimitBudget)

	res.State = l.ensure(ctx, &res)
	for res.State == StateFetching {
		if ctx.Err() != nil {
			res.State = StateDraining
			break
		}

		page, err := l.Source.Next(ctx)
		st := classify(page, err)
		if st.kind != stepPage && st.kind != stepExhausted {
			fetchErrorsTotal.WithLabelValues(l.Target.Resource, st.kind.String()).Inc()
		}

		switch st.kind {
		case stepPage:
			budget.Reset()
			res.Pages++
			res.Items = append(res.Items, st.page.Items...)
			pagesFetchedTotal.WithLabelValues(l.Target.Resource).Inc()
			itemsFetchedTotal.WithLabelValues(l.Target.Resource).Add(float64(len(st.page.Items)))
			log.WithFields(map[string]interface{}{
				"page":      res.Pages,
				"items":     len(st.page.Items),
				"total":     len(res.Items),
				"remaining": st.page.Remaining,
			}).Debug("Fetched page")
			if l.OnPage != nil {
				l.OnPage(res.Pages, len(res.Items))
			}

			if l.Limit > 0 && len(res.Items) >= l.Limit {
				res.State = StateDone
				res.Reason = fmt.Sprintf("limit of %d items reached", l.Limit)
				break
			}
			if st.page.Remaining == 0 {
				res.State = l.ensure(ctx, &res)
			}

		case stepRateLimited:
			if budget.RateLimited() {
				l.abort(&res, st.err, budget)
				break
			}
			log.WithError(st.err).Warn("Rate limited, rearbitrating credentials")
			res.State = l.ensure(ctx, &res)

		case stepFailed:
			if budget.Failed() {
				l.abort(&res, st.err, budget)
				break
			}
			log.WithError(st.err).Warn("Page request failed, retrying")

		case stepExhausted:
			res.State = StateDone
			res.Reason = "source exhausted"

		case stepDrained:
			res.State = StateDraining
			res.Err = st.err

		case stepFatal:
			res.State = StateAborted
			res.Reason = "unexpected error"
			res.Err = st.err
		}
	}

	if res.State == StateDraining {
		res.State = StateDrained
		if res.Reason == "" {
			res.Reason = "interrupted"
		}
	}

	fetchOutcomesTotal.WithLabelValues(l.Target.Resource, res.State.String()).Inc()

	var err error
	if res.State == StateAborted && res.Reason == reasonCapacity {
		err = res.Err
	}
	return res, err
}

const reasonCapacity = "capacity arbitration failed"

// ensure runs capacity arbitration and returns the state to continue in.
func (l *Loop[T]) ensure(ctx context.Context, res *Result[T]) State {
	err := l.Capacity.EnsureCapacity(ctx, l.Target)
	switch {
	case err == nil:
		return StateFetching
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Err = err
		return StateDraining
	}
	res.Reason = reasonCapacity
	res.Err = err
	return StateAborted
}

func (l *Loop[T]) abort(res *Result[T], err error, budget *ErrorBudget) {
	res.State = StateAborted
	res.Reason = fmt.Sprintf("%d consecutive errors", budget.Consecutive())
	res.Err = err
}
