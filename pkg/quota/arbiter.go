package quota

import (
	"context"
	"time"

	"twharvest/pkg/auth"
	"twharvest/pkg/logger"
	"twharvest/pkg/retry"
)

// DefaultSafetyMargin is added to every reset wait to absorb clock skew.
const DefaultSafetyMargin = 5 * time.Second

// Clock abstracts time for the arbiter.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	return retry.Wait(ctx, d)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// StatusLister returns one Status per pool credential, in pool order.
type StatusLister interface {
	All(ctx context.Context, target Target) ([]Status, error)
}

// Arbiter keeps the pool's active credential pointed at one that can
// spend on a target, sleeping when none can.
type Arbiter struct {
	oracle StatusLister
	pool   *auth.Pool
	clock  Clock
	margin time.Duration
	logger logger.Logger

	// OnSwitch is called after the active credential changes.
	OnSwitch func(target Target, from, to int)
	// OnSleep is called before a wait for a window reset.
	OnSleep func(target Target, d time.Duration, resetAt time.Time)
}

// ArbiterOptions configures NewArbiter. Zero values take defaults.
type ArbiterOptions struct {
	SafetyMargin time.Duration
	Clock        Clock
	Logger       logger.Logger
}

// NewArbiter creates an arbiter over pool
func NewArbiter(oracle StatusLister, pool *auth.Pool, opts ArbiterOptions) *Arbiter {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	return &Arbiter{
		oracle: oracle,
		pool:   pool,
		clock:  opts.Clock,
		margin: opts.SafetyMargin,
		logger: opts.Logger.WithField("component", "arbiter"),
	}
}

// EnsureCapacity activates the credential with the most calls left on
// target. If every credential is exhausted it sleeps until the earliest
// reset plus the safety margin and activates that credential instead.
// A cancelled context during the sleep returns ctx.Err().
func (a *Arbiter) EnsureCapacity(ctx context.Context, target Target) error {
	statuses, err := a.oracle.All(ctx, target)
	if err != nil {
		return err
	}

	best := 0
	for i, st := range statuses {
		if st.Remaining > statuses[best].Remaining {
			best = i
		}
	}
	if statuses[best].Remaining > 0 {
		return a.activate(target, best, statuses[best])
	}

	soonest := 0
	for i, st := range statuses {
		if st.ResetAt.Before(statuses[soonest].ResetAt) {
			soonest = i
		}
	}

	resetAt := statuses[soonest].ResetAt
	wait := time.Duration(resetAt.Unix()-a.clock.Now().Unix()) * time.Second
	if wait > 0 {
		d := wait + a.margin
		logger.LogRateLimitSleep(a.logger, target.Resource, target.Endpoint, d, resetAt)
		rateLimitSleepsTotal.WithLabelValues(target.Resource).Inc()
		rateLimitSleepSeconds.Observe(d.Seconds())
		if a.OnSleep != nil {
			a.OnSleep(target, d, resetAt)
		}
		if err := a.clock.Sleep(ctx, d); err != nil {
			return err
		}
	}
	return a.activate(target, soonest, statuses[soonest])
}

func (a *Arbiter) activate(target Target, index int, st Status) error {
	prev, err := a.pool.Switch(index)
	if err != nil {
		return err
	}
	if prev != index {
		credentialSwitchesTotal.WithLabelValues(target.Resource).Inc()
		logger.LogCredentialSwitch(a.logger, target.Resource, target.Endpoint, prev, index, st.Remaining)
		if a.OnSwitch != nil {
			a.OnSwitch(target, prev, index)
		}
	} else {
		a.logger.WithFields(map[string]interface{}{
			"target":     target.String(),
			"credential": index,
			"remaining":  st.Remaining,
		}).Debug("Keeping active credential")
	}
	return nil
}
