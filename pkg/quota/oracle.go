package quota

import (
	"context"
	"fmt"
	"time"

	"twharvest/pkg/auth"
	twerrors "twharvest/pkg/errors"
	"twharvest/pkg/ratelimit"
	"twharvest/pkg/twitter"
)

// Target names the quota window a fetch spends from.
type Target struct {
	Resource string
	Endpoint string
}

func (t Target) String() string {
	return t.Resource + " " + t.Endpoint
}

// Targets of the harvest operations.
var (
	TimelineTarget = Target{twitter.ResourceStatuses, twitter.EndpointUserTimeline}
	FriendsTarget  = Target{twitter.ResourceFriends, twitter.EndpointFriendsList}
	SearchTarget   = Target{twitter.ResourceSearch, twitter.EndpointSearch}
	UsersTarget    = Target{twitter.ResourceUsers, twitter.EndpointUsersShow}
)

// ParseTarget accepts "statuses /statuses/user_timeline" style pairs or the
// short names timeline, friends, search and users.
func ParseTarget(resource, endpoint string) (Target, error) {
	if endpoint != "" {
		return Target{Resource: resource, Endpoint: endpoint}, nil
	}
	switch resource {
	case "timeline", twitter.ResourceStatuses:
		return TimelineTarget, nil
	case "friends":
		return FriendsTarget, nil
	case "search":
		return SearchTarget, nil
	case "users", "user":
		return UsersTarget, nil
	}
	return Target{}, fmt.Errorf("unknown quota target %q", resource)
}

// Status is one credential's window for one target.
type Status struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// StatusAPI is the part of the API client the oracle needs.
type StatusAPI interface {
	RateLimitStatus(ctx context.Context, cred auth.Credential, resources ...string) (*twitter.RateLimitStatus, error)
}

// Oracle answers quota questions. Every Query costs one rate_limit_status
// call against the queried credential, so callers only ask at decision
// points. Nothing is cached and errors are returned as they come.
type Oracle struct {
	api   StatusAPI
	pool  *auth.Pool
	pacer *ratelimit.Keyed
}

// NewOracle creates an oracle; pacer may be nil to disable client-side pacing.
func NewOracle(api StatusAPI, pool *auth.Pool, pacer *ratelimit.Keyed) *Oracle {
	return &Oracle{api: api, pool: pool, pacer: pacer}
}

// Query returns target's window under cred.
func (o *Oracle) Query(ctx context.Context, target Target, cred auth.Credential) (Status, error) {
	if o.pacer != nil {
		if w := o.pacer.For(cred.ID()); !w.Allow() {
			statusQueriesPacedTotal.WithLabelValues(target.Resource).Inc()
			if err := w.Wait(ctx); err != nil {
				return Status{}, err
			}
		}
	}

	statusQueriesTotal.WithLabelValues(target.Resource).Inc()
	resp, err := o.api.RateLimitStatus(ctx, cred, target.Resource)
	if err != nil {
		return Status{}, err
	}

	rl, ok := resp.Lookup(target.Resource, target.Endpoint)
	if !ok {
		return Status{}, twerrors.Parsing(fmt.Sprintf("no quota entry for %s", target), nil)
	}

	st := Status{
		Remaining: max(rl.Remaining, 0),
		Limit:     rl.Limit,
		ResetAt:   time.Unix(rl.Reset, 0),
	}
	quotaRemaining.WithLabelValues(target.Resource, target.Endpoint, auth.Mask(cred.ConsumerKey)).Set(float64(st.Remaining))
	return st, nil
}

// Remaining returns target's window under the active credential.
func (o *Oracle) Remaining(ctx context.Context, target Target) (Status, error) {
	return o.Query(ctx, target, o.pool.Active())
}

// All queries every credential in pool order.
func (o *Oracle) All(ctx context.Context, target Target) ([]Status, error) {
	out := make([]Status, o.pool.Len())
	for i := range out {
		st, err := o.Query(ctx, target, o.pool.At(i))
		if err != nil {
			return nil, fmt.Errorf("credential %d: %w", i, err)
		}
		out[i] = st
	}
	return out, nil
}
