package harvest

import (
	"context"

	"twharvest/pkg/auth"
	"twharvest/pkg/quota"
	"twharvest/pkg/twitter"
)

// API defines the page calls a harvest makes. Each call signs with the
// pool's active credential and reports the remaining-calls header.
type API interface {
	UserTimeline(ctx context.Context, screenName string, maxID int64) ([]twitter.Tweet, int, error)
	Friends(ctx context.Context, screenName string, cursor int64) (*twitter.FriendsPage, int, error)
	Search(ctx context.Context, q twitter.SearchQuery) ([]twitter.Tweet, int, error)
	User(ctx context.Context, screenName string) (*twitter.User, error)
}

// QuotaQuerier reads credential windows for a target
type QuotaQuerier interface {
	Query(ctx context.Context, target quota.Target, cred auth.Credential) (quota.Status, error)
	Remaining(ctx context.Context, target quota.Target) (quota.Status, error)
}
