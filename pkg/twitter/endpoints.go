package twitter

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the REST API root
	DefaultBaseURL = "https://api.twitter.com/1.1"

	RateLimitStatusPath = "/application/rate_limit_status.json"
	UserTimelinePath    = "/statuses/user_timeline.json"
	FriendsListPath     = "/friends/list.json"
	SearchPath          = "/search/tweets.json"
	UsersShowPath       = "/users/show.json"

	tokenPath = "/oauth2/token"

	// RemainingHeader carries the calls left in the current window
	RemainingHeader = "x-rate-limit-remaining"
)

// Quota identifiers as reported by rate_limit_status.
const (
	ResourceStatuses = "statuses"
	ResourceFriends  = "friends"
	ResourceSearch   = "search"
	ResourceUsers    = "users"

	EndpointUserTimeline = "/statuses/user_timeline"
	EndpointFriendsList  = "/friends/list"
	EndpointSearch       = "/search/tweets"
	EndpointUsersShow    = "/users/show/:id"
)

// tokenURL derives the OAuth2 token endpoint from the API base URL
func tokenURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/") + tokenPath
	}
	return u.Scheme + "://" + u.Host + tokenPath
}
