package twitter

import "time"

// CreatedAtLayout is the timestamp layout used in API payloads
const CreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// ParseTime parses an API created_at value
func ParseTime(s string) (time.Time, error) {
	return time.Parse(CreatedAtLayout, s)
}

// User is an account as returned by the API
type User struct {
	ID              int64  `json:"id"`
	IDStr           string `json:"id_str"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	CreatedAt       string `json:"created_at"`
	FollowersCount  int    `json:"followers_count"`
	FriendsCount    int    `json:"friends_count"`
	StatusesCount   int    `json:"statuses_count"`
	ListedCount     int    `json:"listed_count"`
	FavouritesCount int    `json:"favourites_count"`
	Verified        bool   `json:"verified"`
	Protected       bool   `json:"protected"`
}

// Tweet is a status as returned by the API
type Tweet struct {
	ID                int64    `json:"id"`
	IDStr             string   `json:"id_str"`
	Text              string   `json:"text"`
	FullText          string   `json:"full_text"`
	CreatedAt         string   `json:"created_at"`
	Lang              string   `json:"lang"`
	RetweetCount      int      `json:"retweet_count"`
	InReplyToUserID   *int64   `json:"in_reply_to_user_id"`
	InReplyToStatusID *int64   `json:"in_reply_to_status_id"`
	User              User     `json:"user"`
	Entities          Entities `json:"entities"`
}

// Content returns full_text when the API sent the extended form
func (t Tweet) Content() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// Entities holds the parsed parts of a tweet body
type Entities struct {
	Hashtags []Hashtag   `json:"hashtags"`
	URLs     []URLEntity `json:"urls"`
}

// Hashtag is a #tag occurrence
type Hashtag struct {
	Text string `json:"text"`
}

// URLEntity is a link occurrence
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
}

// FriendsPage is one cursor page of friends/list
type FriendsPage struct {
	Users      []User `json:"users"`
	NextCursor int64  `json:"next_cursor"`
}

// SearchResponse is one page of search/tweets
type SearchResponse struct {
	Statuses []Tweet `json:"statuses"`
}

// RateLimit is one endpoint's quota window
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// RateLimitStatus is the application/rate_limit_status payload
type RateLimitStatus struct {
	Resources map[string]map[string]RateLimit `json:"resources"`
}

// Lookup returns the window for resource/endpoint
func (s *RateLimitStatus) Lookup(resource, endpoint string) (RateLimit, bool) {
	endpoints, ok := s.Resources[resource]
	if !ok {
		return RateLimit{}, false
	}
	rl, ok := endpoints[endpoint]
	return rl, ok
}

// apiErrors is the error body sent with non-2xx responses
type apiErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
