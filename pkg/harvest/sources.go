package harvest

import (
	"context"

	"twharvest/pkg/fetch"
	"twharvest/pkg/twitter"
)

// TimelineSource pages backwards through a user's timeline with max_id.
type TimelineSource struct {
	api        API
	screenName string
	maxID      int64
	done       bool
}

// NewTimelineSource starts at the newest tweet
func NewTimelineSource(api API, screenName string) *TimelineSource {
	return &TimelineSource{api: api, screenName: screenName}
}

// Next returns the next page of older tweets
func (s *TimelineSource) Next(ctx context.Context) (fetch.Page[twitter.Tweet], error) {
	if s.done {
		return fetch.Page[twitter.Tweet]{}, fetch.ErrExhausted
	}
	tweets, remaining, err := s.api.UserTimeline(ctx, s.screenName, s.maxID)
	if err != nil {
		return fetch.Page[twitter.Tweet]{}, err
	}
	if len(tweets) == 0 {
		s.done = true
		return fetch.Page[twitter.Tweet]{}, fetch.ErrExhausted
	}
	s.maxID = tweets[len(tweets)-1].ID - 1
	return fetch.Page[twitter.Tweet]{Items: tweets, Remaining: remaining}, nil
}

// FriendsSource walks friends/list cursors starting at -1.
type FriendsSource struct {
	api        API
	screenName string
	cursor     int64
}

// NewFriendsSource starts at the first cursor page
func NewFriendsSource(api API, screenName string) *FriendsSource {
	return &FriendsSource{api: api, screenName: screenName, cursor: -1}
}

// Next returns the next page of friends
func (s *FriendsSource) Next(ctx context.Context) (fetch.Page[twitter.User], error) {
	if s.cursor == 0 {
		return fetch.Page[twitter.User]{}, fetch.ErrExhausted
	}
	page, remaining, err := s.api.Friends(ctx, s.screenName, s.cursor)
	if err != nil {
		return fetch.Page[twitter.User]{}, err
	}
	s.cursor = page.NextCursor
	return fetch.Page[twitter.User]{Items: page.Users, Remaining: remaining}, nil
}

// SearchSource pages backwards through search results with max_id,
// keeping the query's since_id lower bound.
type SearchSource struct {
	api   API
	query twitter.SearchQuery
	done  bool
}

// NewSearchSource starts at q.MaxID, or the newest match when it is 0
func NewSearchSource(api API, q twitter.SearchQuery) *SearchSource {
	return &SearchSource{api: api, query: q}
}

// Next returns the next page of older matches
func (s *SearchSource) Next(ctx context.Context) (fetch.Page[twitter.Tweet], error) {
	if s.done {
		return fetch.Page[twitter.Tweet]{}, fetch.ErrExhausted
	}
	tweets, remaining, err := s.api.Search(ctx, s.query)
	if err != nil {
		return fetch.Page[twitter.Tweet]{}, err
	}
	if len(tweets) == 0 {
		s.done = true
		return fetch.Page[twitter.Tweet]{}, fetch.ErrExhausted
	}
	s.query.MaxID = tweets[len(tweets)-1].ID - 1
	return fetch.Page[twitter.Tweet]{Items: tweets, Remaining: remaining}, nil
}
