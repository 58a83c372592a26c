package records

import (
	"fmt"
	"strconv"
	"time"

	"twharvest/pkg/twitter"
)

// TweetHeader is the column layout of timeline and search tables.
var TweetHeader = []string{
	"tweet_id", "text", "created_at", "retweet_count", "is_reply",
	"reply_to_user_id", "reply_to_tweet_id", "user_id", "screen_name",
	"user_created_at", "#followers", "#followings", "#statuses", "#listed",
	"#favourites", "verified", "keywords", "hashtags", "urls",
}

// FriendHeader is the column layout of friends tables.
var FriendHeader = []string{
	"user_screen_name", "friend_id", "friend_screen_name", "friends_#followers",
	"friends_#followings", "friends_#listed", "friends_#statuses",
}

// TweetRecord is one row of a timeline or search table.
type TweetRecord struct {
	TweetID        int64
	Text           string
	CreatedAt      time.Time
	RetweetCount   int
	IsReply        bool
	ReplyToUserID  int64
	ReplyToTweetID int64
	UserID         int64
	ScreenName     string
	UserCreatedAt  time.Time
	Followers      int
	Followings     int
	Statuses       int
	Listed         int
	Favourites     int
	Verified       bool
	Keywords       []string
	Hashtags       []string
	URLs           []string
}

// FromTweet flattens a tweet. Keywords are the matcher's hits on the tweet
// text; a nil matcher yields none. Unparseable timestamps are left zero.
func FromTweet(t twitter.Tweet, m *Matcher) TweetRecord {
	text := t.Content()
	rec := TweetRecord{
		TweetID:        t.ID,
		Text:           CleanText(text),
		RetweetCount:   t.RetweetCount,
		ReplyToUserID:  NoReply,
		ReplyToTweetID: NoReply,
		UserID:         t.User.ID,
		ScreenName:     t.User.ScreenName,
		Followers:      t.User.FollowersCount,
		Followings:     t.User.FriendsCount,
		Statuses:       t.User.StatusesCount,
		Listed:         t.User.ListedCount,
		Favourites:     t.User.FavouritesCount,
		Verified:       t.User.Verified,
		Keywords:       m.Match(text),
	}
	if t.InReplyToUserID != nil {
		rec.IsReply = true
		rec.ReplyToUserID = *t.InReplyToUserID
	}
	if t.InReplyToStatusID != nil {
		rec.ReplyToTweetID = *t.InReplyToStatusID
	}
	if ts, err := twitter.ParseTime(t.CreatedAt); err == nil {
		rec.CreatedAt = ts
	}
	if ts, err := twitter.ParseTime(t.User.CreatedAt); err == nil {
		rec.UserCreatedAt = ts
	}
	for _, h := range t.Entities.Hashtags {
		rec.Hashtags = append(rec.Hashtags, h.Text)
	}
	for _, u := range t.Entities.URLs {
		rec.URLs = append(rec.URLs, u.ExpandedURL)
	}
	return rec
}

// FromTweets flattens a batch of tweets with one matcher.
func FromTweets(tweets []twitter.Tweet, m *Matcher) []TweetRecord {
	out := make([]TweetRecord, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, FromTweet(t, m))
	}
	return out
}

// Row returns the cells in TweetHeader order.
func (r TweetRecord) Row() []string {
	return []string{
		formatInt(r.TweetID),
		CleanText(r.Text),
		FormatTime(r.CreatedAt),
		strconv.Itoa(r.RetweetCount),
		formatBool(r.IsReply),
		formatInt(r.ReplyToUserID),
		formatInt(r.ReplyToTweetID),
		formatInt(r.UserID),
		r.ScreenName,
		FormatTime(r.UserCreatedAt),
		strconv.Itoa(r.Followers),
		strconv.Itoa(r.Followings),
		strconv.Itoa(r.Statuses),
		strconv.Itoa(r.Listed),
		strconv.Itoa(r.Favourites),
		formatBool(r.Verified),
		FormatList(r.Keywords),
		FormatList(r.Hashtags),
		FormatList(r.URLs),
	}
}

// FriendRecord is one row of a friends table.
type FriendRecord struct {
	UserScreenName   string
	FriendID         int64
	FriendScreenName string
	Followers        int
	Followings       int
	Listed           int
	Statuses         int
}

// FromFriend flattens one account that owner follows.
func FromFriend(owner string, u twitter.User) FriendRecord {
	return FriendRecord{
		UserScreenName:   owner,
		FriendID:         u.ID,
		FriendScreenName: u.ScreenName,
		Followers:        u.FollowersCount,
		Followings:       u.FriendsCount,
		Listed:           u.ListedCount,
		Statuses:         u.StatusesCount,
	}
}

// Row returns the cells in FriendHeader order.
func (r FriendRecord) Row() []string {
	return []string{
		r.UserScreenName,
		formatInt(r.FriendID),
		r.FriendScreenName,
		strconv.Itoa(r.Followers),
		strconv.Itoa(r.Followings),
		strconv.Itoa(r.Listed),
		strconv.Itoa(r.Statuses),
	}
}

// Rower is anything that renders to a table row.
type Rower interface {
	Row() []string
}

// Rows renders records in order.
func Rows[R Rower](recs []R) [][]string {
	out := make([][]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Row())
	}
	return out
}

// rowReader pulls typed cells out of a row by column name and remembers
// the first failure.
type rowReader struct {
	row map[string]string
	err error
}

func (rr *rowReader) text(col string) string {
	v, ok := rr.row[col]
	if !ok && rr.err == nil {
		rr.err = fmt.Errorf("missing column %q", col)
	}
	return v
}

func (rr *rowReader) i64(col string) int64 {
	s := rr.text(col)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil && rr.err == nil {
		rr.err = fmt.Errorf("column %q: %w", col, err)
	}
	return n
}

func (rr *rowReader) integer(col string) int {
	return int(rr.i64(col))
}

func (rr *rowReader) flag(col string) bool {
	b, err := parseBool(rr.text(col))
	if err != nil && rr.err == nil {
		rr.err = fmt.Errorf("column %q: %w", col, err)
	}
	return b
}

func (rr *rowReader) timestamp(col string) time.Time {
	t, err := ParseTime(rr.text(col))
	if err != nil && rr.err == nil {
		rr.err = fmt.Errorf("column %q: %w", col, err)
	}
	return t
}

func (rr *rowReader) list(col string) []string {
	l, err := ParseList(rr.text(col))
	if err != nil && rr.err == nil {
		rr.err = fmt.Errorf("column %q: %w", col, err)
	}
	return l
}

// ParseTweetRow rebuilds a TweetRecord from a row keyed by header name.
func ParseTweetRow(row map[string]string) (TweetRecord, error) {
	rr := &rowReader{row: row}
	rec := TweetRecord{
		TweetID:        rr.i64("tweet_id"),
		Text:           rr.text("text"),
		CreatedAt:      rr.timestamp("created_at"),
		RetweetCount:   rr.integer("retweet_count"),
		IsReply:        rr.flag("is_reply"),
		ReplyToUserID:  rr.i64("reply_to_user_id"),
		ReplyToTweetID: rr.i64("reply_to_tweet_id"),
		UserID:         rr.i64("user_id"),
		ScreenName:     rr.text("screen_name"),
		UserCreatedAt:  rr.timestamp("user_created_at"),
		Followers:      rr.integer("#followers"),
		Followings:     rr.integer("#followings"),
		Statuses:       rr.integer("#statuses"),
		Listed:         rr.integer("#listed"),
		Favourites:     rr.integer("#favourites"),
		Verified:       rr.flag("verified"),
		Keywords:       rr.list("keywords"),
		Hashtags:       rr.list("hashtags"),
		URLs:           rr.list("urls"),
	}
	return rec, rr.err
}

// ParseFriendRow rebuilds a FriendRecord from a row keyed by header name.
func ParseFriendRow(row map[string]string) (FriendRecord, error) {
	rr := &rowReader{row: row}
	rec := FriendRecord{
		UserScreenName:   rr.text("user_screen_name"),
		FriendID:         rr.i64("friend_id"),
		FriendScreenName: rr.text("friend_screen_name"),
		Followers:        rr.integer("friends_#followers"),
		Followings:       rr.integer("friends_#followings"),
		Listed:           rr.integer("friends_#listed"),
		Statuses:         rr.integer("friends_#statuses"),
	}
	return rec, rr.err
}
