package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"twharvest/pkg/auth"
	twerrors "twharvest/pkg/errors"
	"twharvest/pkg/logger"
)

func testPool(t *testing.T, n int) *auth.Pool {
	t.Helper()
	creds := make([]auth.Credential, n)
	for i := range creds {
		s := string(rune('a' + i))
		creds[i] = auth.Credential{
			ConsumerKey:    "consumer-" + s,
			ConsumerSecret: "csecret-" + s,
			AccessToken:    "token-" + s,
			AccessSecret:   "tsecret-" + s,
		}
	}
	pool, err := auth.NewPool(creds)
	require.NoError(t, err)
	return pool
}

func newTestClient(t *testing.T, pool *auth.Pool, handler http.HandlerFunc, mutate ...func(*Options)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := Options{
		BaseURL:       srv.URL + "/1.1",
		MaxAttempts:   3,
		RetryDelay:    time.Millisecond,
		RetryStatuses: []int{401, 404, 500, 503},
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := NewClient(pool, opts, logger.NewNopLogger())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestUserTimelineSignsWithActiveCredential(t *testing.T) {
	pool := testPool(t, 2)
	_, err := pool.Switch(1)
	require.NoError(t, err)

	client := newTestClient(t, pool, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1/statuses/user_timeline.json", r.URL.Path)
		assert.Equal(t, "bbc", r.URL.Query().Get("screen_name"))
		assert.Equal(t, "200", r.URL.Query().Get("count"))
		assert.Equal(t, "true", r.URL.Query().Get("include_rts"))
		assert.Equal(t, "41", r.URL.Query().Get("max_id"))

		authz := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(authz, "OAuth "), authz)
		assert.Contains(t, authz, `oauth_consumer_key="consumer-b"`)
		assert.Contains(t, authz, `oauth_token="token-b"`)

		w.Header().Set(RemainingHeader, "899")
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 41, "id_str": "41", "full_text": "hello\nworld", "user": map[string]interface{}{"screen_name": "bbc"}},
		})
	})

	tweets, remaining, err := client.UserTimeline(context.Background(), "bbc", 41)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, int64(41), tweets[0].ID)
	assert.Equal(t, "hello\nworld", tweets[0].Content())
	assert.Equal(t, 899, remaining)
}

func TestRateLimitErrorIsTyped(t *testing.T) {
	var calls int32
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set(RemainingHeader, "0")
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"errors": []map[string]interface{}{{"code": 88, "message": "Rate limit exceeded"}},
		})
	})

	_, remaining, err := client.UserTimeline(context.Background(), "bbc", 0)
	require.Error(t, err)
	assert.True(t, twerrors.IsRateLimit(err))
	assert.Equal(t, 0, remaining)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "rate limits are not retried at the transport")

	var typed *twerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, 88, typed.APICode)
	assert.Equal(t, http.StatusTooManyRequests, typed.Code)
}

func TestRetryableStatusesAreRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"errors": []map[string]interface{}{{"code": 130, "message": "Over capacity"}},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"users": []interface{}{}, "next_cursor": 0})
	})

	page, _, err := client.Friends(context.Background(), "bbc", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.NextCursor)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNonRetryableStatus(t *testing.T) {
	var calls int32
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]interface{}{{"code": 25, "message": "Query parameters are missing."}},
		})
	})

	_, _, err := client.Search(context.Background(), SearchQuery{Query: "brexit"})
	require.Error(t, err)
	assert.True(t, twerrors.IsTransient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "Query parameters are missing.")
}

func TestMalformedBody(t *testing.T) {
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := client.User(context.Background(), "bbc")
	require.Error(t, err)
	assert.Equal(t, twerrors.ErrorTypeParsing, twerrors.TypeOf(err))
}

func TestSearchParameters(t *testing.T) {
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/1.1/search/tweets.json", r.URL.Path)
		assert.Equal(t, "brexit OR #voteleave", q.Get("q"))
		assert.Equal(t, "100", q.Get("count"))
		assert.Equal(t, "en", q.Get("lang"))
		assert.Equal(t, "10", q.Get("since_id"))
		assert.Equal(t, "99", q.Get("max_id"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"statuses": []map[string]interface{}{{"id": 99}, {"id": 98}},
		})
	}, func(o *Options) { o.Language = "en" })

	tweets, remaining, err := client.Search(context.Background(), SearchQuery{
		Query:   "brexit OR #voteleave",
		SinceID: 10,
		MaxID:   99,
	})
	require.NoError(t, err)
	assert.Len(t, tweets, 2)
	assert.Equal(t, -1, remaining)
}

func TestRateLimitStatusUsesGivenCredential(t *testing.T) {
	pool := testPool(t, 3)
	client := newTestClient(t, pool, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1/application/rate_limit_status.json", r.URL.Path)
		assert.Equal(t, "statuses", r.URL.Query().Get("resources"))
		assert.Contains(t, r.Header.Get("Authorization"), `oauth_consumer_key="consumer-c"`)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"resources": map[string]interface{}{
				"statuses": map[string]interface{}{
					"/statuses/user_timeline": map[string]interface{}{"limit": 900, "remaining": 12, "reset": 1700000900},
				},
			},
		})
	})

	status, err := client.RateLimitStatus(context.Background(), pool.At(2), ResourceStatuses)
	require.NoError(t, err)
	rl, ok := status.Lookup(ResourceStatuses, EndpointUserTimeline)
	require.True(t, ok)
	assert.Equal(t, RateLimit{Limit: 900, Remaining: 12, Reset: 1700000900}, rl)

	_, ok = status.Lookup(ResourceSearch, EndpointSearch)
	assert.False(t, ok)
	assert.Equal(t, 0, pool.ActiveIndex(), "querying quota must not switch credentials")
}

func TestAppAuthUsesBearerToken(t *testing.T) {
	var tokenCalls int32
	pool, err := auth.NewPool([]auth.Credential{{ConsumerKey: "app-key", ConsumerSecret: "app-secret"}})
	require.NoError(t, err)

	client := newTestClient(t, pool, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			atomic.AddInt32(&tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "app-key", user)
			assert.Equal(t, "app-secret", pass)
			writeJSON(w, http.StatusOK, map[string]interface{}{"token_type": "bearer", "access_token": "AAAA"})
			return
		}
		assert.Equal(t, "Bearer AAAA", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "screen_name": "bbc", "verified": true})
	}, func(o *Options) { o.AuthMode = AuthApp })

	u, err := client.User(context.Background(), "bbc")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	_, err = client.User(context.Background(), "bbc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "token is cached per credential")
}

func TestUserAuthRequiresAccessToken(t *testing.T) {
	pool, err := auth.NewPool([]auth.Credential{{ConsumerKey: "k", ConsumerSecret: "s"}})
	require.NoError(t, err)
	client := newTestClient(t, pool, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err = client.User(context.Background(), "bbc")
	require.Error(t, err)
	assert.True(t, twerrors.IsConfiguration(err))
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, testPool(t, 1), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []interface{}{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := client.UserTimeline(ctx, "bbc", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil, Options{}, nil)
	assert.Error(t, err)

	_, err = NewClient(testPool(t, 1), Options{AuthMode: "basic"}, nil)
	assert.Error(t, err)
}

func TestTokenURL(t *testing.T) {
	assert.Equal(t, "https://api.twitter.com/oauth2/token", tokenURL(DefaultBaseURL))
	assert.Equal(t, "http://127.0.0.1:8080/oauth2/token", tokenURL("http://127.0.0.1:8080/1.1"))
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("Wed Jun 22 20:15:32 +0000 2016")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 6, 22, 20, 15, 32, 0, time.UTC), ts.UTC())
}
