package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"twharvest/pkg/auth"
	"twharvest/pkg/config"
	twerrors "twharvest/pkg/errors"
	"twharvest/pkg/logger"
	"twharvest/pkg/retry"
)

// Auth modes
const (
	AuthUser = "user"
	AuthApp  = "app"
)

// Options configures a Client
type Options struct {
	BaseURL        string
	TokenURL       string
	AuthMode       string
	RequestTimeout time.Duration
	// MaxAttempts counts the first request too.
	MaxAttempts    int
	RetryDelay     time.Duration
	RetryStatuses  []int

	TimelinePageSize int
	FriendsPageSize  int
	SearchPageSize   int
	IncludeRetweets  bool
	Language         string

	// HTTPClient is the unsigned base client; signing transports wrap it.
	HTTPClient *http.Client
}

// OptionsFromConfig maps configuration onto client options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:          cfg.Twitter.BaseURL,
		AuthMode:         cfg.Twitter.AuthMode,
		RequestTimeout:   cfg.Twitter.RequestTimeout,
		MaxAttempts:      cfg.Twitter.MaxAttempts,
		RetryDelay:       cfg.Twitter.RetryDelay,
		RetryStatuses:    cfg.Twitter.RetryStatuses,
		TimelinePageSize: cfg.Fetch.TimelinePageSize,
		FriendsPageSize:  cfg.Fetch.FriendsPageSize,
		SearchPageSize:   cfg.Fetch.SearchPageSize,
		IncludeRetweets:  cfg.Fetch.IncludeRetweets,
		Language:         cfg.Fetch.Language,
	}
}

// Client calls the REST API. Page requests are signed with the pool's
// active credential at the time of the call.
type Client struct {
	opts   Options
	pool   *auth.Pool
	logger logger.Logger

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewClient creates a client bound to pool
func NewClient(pool *auth.Pool, opts Options, log logger.Logger) (*Client, error) {
	if pool == nil {
		return nil, twerrors.Configuration("credential pool is required")
	}
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	if opts.TokenURL == "" {
		opts.TokenURL = tokenURL(opts.BaseURL)
	}
	switch opts.AuthMode {
	case "":
		opts.AuthMode = AuthUser
	case AuthUser, AuthApp:
	default:
		return nil, twerrors.Configuration("unknown auth mode %q", opts.AuthMode)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	if opts.TimelinePageSize <= 0 {
		opts.TimelinePageSize = 200
	}
	if opts.FriendsPageSize <= 0 {
		opts.FriendsPageSize = 200
	}
	if opts.SearchPageSize <= 0 {
		opts.SearchPageSize = 100
	}

	return &Client{
		opts:    opts,
		pool:    pool,
		logger:  log,
		clients: make(map[string]*http.Client),
	}, nil
}

// Pool returns the credential pool the client signs with
func (c *Client) Pool() *auth.Pool {
	return c.pool
}

// httpFor returns the signing HTTP client for cred, building it once
func (c *Client) httpFor(cred auth.Credential) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[cred.ID()]; ok {
		return hc, nil
	}

	var hc *http.Client
	switch c.opts.AuthMode {
	case AuthApp:
		cc := &clientcredentials.Config{
			ClientID:     cred.ConsumerKey,
			ClientSecret: cred.ConsumerSecret,
			TokenURL:     c.opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.opts.HTTPClient)
		hc = cc.Client(ctx)
	default:
		if !cred.HasUserContext() {
			return nil, twerrors.Configuration("credential %s has no access token pair for user auth", auth.Mask(cred.ConsumerKey))
		}
		ctx := context.WithValue(context.Background(), oauth1.HTTPClient, c.opts.HTTPClient)
		hc = oauth1.NewConfig(cred.ConsumerKey, cred.ConsumerSecret).
			Client(ctx, oauth1.NewToken(cred.AccessToken, cred.AccessSecret))
	}
	hc.Timeout = c.opts.RequestTimeout

	c.clients[cred.ID()] = hc
	return hc, nil
}

// get performs a signed GET with transport retries and decodes into out.
// It returns the x-rate-limit-remaining header value, or -1 when absent.
func (c *Client) get(ctx context.Context, cred auth.Credential, path string, params url.Values, out interface{}) (int, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) (int, error) {
		return c.do(ctx, cred, path, params, out)
	}, retry.Config{
		MaxAttempts: c.opts.MaxAttempts,
		Backoff:     retry.ConstantBackoff{Delay: c.opts.RetryDelay},
		RetryIf:     func(err error) bool { return twerrors.IsRetryable(err, c.opts.RetryStatuses) },
		Logger:      c.logger.WithField("path", path),
	})
}

// do performs a single signed request
func (c *Client) do(ctx context.Context, cred auth.Credential, path string, params url.Values, out interface{}) (int, error) {
	hc, err := c.httpFor(cred)
	if err != nil {
		return -1, err
	}

	endpoint := c.opts.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		c.logger.WithFields(map[string]interface{}{
			"path":     path,
			"duration": time.Since(start),
		}).WithError(err).Warn("HTTP request failed")
		return -1, twerrors.Network(err)
	}
	defer resp.Body.Close()

	remaining := -1
	if v := resp.Header.Get(RemainingHeader); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"path":      path,
		"status":    resp.StatusCode,
		"remaining": remaining,
		"duration":  time.Since(start),
	}).Debug("HTTP request completed")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return remaining, twerrors.Network(err)
	}

	if resp.StatusCode != http.StatusOK {
		return remaining, statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WithFields(map[string]interface{}{
			"path":         path,
			"body_preview": preview,
		}).WithError(err).Error("failed to parse JSON response")
		return remaining, twerrors.Parsing("failed to parse JSON", err)
	}
	return remaining, nil
}

// statusError maps a non-200 response to a typed error
func statusError(status int, body []byte) error {
	var payload apiErrors
	apiCode, message := 0, ""
	if json.Unmarshal(body, &payload) == nil && len(payload.Errors) > 0 {
		apiCode = payload.Errors[0].Code
		message = payload.Errors[0].Message
	}
	if twerrors.IsRateLimit(twerrors.FromStatus(status, apiCode, "")) {
		if message == "" {
			message = "rate limit exceeded"
		}
		e := twerrors.RateLimited(message, apiCode)
		e.Code = status
		return e
	}
	return twerrors.FromStatus(status, apiCode, message)
}

// RateLimitStatus queries quota windows under cred, which need not be the
// active credential. It makes exactly one request.
func (c *Client) RateLimitStatus(ctx context.Context, cred auth.Credential, resources ...string) (*RateLimitStatus, error) {
	params := url.Values{}
	if len(resources) > 0 {
		params.Set("resources", strings.Join(resources, ","))
	}
	var out RateLimitStatus
	if _, err := c.do(ctx, cred, RateLimitStatusPath, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserTimeline returns one page of a user's tweets older than or equal to
// maxID (0 for the newest page), and the remaining-calls header.
func (c *Client) UserTimeline(ctx context.Context, screenName string, maxID int64) ([]Tweet, int, error) {
	params := url.Values{}
	params.Set("screen_name", screenName)
	params.Set("count", strconv.Itoa(c.opts.TimelinePageSize))
	params.Set("include_rts", strconv.FormatBool(c.opts.IncludeRetweets))
	params.Set("tweet_mode", "extended")
	if maxID > 0 {
		params.Set("max_id", strconv.FormatInt(maxID, 10))
	}

	var tweets []Tweet
	remaining, err := c.get(ctx, c.pool.Active(), UserTimelinePath, params, &tweets)
	return tweets, remaining, err
}

// Friends returns one cursor page of the accounts screenName follows.
// Start with cursor -1; a NextCursor of 0 marks the last page.
func (c *Client) Friends(ctx context.Context, screenName string, cursor int64) (*FriendsPage, int, error) {
	params := url.Values{}
	params.Set("screen_name", screenName)
	params.Set("count", strconv.Itoa(c.opts.FriendsPageSize))
	params.Set("cursor", strconv.FormatInt(cursor, 10))
	params.Set("skip_status", "true")

	var page FriendsPage
	remaining, err := c.get(ctx, c.pool.Active(), FriendsListPath, params, &page)
	if err != nil {
		return nil, remaining, err
	}
	return &page, remaining, nil
}

// SearchQuery holds search/tweets parameters
type SearchQuery struct {
	Query    string
	SinceID  int64
	MaxID    int64
	Language string
}

// Search returns one page of search results
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Tweet, int, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("count", strconv.Itoa(c.opts.SearchPageSize))
	params.Set("tweet_mode", "extended")
	lang := q.Language
	if lang == "" {
		lang = c.opts.Language
	}
	if lang != "" {
		params.Set("lang", lang)
	}
	if q.SinceID > 0 {
		params.Set("since_id", strconv.FormatInt(q.SinceID, 10))
	}
	if q.MaxID > 0 {
		params.Set("max_id", strconv.FormatInt(q.MaxID, 10))
	}

	var out SearchResponse
	remaining, err := c.get(ctx, c.pool.Active(), SearchPath, params, &out)
	return out.Statuses, remaining, err
}

// User looks up a single account
func (c *Client) User(ctx context.Context, screenName string) (*User, error) {
	params := url.Values{}
	params.Set("screen_name", screenName)

	var u User
	if _, err := c.get(ctx, c.pool.Active(), UsersShowPath, params, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
