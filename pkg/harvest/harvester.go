package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"twharvest/pkg/auth"
	"twharvest/pkg/config"
	"twharvest/pkg/fetch"
	"twharvest/pkg/logger"
	"twharvest/pkg/quota"
	"twharvest/pkg/ratelimit"
	"twharvest/pkg/records"
	"twharvest/pkg/storage"
	"twharvest/pkg/twitter"
	"twharvest/pkg/ui"
	"twharvest/pkg/userlist"
)

// Harvester runs timeline, friends and search harvests and writes one
// table per harvest.
type Harvester struct {
	api      API
	pool     *auth.Pool
	oracle   QuotaQuerier
	arbiter  *quota.Arbiter
	storage  *storage.Manager
	fetchCfg config.FetchConfig
	progress *ui.ProgressDisplay
	notifier *ui.Notifier
	logger   logger.Logger
	now      func() time.Time
}

// Options configures New. Progress and Notifier are optional.
type Options struct {
	API      API
	Pool     *auth.Pool
	Oracle   QuotaQuerier
	Arbiter  *quota.Arbiter
	Storage  *storage.Manager
	Fetch    config.FetchConfig
	Progress *ui.ProgressDisplay
	Notifier *ui.Notifier
	Logger   logger.Logger
	Now      func() time.Time
}

// Outcome summarizes one finished harvest.
type Outcome struct {
	Target string
	State  fetch.State
	Reason string
	Pages  int
	Items  int
	Path   string
	Err    error
}

// New creates a Harvester and hooks the arbiter's switch and sleep events
// to the progress display and notifier.
func New(opts Options) (*Harvester, error) {
	if opts.API == nil || opts.Pool == nil || opts.Oracle == nil || opts.Arbiter == nil || opts.Storage == nil {
		return nil, errors.New("harvest: api, pool, oracle, arbiter and storage are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &Harvester{
		api:      opts.API,
		pool:     opts.Pool,
		oracle:   opts.Oracle,
		arbiter:  opts.Arbiter,
		storage:  opts.Storage,
		fetchCfg: opts.Fetch,
		progress: opts.Progress,
		notifier: opts.Notifier,
		logger:   opts.Logger.WithField("component", "harvest"),
		now:      opts.Now,
	}

	h.arbiter.OnSwitch = func(target quota.Target, from, to int) {
		if h.progress != nil {
			h.progress.CredentialSwitch(target.Resource, from, to)
		}
	}
	h.arbiter.OnSleep = func(target quota.Target, d time.Duration, resetAt time.Time) {
		if h.progress != nil {
			h.progress.RateLimitWarning(d, resetAt)
		}
		h.notifier.NotifyRateLimit("Rate limited",
			fmt.Sprintf("All credentials exhausted on %s, waiting %s", target.Resource, ui.FormatDuration(d)))
	}
	return h, nil
}

// NewFromConfig wires the API client, quota oracle, arbiter and storage
// for pool from configuration.
func NewFromConfig(cfg *config.Config, pool *auth.Pool, progress *ui.ProgressDisplay, log logger.Logger) (*Harvester, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client, err := twitter.NewClient(pool, twitter.OptionsFromConfig(cfg), log)
	if err != nil {
		return nil, err
	}

	var pacer *ratelimit.Keyed
	if cfg.Fetch.StatusCallsPerWindow > 0 {
		pacer = ratelimit.NewKeyed(cfg.Fetch.StatusCallsPerWindow, cfg.Fetch.StatusWindow)
	}
	oracle := quota.NewOracle(client, pool, pacer)
	arbiter := quota.NewArbiter(oracle, pool, quota.ArbiterOptions{
		SafetyMargin: cfg.Fetch.SafetyMargin,
		Logger:       log,
	})

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	return New(Options{
		API:      client,
		Pool:     pool,
		Oracle:   oracle,
		Arbiter:  arbiter,
		Storage:  store,
		Fetch:    cfg.Fetch,
		Progress: progress,
		Notifier: ui.NewNotifier(cfg.Notifications),
		Logger:   log,
	})
}

// Storage returns the results directory manager
func (h *Harvester) Storage() *storage.Manager {
	return h.storage
}

// collect runs a fetch loop over src for target and reports page progress.
func collect[T any](ctx context.Context, h *Harvester, label string, target quota.Target, src fetch.PageSource[T], limit int) (fetch.Result[T], error) {
	if h.progress != nil {
		h.progress.Start(label, limit)
	}
	h.logger.WithFields(map[string]interface{}{
		"target": label,
		"limit":  limit,
	}).Info("Starting harvest")

	loop := &fetch.Loop[T]{
		Source:                  src,
		Capacity:                h.arbiter,
		Target:                  target,
		Limit:                   limit,
		MaxConsecutiveErrors:    h.fetchCfg.MaxConsecutiveErrors,
		SeparateRateLimitBudget: h.fetchCfg.SeparateRateLimitBudget,
		Logger:                  h.logger.WithField("target", label),
	}
	if h.progress != nil {
		loop.OnPage = h.progress.Page
	}
	return loop.Run(ctx)
}

// finish writes the table, logs and reports the outcome. Output is written
// whatever state the loop ended in.
func finish[T any](h *Harvester, label, file string, res fetch.Result[T], runErr error, table *storage.Table) (*Outcome, error) {
	out := &Outcome{
		Target: label,
		State:  res.State,
		Reason: res.Reason,
		Pages:  res.Pages,
		Items:  len(table.Rows),
		Err:    res.Err,
	}

	if h.storage.Exists(file) {
		h.logger.WithField("file", file).Info("Replacing existing table")
	}
	path, err := h.storage.WriteTable(file, table)
	if err != nil {
		h.logger.WithError(err).WithField("file", file).Error("Failed to write table")
		runErr = errors.Join(runErr, err)
	} else {
		out.Path = path
	}

	logger.LogHarvestOutcome(h.logger, label, res.State.String(), res.Pages, out.Items, res.Err)
	if h.progress != nil {
		h.progress.Finish(res.State.String(), out.Items, out.Path, res.Err)
	}
	if res.State == fetch.StateAborted {
		h.notifier.NotifyError("Harvest aborted", fmt.Sprintf("%s: %s", label, res.Reason))
	} else {
		h.notifier.NotifyComplete("Harvest complete", fmt.Sprintf("%s: %d rows", label, out.Items))
	}
	return out, runErr
}

// TimelineOptions bounds a timeline harvest.
type TimelineOptions struct {
	// Limit stops after this many tweets; <= 0 takes everything the API serves.
	Limit    int
	Keywords []string
}

// Timeline harvests screenName's tweets into <screen_name>_tweets.csv.
func (h *Harvester) Timeline(ctx context.Context, screenName string, opts TimelineOptions) (*Outcome, error) {
	if err := userlist.CheckScreenName(screenName); err != nil {
		return nil, err
	}
	matcher := records.NewMatcher(opts.Keywords)
	if kw := matcher.Keywords(); len(kw) > 0 {
		h.logger.WithField("keywords", kw).Debug("Tagging rows with keywords")
	}

	label := "@" + screenName + " tweets"
	res, err := collect[twitter.Tweet](ctx, h, label, quota.TimelineTarget, NewTimelineSource(h.api, screenName), opts.Limit)

	recs := records.FromTweets(res.Items, matcher)
	return finish(h, label, storage.TimelineFile(screenName), res, err, &storage.Table{
		Header: records.TweetHeader,
		Rows:   records.Rows(recs),
	})
}

// Friends harvests the accounts screenName follows into
// <screen_name>_friends.csv.
func (h *Harvester) Friends(ctx context.Context, screenName string) (*Outcome, error) {
	if err := userlist.CheckScreenName(screenName); err != nil {
		return nil, err
	}
	label := "@" + screenName + " friends"
	res, err := collect[twitter.User](ctx, h, label, quota.FriendsTarget, NewFriendsSource(h.api, screenName), 0)

	recs := make([]records.FriendRecord, 0, len(res.Items))
	for _, u := range res.Items {
		recs = append(recs, records.FromFriend(screenName, u))
	}
	return finish(h, label, storage.FriendsFile(screenName), res, err, &storage.Table{
		Header: records.FriendHeader,
		Rows:   records.Rows(recs),
	})
}

// SearchOptions describes a search harvest.
type SearchOptions struct {
	Query    string
	SinceID  int64
	MaxID    int64
	Language string
	Limit    int
}

// Search harvests tweets matching a boolean query into
// search_<timestamp>_tweets.csv. The keywords column holds the plain
// terms of the query that each tweet contains.
func (h *Harvester) Search(ctx context.Context, opts SearchOptions) (*Outcome, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, errors.New("search query is empty")
	}

	matcher := records.NewMatcher(records.ExtractQueryKeywords(opts.Query))
	h.logger.WithField("keywords", matcher.Keywords()).Debug("Extracted query keywords")

	file := storage.SearchFile(h.now())
	label := "search " + opts.Query
	src := NewSearchSource(h.api, twitter.SearchQuery{
		Query:    opts.Query,
		SinceID:  opts.SinceID,
		MaxID:    opts.MaxID,
		Language: opts.Language,
	})
	res, err := collect[twitter.Tweet](ctx, h, label, quota.SearchTarget, src, opts.Limit)

	recs := records.FromTweets(res.Items, matcher)
	return finish(h, label, file, res, err, &storage.Table{
		Query:  opts.Query,
		Header: records.TweetHeader,
		Rows:   records.Rows(recs),
	})
}

// TimelinesOf harvests each user's timeline in turn. It stops early on a
// cancelled context or when quota arbitration fails.
func (h *Harvester) TimelinesOf(ctx context.Context, users []string, opts TimelineOptions) ([]*Outcome, error) {
	return h.each(ctx, users, func(name string) (*Outcome, error) {
		return h.Timeline(ctx, name, opts)
	})
}

// FriendsOf harvests each user's friends in turn, with the same stopping
// rules as TimelinesOf.
func (h *Harvester) FriendsOf(ctx context.Context, users []string) ([]*Outcome, error) {
	return h.each(ctx, users, func(name string) (*Outcome, error) {
		return h.Friends(ctx, name)
	})
}

func (h *Harvester) each(ctx context.Context, users []string, run func(string) (*Outcome, error)) ([]*Outcome, error) {
	var outcomes []*Outcome
	for i, name := range users {
		if ctx.Err() != nil {
			h.logger.WithField("skipped", len(users)-i).Warn("Interrupted, skipping remaining users")
			break
		}
		out, err := run(name)
		if out != nil {
			outcomes = append(outcomes, out)
		}
		if err != nil {
			return outcomes, err
		}
		if out.State == fetch.StateDrained {
			break
		}
	}
	if h.progress != nil && len(users) > 1 {
		h.progress.Complete()
	}
	return outcomes, nil
}

// UserInfo looks up one account's profile.
func (h *Harvester) UserInfo(ctx context.Context, screenName string) (*twitter.User, error) {
	u, err := h.api.User(ctx, screenName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up @%s: %w", screenName, err)
	}
	return u, nil
}

// CredentialQuota is one credential's window for a target.
type CredentialQuota struct {
	Index       int
	ConsumerKey string
	Active      bool
	quota.Status
}

// ActiveRemaining reports target's window under the active credential only.
// It costs one rate_limit_status call.
func (h *Harvester) ActiveRemaining(ctx context.Context, target quota.Target) (CredentialQuota, error) {
	idx := h.pool.ActiveIndex()
	st, err := h.oracle.Remaining(ctx, target)
	if err != nil {
		return CredentialQuota{}, err
	}
	return CredentialQuota{
		Index:       idx,
		ConsumerKey: auth.Mask(h.pool.At(idx).ConsumerKey),
		Active:      true,
		Status:      st,
	}, nil
}

// RemainingCalls reports target's window under every credential. The
// consumer key is masked.
func (h *Harvester) RemainingCalls(ctx context.Context, target quota.Target) ([]CredentialQuota, error) {
	active := h.pool.ActiveIndex()
	out := make([]CredentialQuota, 0, h.pool.Len())
	for i := 0; i < h.pool.Len(); i++ {
		cred := h.pool.At(i)
		st, err := h.oracle.Query(ctx, target, cred)
		if err != nil {
			return out, fmt.Errorf("credential %d: %w", i, err)
		}
		out = append(out, CredentialQuota{
			Index:       i,
			ConsumerKey: auth.Mask(cred.ConsumerKey),
			Active:      i == active,
			Status:      st,
		})
	}
	return out, nil
}
