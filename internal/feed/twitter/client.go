// Package twitter implements the feed client against the Twitter standard
// search API (v1.1) using application bearer-token auth.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pabello/TwitterAnalyzer/internal/feed"
	"github.com/pabello/TwitterAnalyzer/internal/record"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.twitter.com"

	// DefaultPageSize is the largest page the standard search API serves.
	DefaultPageSize = 100

	// Standard search app-auth budget: 450 requests per 15 minutes.
	defaultRateEvery = 2 * time.Second
	defaultRateBurst = 5

	defaultTimeout = 30 * time.Second

	searchPath = "/1.1/search/tweets.json"

	// searchFilters keeps retweets and replies out of every page; only
	// original tweets feed the logs.
	searchFilters = "-filter:retweets -filter:replies"

	// createdAtLayout is the timestamp format the API uses.
	createdAtLayout = time.RubyDate
)

// Config holds the client settings. Zero fields fall back to defaults.
type Config struct {
	BaseURL     string
	BearerToken string
	PageSize    int
	Timeout     time.Duration

	// RateEvery is the minimum spacing between requests; RateBurst the
	// number of requests that may go out without waiting.
	RateEvery time.Duration
	RateBurst int
}

// Client is a rate-limited feed.Client backed by the standard search API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client from cfg, applying defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.RateEvery <= 0 {
		cfg.RateEvery = defaultRateEvery
	}

	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RateEvery), cfg.RateBurst),
	}
}

type searchResponse struct {
	Statuses []status `json:"statuses"`
}

type status struct {
	ID            int64  `json:"id"`
	CreatedAt     string `json:"created_at"`
	FullText      string `json:"full_text"`
	RetweetCount  int64  `json:"retweet_count"`
	FavoriteCount int64  `json:"favorite_count"`
	Lang          string `json:"lang"`
	User          struct {
		ScreenName     string `json:"screen_name"`
		Location       string `json:"location"`
		FollowersCount int64  `json:"followers_count"`
	} `json:"user"`
}

// Search fetches one page, blocking on the client-side rate limiter first.
// HTTP 401/403 map to feed.ErrAuthentication, 429 and 5xx (and any other
// unexpected status) to feed.ErrTransient, and an undecodable body to
// feed.ErrPageDecode.
func (c *Client) Search(ctx context.Context, q feed.Query) ([]record.Record, error) {
	if c.cfg.BearerToken == "" {
		return nil, fmt.Errorf("no bearer token configured: %w", feed.ErrAuthentication)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("search request: %v: %w", err, feed.ErrTransient)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search page: %v: %w", err, feed.ErrPageDecode)
	}

	return mapStatuses(body.Statuses)
}

func (c *Client) searchURL(q feed.Query) string {
	params := url.Values{}
	params.Set("q", q.Keyword+" "+searchFilters)
	params.Set("count", strconv.Itoa(c.cfg.PageSize))
	params.Set("result_type", "recent")
	params.Set("tweet_mode", "extended")
	params.Set("include_entities", "false")

	if q.MaxID > 0 {
		params.Set("max_id", strconv.FormatInt(q.MaxID, 10))
	}

	if q.SinceID > 0 {
		params.Set("since_id", strconv.FormatInt(q.SinceID, 10))
	}

	return c.cfg.BaseURL + searchPath + "?" + params.Encode()
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("status %d: %w", code, feed.ErrAuthentication)
	default:
		// Includes 429 and all 5xx: the caller backs off and retries.
		return fmt.Errorf("status %d: %w", code, feed.ErrTransient)
	}
}

func mapStatuses(statuses []status) ([]record.Record, error) {
	records := make([]record.Record, 0, len(statuses))

	for _, st := range statuses {
		created, err := time.Parse(createdAtLayout, st.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", st.CreatedAt, feed.ErrPageDecode)
		}

		records = append(records, record.Record{
			ID:            st.ID,
			Date:          created.UTC(),
			ScreenName:    st.User.ScreenName,
			UserLocation:  st.User.Location,
			UserFollowers: st.User.FollowersCount,
			RetweetCount:  st.RetweetCount,
			FavoriteCount: st.FavoriteCount,
			Language:      st.Lang,
			FullText:      st.FullText,
		})
	}

	return records, nil
}

var _ feed.Client = (*Client)(nil)
