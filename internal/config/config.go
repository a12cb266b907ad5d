// Package config loads and validates twitteranalyzer settings from config
// file, environment variables and defaults.
package config

import (
	"errors"
	"time"
)

// Defaults applied before the config file and environment are read.
const (
	DefaultOutputsDir    = "outputs"
	DefaultAnalysesDir   = "analyses"
	DefaultPlotsDir      = "plots"
	DefaultArchivesDir   = "archives"
	DefaultTopicsFile    = "assets/topics.txt"
	DefaultStopWordsFile = "assets/word_blacklist.txt"

	DefaultFeedBaseURL       = "https://api.twitter.com"
	DefaultFeedPageSize      = 100
	DefaultFeedDecodeRetries = 3
	DefaultFeedRetryDelay    = 5 * time.Second
	DefaultFeedRateWindow    = 15 * time.Minute
	DefaultFeedRateBudget    = 450
	DefaultFeedTimeout       = 30 * time.Second

	DefaultAnalysisLanguage  = "en"
	DefaultAnalysisSentiment = true

	DefaultWatchSchedule   = "@every 1h"
	DefaultWatchAnalyze    = true
	DefaultWatchListenAddr = ":9090"

	DefaultServiceName = "twitteranalyzer"
	DefaultEnvironment = "dev"
	DefaultLogLevel    = "info"
)

// maxPageSize is the standard search API's page size ceiling.
const maxPageSize = 100

// Config is the top-level configuration struct for twitteranalyzer.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Data          DataConfig          `mapstructure:"data"`
	Feed          FeedConfig          `mapstructure:"feed"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Watch         WatchConfig         `mapstructure:"watch"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// DataConfig holds the on-disk layout: where logs, documents, dashboards
// and archives live, and where the topic and stop-word lists are.
type DataConfig struct {
	OutputsDir    string `mapstructure:"outputs_dir"`
	AnalysesDir   string `mapstructure:"analyses_dir"`
	PlotsDir      string `mapstructure:"plots_dir"`
	ArchivesDir   string `mapstructure:"archives_dir"`
	TopicsFile    string `mapstructure:"topics_file"`
	StopWordsFile string `mapstructure:"stop_words_file"`
}

// FeedConfig holds the search API client settings.
type FeedConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	BearerToken string        `mapstructure:"bearer_token"`
	PageSize    int           `mapstructure:"page_size"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// DecodeRetries bounds undecodable-page retries per topic run;
	// RetryDelay is the fixed backoff after a transient feed error.
	DecodeRetries int           `mapstructure:"decode_retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`

	// RateBudget requests per RateWindow, spread evenly by the client's
	// limiter. The defaults mirror the app-auth search quota.
	RateWindow time.Duration `mapstructure:"rate_window"`
	RateBudget int           `mapstructure:"rate_budget"`
}

// AnalysisConfig holds the analyzer settings.
type AnalysisConfig struct {
	Language  string `mapstructure:"language"`
	Sentiment bool   `mapstructure:"sentiment"`
}

// WatchConfig holds the scheduled-run settings.
type WatchConfig struct {
	Schedule   string `mapstructure:"schedule"`
	Analyze    bool   `mapstructure:"analyze"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ObservabilityConfig holds logging and telemetry settings.
type ObservabilityConfig struct {
	ServiceName  string            `mapstructure:"service_name"`
	Environment  string            `mapstructure:"environment"`
	OTLPEndpoint string            `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool              `mapstructure:"otlp_insecure"`
	OTLPHeaders  map[string]string `mapstructure:"otlp_headers"`
	LogLevel     string            `mapstructure:"log_level"`
	LogJSON      bool              `mapstructure:"log_json"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidPageSize indicates the page size is negative or above the API ceiling.
	ErrInvalidPageSize = errors.New("feed.page_size must be between 0 and 100")
	// ErrInvalidDecodeRetries indicates the decode retry budget is negative.
	ErrInvalidDecodeRetries = errors.New("feed.decode_retries must be non-negative")
	// ErrInvalidRetryDelay indicates the transient retry delay is negative.
	ErrInvalidRetryDelay = errors.New("feed.retry_delay must be non-negative")
	// ErrInvalidRateWindow indicates the rate limit window is negative.
	ErrInvalidRateWindow = errors.New("feed.rate_window must be non-negative")
	// ErrInvalidRateBudget indicates the rate limit budget is negative.
	ErrInvalidRateBudget = errors.New("feed.rate_budget must be non-negative")
	// ErrInvalidTimeout indicates the HTTP timeout is negative.
	ErrInvalidTimeout = errors.New("feed.timeout must be non-negative")
	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("observability.log_level must be one of debug, info, warn, error")
)

// Validate checks Config invariants and returns the first error found.
// Zero values are tolerated: components fall back to their own defaults.
func (c *Config) Validate() error {
	feedErr := c.validateFeed()
	if feedErr != nil {
		return feedErr
	}

	return c.validateObservability()
}

func (c *Config) validateFeed() error {
	if c.Feed.PageSize < 0 || c.Feed.PageSize > maxPageSize {
		return ErrInvalidPageSize
	}

	if c.Feed.DecodeRetries < 0 {
		return ErrInvalidDecodeRetries
	}

	if c.Feed.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.Feed.RateWindow < 0 {
		return ErrInvalidRateWindow
	}

	if c.Feed.RateBudget < 0 {
		return ErrInvalidRateBudget
	}

	if c.Feed.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}

func (c *Config) validateObservability() error {
	switch c.Observability.LogLevel {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return ErrInvalidLogLevel
	}
}
