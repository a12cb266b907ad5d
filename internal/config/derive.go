package config

import (
	"log/slog"
	"time"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/feed/twitter"
	"github.com/pabello/TwitterAnalyzer/internal/fetcher"
	"github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// TwitterConfig derives the feed client settings. The request budget is
// spread evenly across the rate window; zero fields fall back to the
// client's own defaults.
func (c *Config) TwitterConfig() twitter.Config {
	clientCfg := twitter.Config{
		BaseURL:     c.Feed.BaseURL,
		BearerToken: c.Feed.BearerToken,
		PageSize:    c.Feed.PageSize,
		Timeout:     c.Feed.Timeout,
	}

	if c.Feed.RateBudget > 0 && c.Feed.RateWindow > 0 {
		clientCfg.RateEvery = c.Feed.RateWindow / time.Duration(c.Feed.RateBudget)
	}

	return clientCfg
}

// FetcherConfig derives the fetch pass settings.
func (c *Config) FetcherConfig(dryRun bool) fetcher.Config {
	return fetcher.Config{
		RetryDelay:    c.Feed.RetryDelay,
		DecodeRetries: c.Feed.DecodeRetries,
		DryRun:        dryRun,
	}
}

// AnalysisConfig derives the analyzer settings. A non-empty language
// overrides the configured default. Stop words come from the configured
// stop-word file and are loaded by the caller.
func (c *Config) AnalysisConfig(language string, stopWords []string) analysis.Config {
	if language == "" {
		language = c.Analysis.Language
	}

	return analysis.Config{
		Language:  language,
		StopWords: stopWords,
		Sentiment: c.Analysis.Sentiment,
	}
}

// ObservabilityConfig derives the telemetry provider settings for the given
// execution mode and binary version.
func (c *Config) ObservabilityConfig(mode observability.AppMode, serviceVersion string) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.ServiceVersion = serviceVersion
	obsCfg.Environment = c.Observability.Environment
	obsCfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = c.Observability.OTLPHeaders
	obsCfg.OTLPInsecure = c.Observability.OTLPInsecure
	obsCfg.LogLevel = parseLogLevel(c.Observability.LogLevel)
	obsCfg.LogJSON = c.Observability.LogJSON

	if c.Observability.ServiceName != "" {
		obsCfg.ServiceName = c.Observability.ServiceName
	}

	return obsCfg
}

// parseLogLevel maps a configured level name onto a slog.Level. Unknown
// names were already rejected by Validate; empty means info.
func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
