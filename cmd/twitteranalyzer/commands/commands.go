// Package commands implements the CLI command handlers for twitteranalyzer.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/config"
	"github.com/pabello/TwitterAnalyzer/internal/observability"
	"github.com/pabello/TwitterAnalyzer/internal/topics"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
	"github.com/pabello/TwitterAnalyzer/pkg/version"
)

// GlobalOptions carries the persistent flags shared by every subcommand.
type GlobalOptions struct {
	// ConfigPath is an explicit config file. Empty means the default
	// search path.
	ConfigPath string
	// Verbose lowers the log level to debug.
	Verbose bool
}

// ErrNoTopics is returned when a command has nothing to operate on.
var ErrNoTopics = errors.New(
	"no topics: pass topics as arguments or register them with 'topics add'")

// app bundles the loaded configuration with the stores and observability
// providers a command run works against.
type app struct {
	cfg       *config.Config
	providers pkgobs.Providers
	metrics   *observability.Metrics

	topics *topics.Registry
	logs   *tweetlog.Store
	docs   *analysis.DocStore
}

// newApp loads the configuration and initializes the observability stack
// for the given execution mode. Callers close the app when done.
func newApp(globals *GlobalOptions, mode pkgobs.AppMode) (*app, error) {
	cfg, err := config.LoadConfig(globals.ConfigPath)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.ObservabilityConfig(mode, version.Version)
	if globals.Verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	// Stdout carries the MCP protocol, so logs must stay structured on
	// stderr whatever the configured format.
	if mode == pkgobs.ModeMCP {
		obsCfg.LogJSON = true
	}

	providers, err := pkgobs.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	return &app{
		cfg:       cfg,
		providers: providers,
		metrics:   metrics,
		topics:    topics.NewRegistry(cfg.Data.TopicsFile),
		logs:      tweetlog.NewStore(cfg.Data.OutputsDir),
		docs:      analysis.NewDocStore(cfg.Data.AnalysesDir),
	}, nil
}

// close flushes pending telemetry. Failures are logged, never fatal.
func (a *app) close() {
	err := a.providers.Shutdown(context.Background())
	if err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// newAnalyzer builds the incremental analyzer with the configured stop-word
// list. An empty language falls back to the configured one.
func (a *app) newAnalyzer(language string) (*analysis.Analyzer, error) {
	stopWords, err := analysis.LoadStopWords(a.cfg.Data.StopWordsFile)
	if err != nil {
		return nil, err
	}

	cfg := a.cfg.AnalysisConfig(language, stopWords)

	return analysis.New(a.logs, a.docs, cfg, a.providers.Logger, a.metrics), nil
}

// language resolves the effective analysis language for a --language flag
// value, mirroring the analyzer's own fallback chain.
func (a *app) language(flag string) string {
	switch {
	case flag != "":
		return flag
	case a.cfg.Analysis.Language != "":
		return a.cfg.Analysis.Language
	default:
		return analysis.DefaultLanguage
	}
}

// topicList resolves the topics a command operates on: the normalized
// positional arguments when given, the whole registry otherwise.
func (a *app) topicList(args []string) ([]string, error) {
	if len(args) == 0 {
		list, err := a.topics.List()
		if err != nil {
			return nil, err
		}

		if len(list) == 0 {
			return nil, ErrNoTopics
		}

		return list, nil
	}

	list := make([]string, 0, len(args))

	for _, arg := range args {
		topic := topics.Normalize(arg)
		if topic == "" {
			continue
		}

		list = append(list, topic)
	}

	if len(list) == 0 {
		return nil, ErrNoTopics
	}

	return list, nil
}
