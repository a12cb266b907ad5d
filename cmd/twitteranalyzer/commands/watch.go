package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/feed/twitter"
	"github.com/pabello/TwitterAnalyzer/internal/fetcher"
	"github.com/pabello/TwitterAnalyzer/internal/observability"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// WatchCommand holds configuration for the watch command.
type WatchCommand struct {
	globals *GlobalOptions
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(globals *GlobalOptions) *cobra.Command {
	wc := &WatchCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Fetch registered topics on a schedule",
		Long: `Watch runs a fetch pass (and, when configured, an analysis run) over every
registered topic on the configured cron schedule. Health, readiness and
Prometheus metrics endpoints are served while the daemon runs. A tick that
fires while the previous one is still running is skipped.`,
		Args: cobra.NoArgs,
		RunE: wc.run,
	}

	return cmd
}

func (wc *WatchCommand) run(cmd *cobra.Command, _ []string) error {
	app, err := newApp(wc.globals, pkgobs.ModeWatch)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := app.providers.Logger

	diag, err := observability.NewDiagnosticsServer(app.cfg.Watch.ListenAddr, func(_ context.Context) error {
		_, listErr := app.topics.List()

		return listErr
	})
	if err != nil {
		return err
	}

	defer func() {
		closeErr := diag.Close()
		if closeErr != nil {
			log.Warn("diagnostics server close failed", "error", closeErr)
		}
	}()

	// newApp registers the instruments on the OTLP meter, which exports
	// nothing without an endpoint. Watch serves its own scrape registry, so
	// the instruments are rebuilt on the diagnostics meter where /metrics
	// can see them.
	app.metrics, err = observability.NewMetrics(diag.Meter())
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	client := twitter.NewClient(app.cfg.TwitterConfig())
	fetch := fetcher.New(client, app.logs, app.cfg.FetcherConfig(false), log, app.metrics)

	var analyzer *analysis.Analyzer

	if app.cfg.Watch.Analyze {
		analyzer, err = app.newAnalyzer("")
		if err != nil {
			return err
		}
	}

	var running atomic.Bool

	tick := func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous pass still running, skipping tick")

			return
		}
		defer running.Store(false)

		wc.pass(ctx, app, fetch, analyzer)
	}

	sched := cron.New()

	_, err = sched.AddFunc(app.cfg.Watch.Schedule, tick)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", app.cfg.Watch.Schedule, err)
	}

	sched.Start()
	log.Info("watch started",
		"schedule", app.cfg.Watch.Schedule,
		"listen_addr", diag.Addr(),
		"analyze", app.cfg.Watch.Analyze)

	// First pass right away; the schedule covers the following ones.
	go tick()

	<-ctx.Done()

	log.Info("watch stopping")
	<-sched.Stop().Done()

	return nil
}

// pass fetches every registered topic once. Per-topic failures are logged
// and the pass moves on; only cancellation stops it.
func (wc *WatchCommand) pass(ctx context.Context, app *app, fetch *fetcher.Fetcher, analyzer *analysis.Analyzer) {
	log := app.providers.Logger

	list, err := app.topics.List()
	if err != nil {
		log.Error("list topics", "error", err)

		return
	}

	if len(list) == 0 {
		log.Info("no topics registered, nothing to fetch")

		return
	}

	for _, topic := range list {
		if ctx.Err() != nil {
			return
		}

		sum, fetchErr := fetch.Run(ctx, topic)
		if fetchErr != nil {
			log.Error("fetch pass failed", "topic", topic, "error", fetchErr)

			continue
		}

		log.Info("fetched", "topic", topic, "matched", sum.Matched, "appended", sum.Appended)

		if analyzer == nil {
			continue
		}

		res, analyzeErr := analyzer.Run(ctx, topic)
		if analyzeErr != nil {
			log.Error("analysis failed", "topic", topic, "error", analyzeErr)

			continue
		}

		log.Info("analyzed", "topic", topic, "analyzed", res.Analyzed, "tweets_total", res.TweetsTotal)
	}
}
