package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/feed/twitter"
	"github.com/pabello/TwitterAnalyzer/internal/fetcher"
	"github.com/pabello/TwitterAnalyzer/internal/topics"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// Match-rate bands for the colored pass summary.
const (
	matchRateFull = 100
	matchRateHigh = 90
	matchRateFair = 70
	matchRateLow  = 40
)

// FetchCommand holds configuration for the fetch command.
type FetchCommand struct {
	globals *GlobalOptions

	dryRun   bool
	analyze  bool
	language string
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(globals *GlobalOptions) *cobra.Command {
	fc := &FetchCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "fetch [topics...]",
		Short: "Fetch new tweets for topics into their logs",
		Long: `Fetch runs one feed pass per topic: pages of keyword-matching tweets are
pulled newest first and appended to the topic's log. Topics given as
arguments are added to the topic list; with no arguments every registered
topic is fetched.`,
		RunE: fc.run,
	}

	cmd.Flags().BoolVar(&fc.dryRun, "dry-run", false, "Tally matches without writing logs")
	cmd.Flags().BoolVar(&fc.analyze, "analyze", false, "Run the analyzer after each topic's pass")
	cmd.Flags().StringVar(&fc.language, "language", "", "Analysis language for --analyze (default: configured)")

	return cmd
}

func (fc *FetchCommand) run(cmd *cobra.Command, args []string) error {
	app, err := newApp(fc.globals, pkgobs.ModeCLI)
	if err != nil {
		return err
	}
	defer app.close()

	list, err := fc.registerTopics(app, args)
	if err != nil {
		return err
	}

	client := twitter.NewClient(app.cfg.TwitterConfig())
	fetch := fetcher.New(client, app.logs, app.cfg.FetcherConfig(fc.dryRun), app.providers.Logger, app.metrics)

	var analyzer *analysis.Analyzer

	if fc.analyze {
		analyzer, err = app.newAnalyzer(fc.language)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	for _, topic := range list {
		sum, runErr := fetch.Run(cmd.Context(), topic)
		if runErr != nil {
			return fmt.Errorf("fetch %s: %w", topic, runErr)
		}

		printFetchSummary(out, sum)

		if analyzer == nil {
			continue
		}

		res, analyzeErr := analyzer.Run(cmd.Context(), topic)
		if analyzeErr != nil {
			return fmt.Errorf("analyze %s: %w", topic, analyzeErr)
		}

		printAnalysisResult(out, res)
	}

	return nil
}

// registerTopics resolves the topics to fetch. New positional topics are
// appended to the registry so later runs pick them up.
func (fc *FetchCommand) registerTopics(app *app, args []string) ([]string, error) {
	list, err := app.topicList(args)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return list, nil
	}

	for _, topic := range list {
		addErr := app.topics.Add(topic)
		if addErr != nil && !errors.Is(addErr, topics.ErrDuplicateTopic) {
			return nil, addErr
		}
	}

	return list, nil
}

// printFetchSummary writes one topic's pass outcome with the match rate
// colored by band.
func printFetchSummary(w io.Writer, sum fetcher.Summary) {
	mode := ""
	if sum.DryRun {
		mode = " (dry run)"
	}

	fmt.Fprintf(w, "%s%s: %s received, %s matched, %s appended in %s\n",
		sum.Topic, mode,
		humanize.Comma(int64(sum.Received)),
		humanize.Comma(int64(sum.Matched)),
		humanize.Comma(int64(sum.Appended)),
		sum.Duration.Round(time.Millisecond))

	rate := sum.MatchRate()
	matchRateColor(rate).Fprintf(w, "  match rate: %.1f%%\n", rate)

	if sum.Merged {
		fmt.Fprintf(w, "  head merged into main log\n")
	}
}

func matchRateColor(rate float64) *color.Color {
	switch {
	case rate >= matchRateFull:
		return color.New(color.FgGreen, color.Bold)
	case rate >= matchRateHigh:
		return color.New(color.FgGreen)
	case rate >= matchRateFair:
		return color.New(color.FgYellow)
	case rate >= matchRateLow:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed)
	}
}
