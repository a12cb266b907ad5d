package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
	"github.com/pabello/TwitterAnalyzer/pkg/persist"
)

// Output formats for --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown format: supported formats are json, yaml")

// AnalyzeCommand holds configuration for the analyze command.
type AnalyzeCommand struct {
	globals *GlobalOptions

	language string
	reset    bool
	format   string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(globals *GlobalOptions) *cobra.Command {
	ac := &AnalyzeCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "analyze [topics...]",
		Short: "Run the incremental analyzer over topic logs",
		Long: `Analyze folds the log records newer than each topic's persisted document
into that document: counters, the trending view and, when enabled,
sentiment. With no arguments every registered topic is analyzed.`,
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.language, "language", "", "Analysis language (default: configured)")
	cmd.Flags().BoolVar(&ac.reset, "reset", false, "Discard the persisted document and analyze from scratch")
	cmd.Flags().StringVar(&ac.format, "format", "", "Print the resulting document: json or yaml")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	codec, err := documentCodec(ac.format)
	if err != nil {
		return err
	}

	app, err := newApp(ac.globals, pkgobs.ModeCLI)
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.topicList(args)
	if err != nil {
		return err
	}

	analyzer, err := app.newAnalyzer(ac.language)
	if err != nil {
		return err
	}

	language := app.language(ac.language)
	out := cmd.OutOrStdout()

	for _, topic := range list {
		if ac.reset {
			resetErr := removeDocument(app.docs.Path(topic, language))
			if resetErr != nil {
				return resetErr
			}
		}

		res, runErr := analyzer.Run(cmd.Context(), topic)
		if runErr != nil {
			return fmt.Errorf("analyze %s: %w", topic, runErr)
		}

		printAnalysisResult(out, res)

		if codec == nil {
			continue
		}

		printErr := printDocument(out, app, topic, language, codec)
		if printErr != nil {
			return printErr
		}
	}

	return nil
}

// documentCodec maps the --format flag to a persist codec; empty means no
// document output.
func documentCodec(format string) (persist.Codec, error) {
	switch format {
	case "":
		return nil, nil
	case formatJSON:
		return persist.NewJSONCodec(), nil
	case formatYAML:
		return persist.NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// removeDocument deletes a persisted document; a missing one is fine.
func removeDocument(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reset document: %w", err)
	}

	return nil
}

func printDocument(w io.Writer, app *app, topic, language string, codec persist.Codec) error {
	doc, err := app.docs.Load(topic, language)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(w, "  no document for %s (%s)\n", topic, language)

			return nil
		}

		return err
	}

	return codec.Encode(w, doc)
}

// printAnalysisResult writes one topic's analysis outcome.
func printAnalysisResult(w io.Writer, res analysis.Result) {
	fmt.Fprintf(w, "%s (%s): %s scanned, %s analyzed, %s bots, %s skipped in %s\n",
		res.Topic, res.Language,
		humanize.Comma(int64(res.Scanned)),
		humanize.Comma(int64(res.Analyzed)),
		humanize.Comma(int64(res.Bots)),
		humanize.Comma(int64(res.Skipped)),
		res.Duration.Round(time.Millisecond))

	if res.Persisted {
		fmt.Fprintf(w, "  %s tweets total, document at %s\n",
			humanize.Comma(res.TweetsTotal), res.DocPath)
	} else {
		fmt.Fprintf(w, "  no new records\n")
	}
}
