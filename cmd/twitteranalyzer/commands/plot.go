package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/plot"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// ErrNoDocument is returned when a topic has no persisted analysis document.
var ErrNoDocument = errors.New("no analysis document: run 'analyze' first")

// PlotCommand holds configuration for the plot command.
type PlotCommand struct {
	globals *GlobalOptions

	language string
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(globals *GlobalOptions) *cobra.Command {
	pc := &PlotCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "plot [topics...]",
		Short: "Render HTML dashboards from analysis documents",
		Long: `Plot renders one HTML dashboard per topic from its persisted analysis
document: tweet activity by date, leading hashtags and leading words.
With no arguments every registered topic is plotted.`,
		RunE: pc.run,
	}

	cmd.Flags().StringVar(&pc.language, "language", "", "Analysis language (default: configured)")

	return cmd
}

func (pc *PlotCommand) run(cmd *cobra.Command, args []string) error {
	app, err := newApp(pc.globals, pkgobs.ModeCLI)
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.topicList(args)
	if err != nil {
		return err
	}

	language := app.language(pc.language)
	renderer := plot.NewRenderer(app.cfg.Data.PlotsDir)
	out := cmd.OutOrStdout()

	for _, topic := range list {
		doc, loadErr := app.docs.Load(topic, language)
		if loadErr != nil {
			if errors.Is(loadErr, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s (%s)", ErrNoDocument, topic, language)
			}

			return loadErr
		}

		path, renderErr := renderer.Render(topic, language, doc)
		if renderErr != nil {
			return fmt.Errorf("plot %s: %w", topic, renderErr)
		}

		fmt.Fprintf(out, "%s (%s): wrote %s\n", topic, language, path)
	}

	return nil
}
