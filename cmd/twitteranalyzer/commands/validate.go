package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// ErrValidationFailed reports documents that violated the schema.
var ErrValidationFailed = errors.New("documents failed validation")

// ValidateCommand holds configuration for the validate command.
type ValidateCommand struct {
	globals *GlobalOptions

	language string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(globals *GlobalOptions) *cobra.Command {
	vc := &ValidateCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "validate [topics...]",
		Short: "Validate analysis documents against the schema",
		Long: `Validate checks each topic's persisted analysis document against the
embedded JSON schema. Topics without a document are skipped.`,
		RunE: vc.run,
	}

	cmd.Flags().StringVar(&vc.language, "language", "", "Analysis language (default: configured)")

	return cmd
}

func (vc *ValidateCommand) run(cmd *cobra.Command, args []string) error {
	app, err := newApp(vc.globals, pkgobs.ModeCLI)
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.topicList(args)
	if err != nil {
		return err
	}

	language := app.language(vc.language)
	out := cmd.OutOrStdout()
	failed := 0

	for _, topic := range list {
		label := fmt.Sprintf("%s (%s)", topic, language)

		data, readErr := os.ReadFile(app.docs.Path(topic, language))
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				color.New(color.FgYellow).Fprintf(out, "%s: no document\n", label)

				continue
			}

			return readErr
		}

		violations, valErr := analysis.ValidateDocument(data)
		if valErr != nil {
			return fmt.Errorf("validate %s: %w", label, valErr)
		}

		if len(violations) == 0 {
			color.New(color.FgGreen).Fprintf(out, "%s: valid\n", label)

			continue
		}

		failed++

		color.New(color.FgRed).Fprintf(out, "%s: invalid\n", label)

		for _, violation := range violations {
			color.New(color.FgRed).Fprintf(out, "  - %s\n", violation)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d", ErrValidationFailed, failed)
	}

	return nil
}
