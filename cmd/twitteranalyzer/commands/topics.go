package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/topics"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
	"github.com/pabello/TwitterAnalyzer/pkg/safeconv"
)

// NewTopicsCommand creates the topics command tree.
func NewTopicsCommand(globals *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage the registered topic list",
	}

	cmd.AddCommand(
		newTopicsListCommand(globals),
		newTopicsAddCommand(globals),
		newTopicsRemoveCommand(globals),
	)

	return cmd
}

func newTopicsListCommand(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered topics with their log and analysis state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(globals, pkgobs.ModeCLI)
			if err != nil {
				return err
			}
			defer app.close()

			return printTopicsTable(cmd.OutOrStdout(), app)
		},
	}
}

func newTopicsAddCommand(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <topic>...",
		Short: "Register topics for fetching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(globals, pkgobs.ModeCLI)
			if err != nil {
				return err
			}
			defer app.close()

			out := cmd.OutOrStdout()

			for _, arg := range args {
				topic := topics.Normalize(arg)

				addErr := app.topics.Add(topic)
				switch {
				case errors.Is(addErr, topics.ErrDuplicateTopic):
					fmt.Fprintf(out, "%s: already registered\n", topic)
				case addErr != nil:
					return addErr
				default:
					fmt.Fprintf(out, "%s: added\n", topic)
				}
			}

			return nil
		},
	}
}

func newTopicsRemoveCommand(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <topic>...",
		Short: "Drop topics from the list",
		Long: `Remove drops topics from the list so they are no longer fetched. Their
logs and analysis documents stay on disk.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(globals, pkgobs.ModeCLI)
			if err != nil {
				return err
			}
			defer app.close()

			out := cmd.OutOrStdout()

			for _, arg := range args {
				topic := topics.Normalize(arg)

				removeErr := app.topics.Remove(topic)
				if removeErr != nil {
					return removeErr
				}

				fmt.Fprintf(out, "%s: removed\n", topic)
			}

			return nil
		},
	}
}

func printTopicsTable(w io.Writer, app *app) error {
	list, err := app.topics.List()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "no topics registered")

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Topic", "Log Size", "Records", "Analyses"})

	var totalSize, totalRecords int64

	for _, topic := range list {
		stats, statsErr := app.logs.Stats(topic)
		if statsErr != nil {
			return statsErr
		}

		languages, langErr := app.docs.Languages(topic)
		if langErr != nil {
			return langErr
		}

		totalSize += stats.Size
		totalRecords += stats.Records

		tbl.AppendRow(table.Row{
			topic,
			humanize.Bytes(safeconv.MustInt64ToUint64(stats.Size)),
			humanize.Comma(stats.Records),
			strings.Join(languages, ", "),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d topics", len(list)),
		humanize.Bytes(safeconv.MustInt64ToUint64(totalSize)),
		humanize.Comma(totalRecords),
		"",
	})

	fmt.Fprintln(w, tbl.Render())

	return nil
}
