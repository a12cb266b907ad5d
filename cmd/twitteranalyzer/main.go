// Package main provides the entry point for the twitteranalyzer CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/cmd/twitteranalyzer/commands"
	"github.com/pabello/TwitterAnalyzer/pkg/version"
)

func main() {
	globals := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "twitteranalyzer",
		Short: "TwitterAnalyzer - topic feed ingestion and trend analysis",
		Long: `TwitterAnalyzer fetches keyword-matching tweets into per-topic logs,
folds them incrementally into analysis documents and renders trending
dashboards.

Commands:
  fetch     Fetch new tweets for topics into their logs
  analyze   Fold new log records into analysis documents
  plot      Render HTML dashboards from analysis documents
  topics    Manage the registered topic list
  archive   Write compressed snapshots of topic logs
  watch     Fetch registered topics on a schedule
  validate  Validate analysis documents against the schema
  mcp       Start MCP server for AI agent integration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "",
		"config file (default: .twitteranalyzer.yaml in cwd or home)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose logging")

	// Add commands.
	rootCmd.AddCommand(commands.NewFetchCommand(globals))
	rootCmd.AddCommand(commands.NewAnalyzeCommand(globals))
	rootCmd.AddCommand(commands.NewPlotCommand(globals))
	rootCmd.AddCommand(commands.NewTopicsCommand(globals))
	rootCmd.AddCommand(commands.NewArchiveCommand(globals))
	rootCmd.AddCommand(commands.NewWatchCommand(globals))
	rootCmd.AddCommand(commands.NewValidateCommand(globals))
	rootCmd.AddCommand(commands.NewMCPCommand(globals))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "twitteranalyzer %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
