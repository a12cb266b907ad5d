package commands

import (
	"github.com/spf13/cobra"

	"github.com/pabello/TwitterAnalyzer/internal/mcp"
	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// MCPCommand holds configuration for the mcp command.
type MCPCommand struct {
	globals *GlobalOptions
}

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(globals *GlobalOptions) *cobra.Command {
	mc := &MCPCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the analysis state as tools that AI agents can discover
and invoke:
  - list_topics: registered topics with their log sizes and record counts
  - topic_stats: counters, followers and sentiment for a topic and language
  - trending:    the topic's trending hashtags and words`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          mc.run,
	}

	return cmd
}

func (mc *MCPCommand) run(cmd *cobra.Command, _ []string) error {
	app, err := newApp(mc.globals, pkgobs.ModeMCP)
	if err != nil {
		return err
	}
	defer app.close()

	srv := mcp.NewServer(mcp.ServerDeps{
		Topics:          app.topics,
		Logs:            app.logs,
		Docs:            app.docs,
		DefaultLanguage: app.cfg.Analysis.Language,
		Logger:          app.providers.Logger,
		Metrics:         app.metrics,
		Tracer:          app.providers.Tracer,
	})

	return srv.Run(cmd.Context())
}
