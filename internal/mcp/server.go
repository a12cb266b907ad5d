// Package mcp implements a Model Context Protocol server exposing the
// analyzer's topic data as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/observability"
	"github.com/pabello/TwitterAnalyzer/internal/topics"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "twitteranalyzer"
	// serverVersion is the MCP server implementation version.
	serverVersion = "1.0.0"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
type ServerDeps struct {
	// Topics reads the topic list. Required.
	Topics *topics.Registry

	// Logs reads per-topic tweet logs. Required.
	Logs *tweetlog.Store

	// Docs reads persisted analysis documents. Required.
	Docs *analysis.DocStore

	// DefaultLanguage is used when a tool call omits the language.
	// Empty means the analyzer default.
	DefaultLanguage string

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional instrument set. Nil disables per-tool metrics.
	Metrics *observability.Metrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil
	// disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the analyzer tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	topics   *topics.Registry
	logs     *tweetlog.Store
	docs     *analysis.DocStore
	language string

	mu      sync.RWMutex
	tools   []string
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewServer creates an MCP server with all analyzer tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	language := deps.DefaultLanguage
	if language == "" {
		language = analysis.DefaultLanguage
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		opts,
	)

	srv := &Server{
		inner:    inner,
		topics:   deps.Topics,
		logs:     deps.Logs,
		docs:     deps.Docs,
		language: language,
		tools:    make([]string, 0, toolCount),
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all analyzer MCP tools to the server.
func (s *Server) registerTools() {
	s.registerListTopicsTool()
	s.registerTopicStatsTool()
	s.registerTrendingTool()
}

func (s *Server) registerListTopicsTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListTopics,
		Description: listTopicsToolDescription,
	}, withMetrics(s.metrics, ToolNameListTopics, withTracing(s.tracer, ToolNameListTopics, s.handleListTopics)))

	s.trackTool(ToolNameListTopics)
}

func (s *Server) registerTopicStatsTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTopicStats,
		Description: topicStatsToolDescription,
	}, withMetrics(s.metrics, ToolNameTopicStats, withTracing(s.tracer, ToolNameTopicStats, s.handleTopicStats)))

	s.trackTool(ToolNameTopicStats)
}

func (s *Server) registerTrendingTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTrending,
		Description: trendingToolDescription,
	}, withMetrics(s.metrics, ToolNameTrending, withTracing(s.tracer, ToolNameTrending, s.handleTrending)))

	s.trackTool(ToolNameTrending)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per
// invocation and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record call metrics per
// invocation.
func withMetrics[Input any](
	metrics *observability.Metrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.ObserveToolCall(ctx, toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	listTopicsToolDescription = "List the tracked topics together with the size and " +
		"record count of each topic's tweet log."

	topicStatsToolDescription = "Report the persisted analysis statistics for one topic " +
		"and language: tweet counts, follower reach, language distribution and the " +
		"mean sentiment when scored."

	trendingToolDescription = "Report the trending view for one topic and language: " +
		"the leading hashtags followed by the leading words, with their counts."
)
