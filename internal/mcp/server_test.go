package mcp_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/mcp"
	"github.com/pabello/TwitterAnalyzer/internal/topics"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

func testDeps(t *testing.T) mcp.ServerDeps {
	t.Helper()

	dir := t.TempDir()

	return mcp.ServerDeps{
		Topics: topics.NewRegistry(filepath.Join(dir, "topics.txt")),
		Logs:   tweetlog.NewStore(filepath.Join(dir, "outputs")),
		Docs:   analysis.NewDocStore(filepath.Join(dir, "analyses")),
	}
}

func TestNewServer_ReturnsNonNil(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testDeps(t))
	require.NotNil(t, srv)
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testDeps(t))

	tools := srv.ListToolNames()
	assert.Len(t, tools, 3)
	assert.Contains(t, tools, "list_topics")
	assert.Contains(t, tools, "topic_stats")
	assert.Contains(t, tools, "trending")
}

func TestServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testDeps(t))

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer func() {
		_ = session.Close()
	}()

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}

	assert.Contains(t, toolNames, "list_topics")
	assert.Contains(t, toolNames, "topic_stats")
	assert.Contains(t, toolNames, "trending")
	assert.Len(t, toolNames, 3)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	cancel()
	<-serverDone
}

func TestServer_InMemoryTransport_CallTopicStats(t *testing.T) {
	t.Parallel()

	deps := testDeps(t)

	doc := &analysis.Document{
		LastID:      42,
		TweetsCount: 2,
		Languages:   analysis.NewCountMap(),
	}
	doc.Languages.Add("en", 2)
	require.NoError(t, deps.Docs.Save("storm", "en", doc))

	srv := mcp.NewServer(deps)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer func() {
		_ = session.Close()
	}()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "topic_stats",
		Arguments: map[string]any{
			"topic": "storm",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"tweets_count": 2`)

	cancel()
	<-serverDone
}

func TestServer_InMemoryTransport_CallError(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testDeps(t))

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer func() {
		_ = session.Close()
	}()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "trending",
		Arguments: map[string]any{
			"topic": "storm",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	cancel()
	<-serverDone
}
