package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameListTopics = "list_topics"
	ToolNameTopicStats = "topic_stats"
	ToolNameTrending   = "trending"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyTopic indicates the topic parameter is empty.
	ErrEmptyTopic = errors.New("topic parameter is required and must not be empty")
	// ErrNoDocument indicates no analysis document exists for the
	// topic and language.
	ErrNoDocument = errors.New("no analysis document for topic")
)

// Input types (auto-generate JSON schemas via struct tags).

// ListTopicsInput is the input schema for the list_topics tool.
type ListTopicsInput struct{}

// TopicStatsInput is the input schema for the topic_stats tool.
type TopicStatsInput struct {
	Topic    string `json:"topic"              jsonschema:"topic whose statistics to report"`
	Language string `json:"language,omitempty" jsonschema:"analysis language (default: configured language)"`
}

// TrendingInput is the input schema for the trending tool.
type TrendingInput struct {
	Topic    string `json:"topic"              jsonschema:"topic whose trending view to report"`
	Language string `json:"language,omitempty" jsonschema:"analysis language (default: configured language)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
