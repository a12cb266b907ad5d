package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// TopicInfo is one row of the list_topics output.
type TopicInfo struct {
	Topic    string `json:"topic"`
	LogBytes int64  `json:"log_bytes"`
	Records  int64  `json:"records"`
}

// handleListTopics processes list_topics tool calls.
func (s *Server) handleListTopics(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	_ ListTopicsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	list, err := s.topics.List()
	if err != nil {
		return errorResult(fmt.Errorf("list topics: %w", err))
	}

	infos := make([]TopicInfo, 0, len(list))

	for _, topic := range list {
		stats, statsErr := s.logs.Stats(topic)
		if statsErr != nil {
			return errorResult(fmt.Errorf("stat log for %s: %w", topic, statsErr))
		}

		infos = append(infos, TopicInfo{
			Topic:    topic,
			LogBytes: stats.Size,
			Records:  stats.Records,
		})
	}

	return jsonResult(infos)
}
