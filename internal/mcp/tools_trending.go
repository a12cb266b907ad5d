package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// TrendingEntry is one ranked entry of the trending tool output.
type TrendingEntry struct {
	Entry string `json:"entry"`
	Count int64  `json:"count"`
}

// TrendingView is the trending tool output: the document's trending list
// in rank order, hashtags first.
type TrendingView struct {
	Topic    string          `json:"topic"`
	Language string          `json:"language"`
	Trending []TrendingEntry `json:"trending"`
}

// handleTrending processes trending tool calls.
func (s *Server) handleTrending(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input TrendingInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	topic, language, err := s.resolveTopic(input.Topic, input.Language)
	if err != nil {
		return errorResult(err)
	}

	doc, err := s.loadDocument(topic, language)
	if err != nil {
		return errorResult(err)
	}

	view := TrendingView{
		Topic:    topic,
		Language: language,
		Trending: []TrendingEntry{},
	}

	if doc.Trending != nil {
		for _, entry := range doc.Trending.Entries() {
			view.Trending = append(view.Trending, TrendingEntry{Entry: entry.Key, Count: entry.Count})
		}
	}

	return jsonResult(view)
}
