package mcp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pabello/TwitterAnalyzer/internal/analysis"
	"github.com/pabello/TwitterAnalyzer/internal/topics"
)

// TopicStats is the topic_stats output: the cumulative counters of one
// topic's analysis document.
type TopicStats struct {
	Topic          string              `json:"topic"`
	Language       string              `json:"language"`
	LastID         int64               `json:"last_id"`
	TweetsCount    int64               `json:"tweets_count"`
	TweetsApplying int64               `json:"tweets_applying_for_analysis"`
	Followers      int64               `json:"followers"`
	Languages      *analysis.CountMap  `json:"languages"`
	Sentiment      *analysis.Sentiment `json:"sentiment,omitempty"`
}

// handleTopicStats processes topic_stats tool calls.
func (s *Server) handleTopicStats(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input TopicStatsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	topic, language, err := s.resolveTopic(input.Topic, input.Language)
	if err != nil {
		return errorResult(err)
	}

	doc, err := s.loadDocument(topic, language)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(TopicStats{
		Topic:          topic,
		Language:       language,
		LastID:         doc.LastID,
		TweetsCount:    doc.TweetsCount,
		TweetsApplying: doc.TweetsApplying,
		Followers:      doc.Followers,
		Languages:      doc.Languages,
		Sentiment:      doc.Sentiment,
	})
}

// resolveTopic normalizes the topic and fills in the default language.
func (s *Server) resolveTopic(topic, language string) (string, string, error) {
	topic = topics.Normalize(topic)
	if topic == "" {
		return "", "", ErrEmptyTopic
	}

	if language == "" {
		language = s.language
	}

	return topic, language, nil
}

// loadDocument reads the persisted analysis document, mapping a missing
// file onto ErrNoDocument.
func (s *Server) loadDocument(topic, language string) (*analysis.Document, error) {
	doc, err := s.docs.Load(topic, language)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNoDocument, topic, language)
		}

		return nil, err
	}

	return doc, nil
}
