// Package observability holds the application-side instruments and the
// diagnostics HTTP surface: counters and histograms for fetch passes and
// analysis runs, plus the /healthz, /readyz, and /metrics endpoints used
// by the watch daemon. Provider bootstrap (OTLP, sampling, logging) lives
// in pkg/observability.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFetchPages     = "twitteranalyzer.fetch.pages.total"
	metricFetchRecords   = "twitteranalyzer.fetch.records.total"
	metricFetchRetries   = "twitteranalyzer.fetch.retries.total"
	metricFetchDuration  = "twitteranalyzer.fetch.pass.duration.seconds"
	metricFetchInflight  = "twitteranalyzer.fetch.inflight.passes"
	metricAnalysisRuns   = "twitteranalyzer.analysis.runs.total"
	metricAnalysisTweets = "twitteranalyzer.analysis.tweets.total"
	metricAnalysisTime   = "twitteranalyzer.analysis.run.duration.seconds"
	metricToolCalls      = "twitteranalyzer.mcp.tool.calls.total"
	metricToolTime       = "twitteranalyzer.mcp.tool.duration.seconds"

	attrTopic    = "topic"
	attrStage    = "stage"
	attrKind     = "kind"
	attrLanguage = "language"
	attrOutcome  = "outcome"
	attrTool     = "tool"
	attrStatus   = "status"

	stageReceived = "received"
	stageMatched  = "matched"

	outcomeAnalyzed = "analyzed"
	outcomeSkipped  = "skipped"
)

// durationBucketBoundaries covers 10ms to 600s: a single page fetch is
// sub-second while a cold backfill or a full-log analysis can run minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// Metrics holds the OTel instruments for fetch passes and analysis runs.
// All observe methods are safe to call on a nil receiver, so callers that
// run without telemetry can pass nil instead of guarding every call.
type Metrics struct {
	fetchPages     metric.Int64Counter
	fetchRecords   metric.Int64Counter
	fetchRetries   metric.Int64Counter
	fetchDuration  metric.Float64Histogram
	fetchInflight  metric.Int64UpDownCounter
	analysisRuns   metric.Int64Counter
	analysisTweets metric.Int64Counter
	analysisTime   metric.Float64Histogram
	toolCalls      metric.Int64Counter
	toolTime       metric.Float64Histogram
}

// NewMetrics creates the instrument set from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	b := newMetricBuilder(mt)

	m := &Metrics{
		fetchPages:     b.counter(metricFetchPages, "Total feed pages fetched", "{page}"),
		fetchRecords:   b.counter(metricFetchRecords, "Total records received and matched per page", "{record}"),
		fetchRetries:   b.counter(metricFetchRetries, "Total page retries by failure kind", "{retry}"),
		fetchDuration:  b.histogram(metricFetchDuration, "Fetch pass duration in seconds", "s", durationBucketBoundaries...),
		fetchInflight:  b.upDownCounter(metricFetchInflight, "Number of in-flight fetch passes", "{pass}"),
		analysisRuns:   b.counter(metricAnalysisRuns, "Total analysis runs", "{run}"),
		analysisTweets: b.counter(metricAnalysisTweets, "Total tweets analyzed or skipped", "{tweet}"),
		analysisTime:   b.histogram(metricAnalysisTime, "Analysis run duration in seconds", "s", durationBucketBoundaries...),
		toolCalls:      b.counter(metricToolCalls, "Total MCP tool calls by status", "{call}"),
		toolTime:       b.histogram(metricToolTime, "MCP tool call duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return m, nil
}

// ObservePage counts one fetched feed page.
func (m *Metrics) ObservePage(ctx context.Context, topic string) {
	if m == nil {
		return
	}

	m.fetchPages.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTopic, topic)))
}

// ObserveRecords counts the records received on a page and the subset that
// matched the topic keyword.
func (m *Metrics) ObserveRecords(ctx context.Context, topic string, received, matched int) {
	if m == nil {
		return
	}

	m.fetchRecords.Add(ctx, int64(received), metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrStage, stageReceived),
	))
	m.fetchRecords.Add(ctx, int64(matched), metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrStage, stageMatched),
	))
}

// ObserveRetry counts one page retry. Kind is "transient" for feed
// availability failures and "decode" for malformed pages.
func (m *Metrics) ObserveRetry(ctx context.Context, topic, kind string) {
	if m == nil {
		return
	}

	m.fetchRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrKind, kind),
	))
}

// ObserveFetchPass records the duration of a completed fetch pass.
func (m *Metrics) ObserveFetchPass(ctx context.Context, topic string, duration time.Duration) {
	if m == nil {
		return
	}

	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(attrTopic, topic)))
}

// TrackPass increments the in-flight pass gauge and returns a function to
// decrement it. Safe to call on a nil receiver; the returned function is
// never nil.
func (m *Metrics) TrackPass(ctx context.Context, topic string) func() {
	if m == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrTopic, topic))
	m.fetchInflight.Add(ctx, 1, attrs)

	return func() {
		m.fetchInflight.Add(ctx, -1, attrs)
	}
}

// ObserveAnalysisRun records a completed analysis run: its duration, the
// number of tweets that entered the analysis, and the number skipped.
func (m *Metrics) ObserveAnalysisRun(ctx context.Context, topic, language string, analyzed, skipped int, duration time.Duration) {
	if m == nil {
		return
	}

	runAttrs := metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrLanguage, language),
	)

	m.analysisRuns.Add(ctx, 1, runAttrs)
	m.analysisTime.Record(ctx, duration.Seconds(), runAttrs)

	m.analysisTweets.Add(ctx, int64(analyzed), metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrLanguage, language),
		attribute.String(attrOutcome, outcomeAnalyzed),
	))
	m.analysisTweets.Add(ctx, int64(skipped), metric.WithAttributes(
		attribute.String(attrTopic, topic),
		attribute.String(attrLanguage, language),
		attribute.String(attrOutcome, outcomeSkipped),
	))
}

// ObserveToolCall records one MCP tool invocation. Status is "ok" or
// "error".
func (m *Metrics) ObserveToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	m.toolCalls.Add(ctx, 1, attrs)
	m.toolTime.Record(ctx, duration.Seconds(), attrs)
}
