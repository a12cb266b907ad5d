package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pabello/TwitterAnalyzer/internal/observability"
)

func setupMetrics(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := observability.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return m, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumInt64(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] data type")

	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}

	return total
}

func TestMetrics_ObservePage(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.ObservePage(ctx, "cats")
	m.ObservePage(ctx, "cats")

	rm := collectMetrics(t, reader)

	pages := findMetric(rm, "twitteranalyzer.fetch.pages.total")
	require.NotNil(t, pages, "pages counter should exist")
	assert.Equal(t, int64(2), sumInt64(t, pages))
}

func TestMetrics_ObserveRecords(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.ObserveRecords(ctx, "cats", 100, 73)

	rm := collectMetrics(t, reader)

	records := findMetric(rm, "twitteranalyzer.fetch.records.total")
	require.NotNil(t, records, "records counter should exist")
	assert.Equal(t, int64(173), sumInt64(t, records), "received and matched stages should both be counted")
}

func TestMetrics_ObserveRetry(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.ObserveRetry(ctx, "cats", "transient")
	m.ObserveRetry(ctx, "cats", "decode")

	rm := collectMetrics(t, reader)

	retries := findMetric(rm, "twitteranalyzer.fetch.retries.total")
	require.NotNil(t, retries, "retries counter should exist")
	assert.Equal(t, int64(2), sumInt64(t, retries))
}

func TestMetrics_ObserveFetchPass(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.ObserveFetchPass(ctx, "cats", 1500*time.Millisecond)

	rm := collectMetrics(t, reader)

	duration := findMetric(rm, "twitteranalyzer.fetch.pass.duration.seconds")
	require.NotNil(t, duration, "duration histogram should exist")

	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram data type")
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestMetrics_TrackPass(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	done := m.TrackPass(ctx, "cats")

	rm := collectMetrics(t, reader)
	inflight := findMetric(rm, "twitteranalyzer.fetch.inflight.passes")
	require.NotNil(t, inflight, "inflight gauge should exist")
	assert.Equal(t, int64(1), sumInt64(t, inflight))

	done()

	rm = collectMetrics(t, reader)
	inflight = findMetric(rm, "twitteranalyzer.fetch.inflight.passes")
	require.NotNil(t, inflight)
	assert.Equal(t, int64(0), sumInt64(t, inflight))
}

func TestMetrics_ObserveAnalysisRun(t *testing.T) {
	t.Parallel()

	m, reader := setupMetrics(t)
	ctx := context.Background()

	m.ObserveAnalysisRun(ctx, "cats", "english", 950, 3, 2*time.Second)

	rm := collectMetrics(t, reader)

	runs := findMetric(rm, "twitteranalyzer.analysis.runs.total")
	require.NotNil(t, runs, "runs counter should exist")
	assert.Equal(t, int64(1), sumInt64(t, runs))

	tweets := findMetric(rm, "twitteranalyzer.analysis.tweets.total")
	require.NotNil(t, tweets, "tweets counter should exist")
	assert.Equal(t, int64(953), sumInt64(t, tweets), "analyzed and skipped outcomes should both be counted")

	duration := findMetric(rm, "twitteranalyzer.analysis.run.duration.seconds")
	require.NotNil(t, duration, "run duration histogram should exist")
}

func TestMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *observability.Metrics

	ctx := context.Background()

	// None of these should panic.
	m.ObservePage(ctx, "cats")
	m.ObserveRecords(ctx, "cats", 10, 5)
	m.ObserveRetry(ctx, "cats", "transient")
	m.ObserveFetchPass(ctx, "cats", time.Second)
	m.ObserveAnalysisRun(ctx, "cats", "english", 1, 0, time.Second)

	done := m.TrackPass(ctx, "cats")
	require.NotNil(t, done)
	done()
}
