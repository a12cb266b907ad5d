package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/pabello/TwitterAnalyzer/pkg/observability"
)

func setupSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	return tp, recorder
}

func TestHTTPMiddleware_CreatesSpanPerRequest(t *testing.T) {
	t.Parallel()

	tp, recorder := setupSpanRecorder(t)

	next := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	handler := observability.HTTPMiddleware(tp.Tracer("test"), next)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /metrics", spans[0].Name())
}

func TestHTTPMiddleware_CapturesImplicitOK(t *testing.T) {
	t.Parallel()

	tp, recorder := setupSpanRecorder(t)

	// Handler writes a body without calling WriteHeader.
	next := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("ok"))
	})
	handler := observability.HTTPMiddleware(tp.Tracer("test"), next)

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == "http.response.status_code" {
			assert.Equal(t, int64(http.StatusOK), attr.Value.AsInt64())
		}
	}
}

func TestHTTPMiddleware_MarksServerErrors(t *testing.T) {
	t.Parallel()

	tp, recorder := setupSpanRecorder(t)

	next := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	})
	handler := observability.HTTPMiddleware(tp.Tracer("test"), next)

	req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Internal Server Error", spans[0].Status().Description)
}

func TestHTTPMiddleware_RecordsBodySize(t *testing.T) {
	t.Parallel()

	tp, recorder := setupSpanRecorder(t)

	next := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte("scrape me"))
	})
	handler := observability.HTTPMiddleware(tp.Tracer("test"), next)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	size := int64(-1)

	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == "http.response.body.size" {
			size = attr.Value.AsInt64()
		}
	}

	assert.Equal(t, int64(len("scrape me")), size)
}
