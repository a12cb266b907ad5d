package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
)

// meterScope names the instrumentation scope for meters handed out by the
// diagnostics server.
const meterScope = "twitteranalyzer"

// DiagnosticsServer exposes health, readiness, and Prometheus metrics
// endpoints over HTTP while the watch daemon runs.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
	provider *sdkmetric.MeterProvider
}

// NewDiagnosticsServer starts an HTTP server at addr with /healthz, /readyz,
// and /metrics endpoints. The readiness endpoint runs the given checks. Go
// runtime metrics are registered on the scrape registry; application
// instruments attach through [DiagnosticsServer.Meter].
func NewDiagnosticsServer(addr string, checks ...ReadyCheck) (*DiagnosticsServer, error) {
	mux := http.NewServeMux()

	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/readyz", ReadyHandler(checks...))

	metricsHandler, provider, err := PrometheusHandler()
	if err != nil {
		return nil, fmt.Errorf("create prometheus handler: %w", err)
	}

	mux.Handle("/metrics", metricsHandler)

	_, err = NewRuntimeMetrics(provider.Meter(meterScope))
	if err != nil {
		return nil, fmt.Errorf("register runtime metrics: %w", err)
	}

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: pkgobs.HTTPMiddleware(otel.Tracer(meterScope), mux)}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener, provider: provider}, nil
}

// Meter returns a meter whose instruments are collected into the /metrics
// scrape registry.
func (d *DiagnosticsServer) Meter() metric.Meter {
	return d.provider.Meter(meterScope)
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close gracefully shuts down the HTTP server and the metric provider.
func (d *DiagnosticsServer) Close() error {
	err := errors.Join(
		d.server.Shutdown(context.Background()),
		d.provider.Shutdown(context.Background()),
	)
	if err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
