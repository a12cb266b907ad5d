package observability

import (
	"context"
	"net/http"
)

const (
	healthBodyOK          = `{"status":"ok"}`
	healthBodyUnavailable = `{"status":"unavailable"}`
)

// ReadyCheck reports whether a subsystem is ready to serve. It returns nil
// when the check passes, or an error describing the failure.
type ReadyCheck func(ctx context.Context) error

// HealthHandler returns an [http.Handler] for liveness checks at /healthz.
// It always answers HTTP 200 with {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, healthBodyOK)
	})
}

// ReadyHandler returns an [http.Handler] for readiness checks at /readyz.
// It runs all provided checks; the first failure yields HTTP 503 with
// {"status":"unavailable"}. No checks, or all passing, yields HTTP 200.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		for _, check := range checks {
			err := check(hr.Context())
			if err != nil {
				writeHealth(rw, http.StatusServiceUnavailable, healthBodyUnavailable)

				return
			}
		}

		writeHealth(rw, http.StatusOK, healthBodyOK)
	})
}

func writeHealth(rw http.ResponseWriter, code int, body string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	_, err := rw.Write([]byte(body))
	if err != nil {
		return
	}
}
