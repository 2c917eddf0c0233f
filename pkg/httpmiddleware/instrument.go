package httpmiddleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument returns a middleware recording a request counter and a duration
// histogram on the given meter, labeled by method and status code. Route
// spans come from the otelhttp wrapper in the server wiring; this only adds
// the aggregate metrics.
func Instrument(serviceName string, mp metric.MeterProvider) (Middleware, error) {
	meter := mp.Meter(serviceName)

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Completed HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", sw.status),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start).Milliseconds()), attrs)
		})
	}
	return mw, nil
}
