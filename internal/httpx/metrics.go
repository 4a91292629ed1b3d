package httpx

import (
	"net/http"
	"strconv"
	"time"

	"bookshelf/internal/metrics"
)

// Metrics records request counts and latency per method.
func Metrics(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		metrics.APIRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		metrics.APIRequestsTotal.WithLabelValues(r.Method, status).Inc()
		return resp, err
	})
}
