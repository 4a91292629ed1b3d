package httpx

import (
	"net/http"
	"time"

	"bookshelf/internal/logger"

	"github.com/sirupsen/logrus"
)

// AccessLog writes one debug line per outbound request.
func AccessLog(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		entry := logger.For(r.Context()).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Debug("access")
			return resp, err
		}
		entry.WithField("status", resp.StatusCode).Debug("access")
		return resp, nil
	})
}
