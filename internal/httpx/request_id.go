package httpx

import (
	"net/http"

	"bookshelf/internal/logger"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags every outbound request with an id, reusing the one
// already stored in the request context.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		requestID := logger.RequestID(r.Context())
		if requestID == "" {
			requestID = uuid.New().String()
		}

		r = r.Clone(logger.ContextWithID(r.Context(), requestID))
		r.Header.Set(RequestIDHeader, requestID)
		return next.RoundTrip(r)
	})
}
