package httputil

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/quillhq/quill/pkg/logging"
)

// LoggingRoundTripper logs every outbound request with a generated request ID,
// method, host, path, status code and duration. It never alters the request
// or response.
type LoggingRoundTripper struct {
	Next http.RoundTripper
}

func NewLoggingRoundTripper(next http.RoundTripper) *LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingRoundTripper{Next: next}
}

func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	reqID := uuid.New().String()
	log := logging.FromContext(req.Context()).WithFields(logging.Fields{
		logging.RequestIDFieldKey: reqID,
		logging.MethodFieldKey:    req.Method,
		logging.HostFieldKey:      req.URL.Host,
		logging.PathFieldKey:      req.URL.Path,
	})

	startTime := time.Now()
	resp, err := t.Next.RoundTrip(req)
	took := time.Since(startTime)
	if err != nil {
		log.WithError(err).WithField("took", took).Warn("HTTP call failed")
		return resp, err
	}
	log.WithFields(logging.Fields{
		"took":        took,
		"status_code": resp.StatusCode,
	}).Debug("HTTP call ended")
	return resp, nil
}
