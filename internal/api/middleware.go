package api

import (
	"log"
	"net/http"
	"time"
)

// responseRecorder captures the status and size that actually went out on
// the wire, so the access log reflects what the client saw rather than what
// the handler intended.
type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Handlers that write without calling WriteHeader get an implicit 200.
func (w *responseRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// loggingMiddleware writes one access-log line per request; durations are in
// milliseconds, which is the right granularity for a solicitation round.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		log.Printf(
			"method=%s path=%s status=%d size=%d dur=%dms remote=%s",
			r.Method, r.URL.RequestURI(), rec.status, rec.size,
			time.Since(start).Milliseconds(), r.RemoteAddr,
		)
	})
}
