package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nick-pape/mcp-custom-command-line/internal/api/ctxkeys"
)

// AccessLog writes one structured log line per request once the handler
// returns. Expected order in router: RequestID -> AccessLog -> auth -> handlers,
// so rejected requests are logged too.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			// The auth middleware runs inside this one, so it reports the
			// subject back through a holder placed in the context.
			holder := &subjectHolder{}
			r = r.WithContext(context.WithValue(r.Context(), subjectHolderKey{}, holder))

			next.ServeHTTP(recorder, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			}
			if holder.subject != "" {
				attrs = append(attrs, "subject", holder.subject)
			}
			logger.Log(r.Context(), levelFromStatus(recorder.statusCode), "http request", attrs...)
		})
	}
}

type subjectHolderKey struct{}

type subjectHolder struct {
	subject string
}

// recordSubject passes the authenticated subject up to AccessLog, if present.
func recordSubject(ctx context.Context) {
	h, ok := ctx.Value(subjectHolderKey{}).(*subjectHolder)
	if !ok {
		return
	}
	if sub, ok := ctx.Value(ctxkeys.Subject).(string); ok {
		h.subject = sub
	}
}

// statusRecorder keeps the response status. It forwards Flush so streamed
// MCP responses still reach the client incrementally.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func levelFromStatus(statusCode int) slog.Level {
	switch {
	case statusCode >= 500:
		return slog.LevelError
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden || statusCode == http.StatusTooManyRequests:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
