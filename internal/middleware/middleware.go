package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskBoard/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const requestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds ids supplied by clients.
const maxRequestIDLen = 64

const msgInternal = "Internal server error"

// RequestID reuses the caller's X-Request-ID when it is short enough and
// generates one otherwise. The id is echoed back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder keeps what the access log needs once the handler returns.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wroteHeader {
		return
	}
	sr.status = code
	sr.wroteHeader = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// accessEntry is filled in further down the chain; Authenticate records the
// session user here.
type accessEntry struct {
	userID string
}

const accessEntryKey contextKey = "access_entry"

func recordUser(ctx context.Context, userID string) {
	if entry, ok := ctx.Value(accessEntryKey).(*accessEntry); ok {
		entry.userID = userID
	}
}

// Logging writes one line when a request arrives and one when it completes.
// The closing line carries the chi route pattern and the acting user.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := GetRequestID(r.Context())

		logger.HTTPRequest(r, "HTTP_IN: request started", zap.String("request_id", requestID))

		entry := &accessEntry{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), accessEntryKey, entry)))

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", rec.status),
			zap.Int("bytes_written", rec.size),
			zap.Duration("ms", time.Since(start)),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			fields = append(fields, zap.String("route", rctx.RoutePattern()))
		}
		if entry.userID != "" {
			fields = append(fields, zap.String("user_id", entry.userID))
		}

		level := zap.InfoLevel
		switch {
		case rec.status >= 500:
			level = zap.ErrorLevel
		case rec.status >= 400:
			level = zap.WarnLevel
		}
		logger.Log(level, "HTTP_OUT: request finished", fields...)
	})
}

// Timeout puts a deadline on the request context. Storage calls observe it;
// the handler still writes the response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Warn(
					"HTTP: request timeout",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("ms", timeout),
				)
			}
		})
	}
}

// Recover turns a panic into the generic 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Logger.Error("HTTP: panic recovered",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}()

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: failed to encode response", err)
	}
}
