package log

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/motemen/go-loghttp"
)

// Logger is the global logger instance
var Logger *slog.Logger

// InitLogger initializes the global logger
// It sets the log level to Debug if FIRMS_DEBUG is set
func InitLogger() {
	level := slog.LevelInfo
	if os.Getenv("FIRMS_DEBUG") != "" {
		level = slog.LevelDebug
	}
	SetOutput(os.Stderr, level)

	loghttp.DefaultTransport.LogRequest = func(req *http.Request) {
		Debug("HTTP request",
			"method", req.Method,
			"url", redactedURL(req),
		)
	}

	loghttp.DefaultTransport.LogResponse = func(resp *http.Response) {
		Debug("HTTP response",
			"method", resp.Request.Method,
			"url", redactedURL(resp.Request),
			"status", resp.Status,
			"status_code", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"),
		)
	}
}

// SetOutput replaces the global logger with a text handler writing to w
func SetOutput(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// redactedQuery lists the query parameters that carry credentials
var redactedQuery = []string{"MAP_KEY", "ak", "sn"}

// redactedURL hides credential query parameters such as the FIRMS MAP_KEY and
// the Baidu ak and sn. Path-embedded map keys are left as-is since they are
// needed to debug 4xx bodies.
func redactedURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	q := u.Query()
	redacted := false
	for _, key := range redactedQuery {
		if q.Has(key) {
			q.Set(key, "xxxxx")
			redacted = true
		}
	}
	if redacted {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// init initializes the logger when the package is imported
func init() {
	InitLogger()
}

// Transport returns the logging round tripper used by the API clients
func Transport() http.RoundTripper {
	return loghttp.DefaultTransport
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
