package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// Production uses the JSON handler; everything else gets human-readable text.
func Init(environment string) {
	var handler slog.Handler
	if strings.EqualFold(environment, "production") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

// WithSession returns a logger that tags every record with the chat session.
func WithSession(sessionID string) *slog.Logger {
	return slog.With(slog.String("session_id", sessionID))
}
