package logging

import (
	"io"
	"log/slog"

	"github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatLogrus = "logrus"
)

// New builds a Logger writing to w in the given format. Unknown formats
// fall back to slog JSON. Sensitive attributes are redacted by every
// backend.
func New(format string, w io.Writer) Logger {
	opts := &slog.HandlerOptions{ReplaceAttr: redactAttr}

	switch format {
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, opts)))
	case FormatLogrus:
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		return NewLogrusLogger(l)
	default:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, opts)))
	}
}
