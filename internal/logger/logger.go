package logger

import (
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	tokenRegex = regexp.MustCompile(`eyJ[^\s]+`)
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Logger is a centralized structured logger
type Logger struct {
	out zerolog.Logger
}

// New creates a new Logger writing JSON lines to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter creates a Logger writing to w; used by tests to capture output.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		out: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// SetLevel sets the global minimum level ("debug", "info", "error", ...).
// Unknown values leave the level unchanged.
func SetLevel(level string) {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
	}
}

// Anonymize replaces sensitive information in logs (emails, tokens)
func Anonymize(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	return s
}

// --- Convenient methods ---
func (l *Logger) Info(module, msg string) {
	l.out.Info().Str("module", module).Msg(Anonymize(msg))
}

func (l *Logger) Debug(module, msg string) {
	l.out.Debug().Str("module", module).Msg(Anonymize(msg))
}

func (l *Logger) Error(module, msg string, err error) {
	ev := l.out.Error().Str("module", module)
	if err != nil {
		ev = ev.Str("error", Anonymize(err.Error()))
	}
	ev.Msg(Anonymize(msg))
}
