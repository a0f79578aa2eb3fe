package timingwheel

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is a minimal bridge so this package doesn't hard-wire a
// specific logging library into its public API. Printf mirrors the
// retrieved timer libraries' own logger seam; ZerologLogger below is
// the structured default callers opt into via WithLogger.
type Logger interface {
	Printf(msg string, args ...any)
}

// LoggerFunc adapts a plain function to the Logger interface.
type LoggerFunc func(string, ...any)

// Printf implements Logger.
func (f LoggerFunc) Printf(msg string, args ...any) { f(msg, args...) }

// nopLogger is the default: the core stays silent unless a caller
// opts in with WithLogger.
var nopLogger Logger = LoggerFunc(func(string, ...any) {})

// ZerologLogger adapts a zerolog.Logger to this package's Logger
// interface, rendering the message with fmt-style args via Sprintf
// semantics so it's a drop-in for the Printf-shaped contract.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a Logger backed by a zerolog.Logger writing
// to stderr in console format, suitable as a development default;
// production callers typically construct their own zerolog.Logger and
// wrap it instead.
func NewZerologLogger() *ZerologLogger {
	return &ZerologLogger{log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}
}

// WrapZerolog adapts an existing zerolog.Logger.
func WrapZerolog(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: l}
}

// Printf implements Logger.
func (z *ZerologLogger) Printf(msg string, args ...any) {
	z.log.Warn().Msgf(msg, args...)
}
