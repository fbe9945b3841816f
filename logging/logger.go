// Package logging provides structured logging using bolt.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Config configures a logger.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is the output format (json or console).
	Format string

	// Output is the output destination. Nil means stderr.
	Output io.Writer
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stderr,
	}
}

// ParseLevel converts a level name to bolt.Level. Unknown names are info.
func ParseLevel(s string) bolt.Level {
	switch strings.ToLower(s) {
	case "trace":
		return bolt.TRACE
	case "debug":
		return bolt.DEBUG
	case "info":
		return bolt.INFO
	case "warn":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

// New builds a logger from cfg.
func New(cfg Config) *bolt.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	var handler bolt.Handler
	if cfg.Format == "json" {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}
	return bolt.New(handler).SetLevel(ParseLevel(cfg.Level))
}

// Discard returns a logger that drops everything below error into
// io.Discard.
func Discard() *bolt.Logger {
	return bolt.New(bolt.NewJSONHandler(io.Discard)).SetLevel(bolt.ERROR)
}

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// With applies fields to e.
func With(e *bolt.Event, fields ...Field) *bolt.Event {
	for _, f := range fields {
		e = f(e)
	}
	return e
}

// RunID adds a run ID field.
func RunID(id string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("run_id", id) }
}

// Model adds the model name.
func Model(name string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("model", name) }
}

// Formula adds a formula field.
func Formula(f string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("formula", f) }
}

// Variant adds the strategic evaluation variant.
func Variant(v string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("variant", v) }
}

// Coalition adds a coalition as a comma-separated list.
func Coalition(group []string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("coalition", strings.Join(group, ",")) }
}

// Semantics adds the strategy semantics.
func Semantics(s string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str("semantics", s) }
}

// Result adds a check result.
func Result(holds bool) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Bool("holds", holds) }
}

// Count adds a named count.
func Count(key string, n int64) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Int64(key, n) }
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Int64("duration_ms", d.Milliseconds()) }
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
