package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]bolt.Level{
		"trace":   bolt.TRACE,
		"DEBUG":   bolt.DEBUG,
		"info":    bolt.INFO,
		"warn":    bolt.WARN,
		"error":   bolt.ERROR,
		"verbose": bolt.INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "json", Output: &buf})

	With(logger.Info(),
		RunID("r1"),
		Model("coins"),
		Formula("<'a1'> X 'x'"),
		Variant("SF"),
		Semantics("group"),
		Coalition([]string{"a1", "a2"}),
		Result(true),
		Count("strategies", 4),
		Duration(1500*time.Millisecond),
		ErrorField(errors.New("boom")),
		ErrorField(nil),
	).Msg("checked")

	out := buf.String()
	for _, key := range []string{"run_id", "model", "formula", "variant", "semantics", "coalition", "holds", "strategies", "duration_ms", "boom", "checked"} {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "a1,a2")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json", Output: &buf})
	With(logger.Info(), Model("hidden")).Msg("dropped")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "info", Format: "console", Output: &buf}).Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestDiscard(t *testing.T) {
	With(Discard().Info(), Model("x")).Msg("nothing")
}
