package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoader_LoadFile_YAML(t *testing.T) {
	path := writeFile(t, "atlk.yaml", `
variant: FSF
semantics: individual
log:
  level: debug
bdd:
  node_size: 20000
`)
	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FSF", cfg.Variant)
	assert.Equal(t, "individual", cfg.Semantics)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "unset fields keep defaults")
	assert.Equal(t, 20000, cfg.BDD.NodeSize)
	assert.Equal(t, 5000, cfg.BDD.CacheSize)
}

func TestLoader_LoadFile_JSON(t *testing.T) {
	path := writeFile(t, "atlk.json", `{"variant": "FS", "tracing": {"enabled": true, "exporter": "stdout"}}`)
	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FS", cfg.Variant)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.yaml"), ErrConfigNotFound},
		{"directory", dir, ErrInvalidFormat},
		{"extension", writeFile(t, "atlk.toml", "variant = 'SF'"), ErrUnsupportedFormat},
		{"syntax", writeFile(t, "bad.yaml", "variant: [SF"), ErrInvalidFormat},
		{"invalid", writeFile(t, "bad.json", `{"variant": "XX"}`), ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadFile(tt.path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoader_WithoutValidation(t *testing.T) {
	cfg, err := NewLoader(WithValidation(false)).LoadString("variant: nope\n", FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "nope", cfg.Variant)
}

func TestLoader_ExpandEnv(t *testing.T) {
	t.Setenv("ATLK_TEST_VARIANT", "FS")
	cfg, err := NewLoader().LoadString("variant: ${ATLK_TEST_VARIANT}\nlog:\n  level: ${ATLK_TEST_UNSET:-warn}\n", FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "FS", cfg.Variant)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_StrictEnv(t *testing.T) {
	_, err := NewLoader(WithStrictEnv(true)).LoadString("variant: ${ATLK_TEST_NEVER_SET}\n", FormatYAML)
	assert.ErrorIs(t, err, ErrMissingEnvVar)

	cfg, err := NewLoader(WithEnvExpansion(false), WithValidation(false)).LoadString("variant: ${ATLK_TEST_NEVER_SET}\n", FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "${ATLK_TEST_NEVER_SET}", cfg.Variant)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{Variant: "X", Semantics: "mixed", Log: LogConfig{Level: "loud", Format: "xml"}, Tracing: TracingConfig{Exporter: "otlp"}}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrValidationFailed)
	for _, field := range []string{"variant", "semantics", "log.level", "log.format", "bdd.node_size", "bdd.cache_size", "tracing.exporter"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ATLK_VARIANT", "FSF")
	t.Setenv("ATLK_SEMANTICS", "individual")
	t.Setenv("ATLK_LOG_LEVEL", "error")
	t.Setenv("ATLK_TRACING", "true")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "FSF", cfg.Variant)
	assert.Equal(t, "individual", cfg.Semantics)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Enabled)
}
