// Package config holds the checker's run configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the run configuration of the atlk tool.
type Config struct {
	// Variant is the strategic evaluation variant: SF, FS or FSF.
	Variant string `yaml:"variant" json:"variant"`
	// Semantics is group or individual. Empty uses the model's own setting.
	Semantics string        `yaml:"semantics,omitempty" json:"semantics,omitempty"`
	Log       LogConfig     `yaml:"log" json:"log"`
	BDD       BDDConfig     `yaml:"bdd" json:"bdd"`
	Tracing   TracingConfig `yaml:"tracing" json:"tracing"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// BDDConfig sizes the decision diagram manager.
type BDDConfig struct {
	NodeSize  int `yaml:"node_size" json:"node_size"`
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Exporter is stdout or noop.
	Exporter string `yaml:"exporter" json:"exporter"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Variant: "SF",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		BDD: BDDConfig{
			NodeSize:  10000,
			CacheSize: 5000,
		},
		Tracing: TracingConfig{
			Exporter: "noop",
		},
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToUpper(c.Variant) {
	case "SF", "FS", "FSF":
	default:
		problems = append(problems, fmt.Sprintf("variant %q is not one of SF, FS, FSF", c.Variant))
	}
	switch strings.ToLower(c.Semantics) {
	case "", "group", "individual":
	default:
		problems = append(problems, fmt.Sprintf("semantics %q is not group or individual", c.Semantics))
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is unknown", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not console or json", c.Log.Format))
	}
	if c.BDD.NodeSize <= 0 {
		problems = append(problems, "bdd.node_size must be positive")
	}
	if c.BDD.CacheSize <= 0 {
		problems = append(problems, "bdd.cache_size must be positive")
	}
	switch c.Tracing.Exporter {
	case "stdout", "noop":
	default:
		problems = append(problems, fmt.Sprintf("tracing.exporter %q is not stdout or noop", c.Tracing.Exporter))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

// ApplyEnv overrides fields from ATLK_* environment variables.
func (c *Config) ApplyEnv() {
	c.Variant = getenv("ATLK_VARIANT", c.Variant)
	c.Semantics = getenv("ATLK_SEMANTICS", c.Semantics)
	c.Log.Level = getenv("ATLK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("ATLK_LOG_FORMAT", c.Log.Format)
	if v, err := strconv.ParseBool(getenv("ATLK_TRACING", "")); err == nil {
		c.Tracing.Enabled = v
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
