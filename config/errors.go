package config

import "errors"

var (
	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidFormat is returned when the file cannot be parsed.
	ErrInvalidFormat = errors.New("invalid config format")
	// ErrUnsupportedFormat is returned for extensions other than yaml, yml and json.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrValidationFailed is returned when a loaded config is invalid.
	ErrValidationFailed = errors.New("config validation failed")
	// ErrMissingEnvVar is returned in strict mode for unset variables.
	ErrMissingEnvVar = errors.New("missing environment variable")
)
