package config

import "errors"

var (
	// ErrReadFile is returned when the YAML config file cannot be read.
	ErrReadFile = errors.New("failed to read config file")

	// ErrParsingConfig is returned when the YAML file or environment variables
	// cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse config")

	// ErrInvalidConfig is returned when limits are negative or inconsistent.
	ErrInvalidConfig = errors.New("invalid config")
)
