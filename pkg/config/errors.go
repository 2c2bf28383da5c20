package config

import "errors"

var (
	// ErrLoadingEnv is returned when a .env file cannot be read.
	ErrLoadingEnv = errors.New("failed to load env file")

	// ErrParsingConfig is returned when the environment cannot be parsed into
	// the config struct.
	ErrParsingConfig = errors.New("failed to parse environment into config")

	// ErrNilPointer is returned when Load receives a nil destination.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
