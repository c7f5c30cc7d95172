package engine

import "errors"

var (
	// ErrUnknownProcessor indicates a stage name with no registered processor.
	ErrUnknownProcessor = errors.New("unknown processor")

	// ErrInvalidConfig indicates a node configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid node configuration")

	// ErrUnknownConfigKey indicates a configuration key the processor does
	// not accept.
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// ErrMissingInput indicates a required input the predecessor stage did
	// not provide.
	ErrMissingInput = errors.New("missing node input")
)
