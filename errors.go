package quadbatch

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below unwrap to these so callers can use
// errors.Is regardless of the detail carried.
var (
	ErrConfiguration   = errors.New("quadbatch: configuration error")
	ErrBufferNotBound  = errors.New("quadbatch: attribute buffer not bound")
	ErrDeserialization = errors.New("quadbatch: deserialization error")
	ErrPumpStopped     = errors.New("quadbatch: frame pump stopped")
)

// ConfigurationError reports a setup-time problem: an unknown attribute name,
// an invalid layout, an unsupported ambient color format and so on.
type ConfigurationError struct {
	Op     string // operation that failed, e.g. "resolve"
	Name   string // attribute, behavior or setting involved (may be empty)
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("quadbatch: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("quadbatch: %s %q: %s", e.Op, e.Name, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configError(op, name, format string, args ...any) error {
	return &ConfigurationError{Op: op, Name: name, Reason: fmt.Sprintf(format, args...)}
}

// DeserializationError reports a corrupt, truncated or incompatible grid
// stream. Offset is the byte position at which decoding stopped.
type DeserializationError struct {
	Offset int64
	Reason string
	Err    error // underlying I/O error, if any
}

func (e *DeserializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quadbatch: decode grid at byte %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("quadbatch: decode grid at byte %d: %s", e.Offset, e.Reason)
}

// Is matches ErrDeserialization.
func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

// Unwrap returns the underlying I/O error.
func (e *DeserializationError) Unwrap() error { return e.Err }
