package timingwheel

import "fmt"

// ArgumentError reports an invalid construction or submission argument.
type ArgumentError struct {
	// Field is the name of the invalid argument.
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("timingwheel: invalid %s: %s", e.Field, e.Reason)
}

func newArgumentError(field, reason string) *ArgumentError {
	return &ArgumentError{Field: field, Reason: reason}
}
