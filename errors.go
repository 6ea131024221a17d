package eventchannel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a required argument that was missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNilPredicate is returned by RaiseIf when no predicate is supplied.
	ErrNilPredicate = fmt.Errorf("%w: nil predicate", ErrInvalidArgument)

	// ErrEmptyName is returned by Lookup when the channel name is empty.
	ErrEmptyName = fmt.Errorf("%w: empty channel name", ErrInvalidArgument)

	// ErrTypeMismatch is returned by Lookup when a channel exists under the
	// requested name with a different payload type.
	ErrTypeMismatch = errors.New("channel payload type mismatch")
)

// PanicError carries a value recovered from a panicking callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(recovered any) error {
	return &PanicError{Value: recovered}
}
