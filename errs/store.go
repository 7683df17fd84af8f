package errs

import (
	"errors"
	"fmt"
)

// error kinds surfaced by stores, the merge engine and the publisher
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("io error")
)

// OpError records the operation that failed, the entry it targeted,
// its kind and the underlying cause.
type OpError struct {
	Op   string // e.g. "fragment save"
	Name string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", msg, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
}

// Unwrap lets errors.Is match both the kind and the cause.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func InvalidFormat(op, name string, err error) error {
	return &OpError{Op: op, Name: name, Kind: ErrInvalidFormat, Err: err}
}

func NotFound(op, name string, err error) error {
	return &OpError{Op: op, Name: name, Kind: ErrNotFound, Err: err}
}

func IO(op, name string, err error) error {
	return &OpError{Op: op, Name: name, Kind: ErrIO, Err: err}
}

// Kind returns the kind of err, or nil when err carries none of the known kinds.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrIO):
		return ErrIO
	}
	return nil
}
