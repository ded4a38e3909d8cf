package session

import (
	"github.com/pkg/errors"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrNotFound is returned when a file to read does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrState is the kind of every error caused by the session state rather
	// than by the arguments.
	ErrState = errors.New("invalid session state")

	// ErrValidation is returned for malformed arguments.
	ErrValidation = errors.New("invalid argument")
)

// State errors.
var (
	ErrNoDocument = &kindError{msg: "no document open", kind: ErrState}
	ErrNoSavePath = &kindError{msg: "no save path specified", kind: ErrState}
)

// kindError is a sentinel with its own message that also matches a broader
// kind.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }
