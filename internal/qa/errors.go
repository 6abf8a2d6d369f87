package qa

import (
	"errors"
	"fmt"
)

// Kind classifies a core error so the handler layer can map it to a
// response without string matching.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindInvalidVoteDirection Kind = "invalid_vote_direction"
	KindInvalidTarget        Kind = "invalid_target"
	KindNotFound             Kind = "not_found"
	KindStore                Kind = "store_error"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func invalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func storeError(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}
