package phonebook

import "fmt"

// Kind classifies a request-facing failure.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindConflict
	KindNotFound
	KindMalformedID
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindMalformedID:
		return "malformed id"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by [Service] for outcomes the caller can act on.
// Any other error is an internal failure of the store.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
