// Package apperr defines the failure kinds handlers turn into flash messages.
// Callers match them with errors.As or the Is* helpers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindNotFound
	KindPersistence
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindUpload:
		return "upload"
	default:
		return "unknown"
	}
}

// GenericMessage is shown whenever the real cause must stay server-side.
const GenericMessage = "Đã có lỗi xảy ra, vui lòng thử lại"

// Error carries a user-facing message. Err, when set, is the internal cause
// and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Upload(msg string) *Error {
	return &Error{Kind: KindUpload, Message: msg}
}

// Persistence wraps a storage failure behind the generic message.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: GenericMessage, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// UserMessage is the text that may be shown for err. Persistence and
// unclassified errors collapse into GenericMessage.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindPersistence && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}
