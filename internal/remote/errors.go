package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a failed remote operation.
type Kind string

const (
	KindAuth          Kind = "auth_failure"
	KindNotFound      Kind = "not_found"
	KindUpload        Kind = "upload_failure"
	KindDocumentWrite Kind = "document_write_failure"
	KindValidation    Kind = "validation_failure"
	KindRequest       Kind = "request_failure"
)

// Error is returned by every failed operation of the Client.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// Sentinels for errors.Is; they match any Error of the same kind.
var (
	ErrAuth          = &Error{Kind: KindAuth}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrUpload        = &Error{Kind: KindUpload}
	ErrDocumentWrite = &Error{Kind: KindDocumentWrite}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrRequest       = &Error{Kind: KindRequest}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
