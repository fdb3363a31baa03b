package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the CLI can map them onto exit codes.
type ErrorKind string

const (
	KindConfig    ErrorKind = "config"
	KindTransport ErrorKind = "transport"
	KindDecode    ErrorKind = "decode"
	KindShape     ErrorKind = "shape"
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError carrying the same kind, so errors.Is(err, ErrShape) works
// through any amount of wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrConfig    = &AppError{Kind: KindConfig}
	ErrTransport = &AppError{Kind: KindTransport}
	ErrDecode    = &AppError{Kind: KindDecode}
	ErrShape     = &AppError{Kind: KindShape}
)

// NewAppError constructs an AppError.
func NewAppError(kind ErrorKind, op, msg string, err error) error {
	return &AppError{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf reports the kind of the first AppError in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
