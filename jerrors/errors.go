// Package jerrors defines the error envelope written in GraphQL responses.
package jerrors

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql/gqlerrors"
)

// Error codes reported in the "extensions.code" entry of an error.
const (
	Unknown         = "Unknown"
	NotFound        = "NOT_FOUND"
	InvalidArgument = "INVALID_ARGUMENT"
	Internal        = "INTERNAL"
)

// Error is a single entry of the "errors" list in a GraphQL response.
type Error struct {
	Message    string          `json:"message"`
	Extensions ErrorExtensions `json:"extensions"`
	Paths      []string        `json:"paths"`
}

// ErrorExtensions carries the machine readable part of an Error.
type ErrorExtensions struct {
	Code string `json:"code"`
}

func (e *Error) Error() string {
	return e.Message
}

// codedError is returned by resolvers. The execution engine copies the
// result of Extensions into the formatted error.
type codedError struct {
	code string
	msg  string
	err  error
}

func (e *codedError) Error() string {
	return e.msg
}

func (e *codedError) Unwrap() error {
	return e.err
}

func (e *codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// New returns an error tagged with code.
func New(code, msg string) error {
	return &codedError{code: code, msg: msg}
}

// Errorf formats an error tagged with code. A %w verb keeps the wrapped error
// reachable through errors.Is and errors.As.
func Errorf(code, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	return &codedError{code: code, msg: err.Error(), err: errors.Unwrap(err)}
}

// Code returns the code attached to err, or Unknown.
func Code(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	var je *Error
	if errors.As(err, &je) && je.Extensions.Code != "" {
		return je.Extensions.Code
	}
	return Unknown
}

// ConvertError converts any error into an *Error. Errors raised before
// execution starts have no path.
func ConvertError(err error) *Error {
	var je *Error
	if errors.As(err, &je) {
		if je.Paths == nil {
			je.Paths = []string{}
		}
		return je
	}
	return &Error{
		Message:    err.Error(),
		Extensions: ErrorExtensions{Code: Code(err)},
		Paths:      []string{},
	}
}

// FromFormatted converts an error reported by the execution engine.
func FromFormatted(fe gqlerrors.FormattedError) *Error {
	code := Unknown
	if c, ok := fe.Extensions["code"].(string); ok && c != "" {
		code = c
	}

	paths := make([]string, 0, len(fe.Path))
	for _, p := range fe.Path {
		paths = append(paths, fmt.Sprint(p))
	}

	return &Error{
		Message:    fe.Message,
		Extensions: ErrorExtensions{Code: code},
		Paths:      paths,
	}
}

// FromFormattedList converts every error of a result. It returns nil for an
// empty list so the response keeps "errors": null.
func FromFormattedList(list []gqlerrors.FormattedError) []*Error {
	if len(list) == 0 {
		return nil
	}
	out := make([]*Error, 0, len(list))
	for _, fe := range list {
		out = append(out, FromFormatted(fe))
	}
	return out
}
