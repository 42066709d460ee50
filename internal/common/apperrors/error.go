// Package apperrors provides the error values used across the service.
// Errors are chainable: a base error is declared once with a status
// code, and call sites derive more specific errors from it with New,
// Msg, or Err while keeping errors.Is matching against the base.
package apperrors

type Error interface {
	Error() string
	// ErrorAll returns the message including wrapped errors when
	// expansion is enabled. Used when rendering error responses.
	ErrorAll() string
	// New derives a child error that still matches this error with Is.
	New(msg string) Error
	Msg(msg string) Error
	MsgErr(msg string, err ...error) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
