package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER"
	ErrGetFailed                  ErrorCode = "GET_FAILED"
	ErrCreateFailed               ErrorCode = "CREATE_FAILED"
	ErrUpdateFailed               ErrorCode = "UPDATE_FAILED"
	ErrEnqueueFailed              ErrorCode = "ENQUEUE_FAILED"
	ErrExtractionFailed           ErrorCode = "EXTRACTION_FAILED"
	ErrUpstreamFailed             ErrorCode = "UPSTREAM_FAILED"
)

// AppError is the error type returned by services to controllers.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New is a passthrough to the standard library so callers only import one errors package.
func New(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternalServer.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}
	return ErrInternalServer
}
