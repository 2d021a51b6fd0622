// Package apperrors maps service failures onto HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	CodeBadRequest      ErrorCode = "BAD_REQUEST"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	CodeInference       ErrorCode = "INFERENCE_FAILED"
	CodeUpstream        ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError carries a client-facing message and the status it maps to
type AppError struct {
	Code    ErrorCode
	Message string
	Fields  gin.H
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// With attaches extra response fields
func (e *AppError) With(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = gin.H{}
	}
	e.Fields[key] = value
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

func BadRequest(message string) *AppError { return New(CodeBadRequest, message) }

func Unauthorized(message string) *AppError { return New(CodeUnauthorized, message) }

func NotFound(message string) *AppError { return New(CodeNotFound, message) }

func Conflict(message string) *AppError { return New(CodeConflict, message) }

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "Internal Server Error")
}

// Inference exposes the failure text to the client, matching what the
// suggestion endpoint has always returned.
func Inference(err error) *AppError {
	return Wrap(err, CodeInference, err.Error())
}

// Respond writes err as {"error": message}. Errors that are not an
// *AppError become a generic 500.
func Respond(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	body := gin.H{}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	body["error"] = appErr.Message

	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode(), body)
}
