package dagrpc

import (
	"fmt"
	"net/http"
)

type (
	// Error represents JSON-RPC 2.0 error type.
	Error struct {
		Code     int64  `json:"code"`
		HTTPCode int    `json:"-"`
		Message  string `json:"message"`
		Data     string `json:"data,omitempty"`
	}
)

// Standard JSON-RPC 2.0 error codes plus node-specific ones.
const (
	// InternalServerErrorCode is returned for internal RPC server error.
	InternalServerErrorCode int64 = -32603
	// BadRequestCode is returned on parse error.
	BadRequestCode int64 = -32700
	// InvalidRequestCode is returned on invalid request.
	InvalidRequestCode int64 = -32600
	// MethodNotFoundCode is returned on unknown method calling.
	MethodNotFoundCode int64 = -32601
	// InvalidParamsCode is returned on request with invalid params.
	InvalidParamsCode int64 = -32602
	// RPCErrorCode is returned on generic RPC error.
	RPCErrorCode int64 = -100
	// NotImplementedCode is returned for methods the node knows about but
	// doesn't serve.
	NotImplementedCode int64 = -101
	// ListenerNotFoundCode is returned when the listener the request
	// refers to doesn't exist.
	ListenerNotFoundCode int64 = -102
	// EventNotEnabledCode is returned on attempts to subscribe to an event
	// the node doesn't emit.
	EventNotEnabledCode int64 = -103
	// TooManySubscriptionsCode is returned when the connection reaches its
	// subscription limit.
	TooManySubscriptionsCode int64 = -104
)

var (
	// ErrInvalidParams represents a generic 'invalid parameters' error.
	ErrInvalidParams = NewInvalidParamsError("invalid params")
	// ErrNotImplemented is returned for the methods that have no backing
	// implementation.
	ErrNotImplemented = NewError(NotImplementedCode, http.StatusNotImplemented, "Not implemented", "")
	// ErrListenerNotFound is returned when the listener is gone.
	ErrListenerNotFound = NewError(ListenerNotFoundCode, http.StatusNotFound, "Listener not found", "")
	// ErrEventNotEnabled is returned for subscriptions to disabled events.
	ErrEventNotEnabled = NewError(EventNotEnabledCode, http.StatusUnprocessableEntity, "Event not enabled", "")
	// ErrTooManySubscriptions is returned when subscription limit is reached.
	ErrTooManySubscriptions = NewError(TooManySubscriptionsCode, http.StatusUnprocessableEntity, "Too many subscriptions", "")
)

// NewError is an Error constructor that takes Error contents from its
// parameters.
func NewError(code int64, httpCode int, message string, data string) *Error {
	return &Error{
		Code:     code,
		HTTPCode: httpCode,
		Message:  message,
		Data:     data,
	}
}

// NewParseError creates a new error with code
// -32700.
func NewParseError(data string) *Error {
	return NewError(BadRequestCode, http.StatusBadRequest, "Parse Error", data)
}

// NewInvalidRequestError creates a new error with
// code -32600.
func NewInvalidRequestError(data string) *Error {
	return NewError(InvalidRequestCode, http.StatusUnprocessableEntity, "Invalid Request", data)
}

// NewMethodNotFoundError creates a new error with
// code -32601.
func NewMethodNotFoundError(data string) *Error {
	return NewError(MethodNotFoundCode, http.StatusMethodNotAllowed, "Method not found", data)
}

// NewInvalidParamsError creates a new error with
// code -32602.
func NewInvalidParamsError(data string) *Error {
	return NewError(InvalidParamsCode, http.StatusUnprocessableEntity, "Invalid Params", data)
}

// NewInternalServerError creates a new error with
// code -32603.
func NewInternalServerError(data string) *Error {
	return NewError(InternalServerErrorCode, http.StatusInternalServerError, "Internal error", data)
}

// NewRPCError creates a new error with
// code -100.
func NewRPCError(message string, data string) *Error {
	return NewError(RPCErrorCode, http.StatusUnprocessableEntity, message, data)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is denotes whether the error matches the target one. Errors are matched
// by code only, so wrapped versions of the same error match each other.
func (e *Error) Is(target error) bool {
	clTarget, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == clTarget.Code
}

// WrapErrorWithData returns copy of the given error with the specified data and cause.
// It does not modify the source error.
func WrapErrorWithData(e *Error, data string) *Error {
	return NewError(e.Code, e.HTTPCode, e.Message, data)
}
