package service

import "net/http"

// ServiceError carries the HTTP status a failure maps to.
type ServiceError struct {
	Code    int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) StatusCode() int {
	return e.Code
}

// Is matches on code and message so wrapped copies compare equal to the sentinels.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code && t.Message == e.Message
}

func (e *ServiceError) wrap(err error) *ServiceError {
	return &ServiceError{Code: e.Code, Message: e.Message, Err: err}
}

var (
	ErrSessionNotFound = &ServiceError{Code: http.StatusNotFound, Message: "session not found"}
	ErrTurnInProgress  = &ServiceError{Code: http.StatusConflict, Message: "a reply is still being generated for this session"}
	ErrEmptyMessage    = &ServiceError{Code: http.StatusBadRequest, Message: "message must not be empty"}
	ErrChatFailed      = &ServiceError{Code: http.StatusBadGateway, Message: "failed to generate a reply"}
	ErrIndexNotReady   = &ServiceError{Code: http.StatusServiceUnavailable, Message: "index is not ready"}
)
