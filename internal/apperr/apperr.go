// Package apperr 业务错误：携带 HTTP 状态码和对外文案
package apperr

import "net/http"

type E struct {
	Status  int
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *E) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &E{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) error { return &E{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &E{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) error     { return &E{Status: http.StatusNotFound, Message: msg} }

func Internal(msg string, err error) error {
	return &E{Status: http.StatusInternalServerError, Message: msg, Err: err}
}
