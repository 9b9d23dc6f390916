package httperr

import (
	"errors"
	"net/http"
)

type BusinessError struct {
	Code   string
	Status int
}

func (e BusinessError) Error() string {
	return e.Code
}

// ErrBusiness is a rule violation the caller can fix (422).
func ErrBusiness(code string) error {
	return BusinessError{Code: code, Status: http.StatusUnprocessableEntity}
}

func ErrBadRequest(code string) error {
	return BusinessError{Code: code, Status: http.StatusBadRequest}
}

func ErrNotFound(code string) error {
	return BusinessError{Code: code, Status: http.StatusNotFound}
}

func ErrConflict(code string) error {
	return BusinessError{Code: code, Status: http.StatusConflict}
}

// ErrUpstream wraps a failure reported by an external provider (502).
func ErrUpstream(code string) error {
	return BusinessError{Code: code, Status: http.StatusBadGateway}
}

var ErrForbidden = BusinessError{Code: "forbidden", Status: http.StatusForbidden}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}
