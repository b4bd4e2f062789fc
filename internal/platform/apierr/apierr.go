package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/medsupply-backend/internal/platform/errs"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps err onto an HTTP status using the errs sentinels. fallbackCode is used
// for the Code when err is not already an *Error.
func From(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return New(http.StatusNotFound, fallbackCode, err)
	case errors.Is(err, errs.ErrInvalidArgument):
		return New(http.StatusBadRequest, fallbackCode, err)
	case errors.Is(err, errs.ErrConflict):
		return New(http.StatusConflict, fallbackCode, err)
	case errors.Is(err, errs.ErrUnauthorized):
		return New(http.StatusUnauthorized, fallbackCode, err)
	case errors.Is(err, errs.ErrForbidden):
		return New(http.StatusForbidden, fallbackCode, err)
	default:
		return New(http.StatusInternalServerError, fallbackCode, err)
	}
}
