package cmislib

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cmislib/cmislib.go/pkg/connection"
)

// CMIS error kinds. Every error returned for a mapped HTTP status is a
// *CmisError that unwraps to one of these.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrObjectNotFound   = errors.New("object not found")
	ErrNotSupported     = errors.New("not supported")
	ErrUpdateConflict   = errors.New("update conflict")
	ErrRuntime          = errors.New("runtime error")
	// ErrCmis is the generic kind for failures that carry only a status code.
	ErrCmis = errors.New("cmis error")
	// ErrNotImplemented marks operations this client recognises but does not
	// perform. It is distinct from ErrNotSupported, which is the repository
	// declining a capability.
	ErrNotImplemented = errors.New("not implemented")
)

type CmisError struct {
	// Status is the originating HTTP status, or 0 when the error was raised
	// client side.
	Status  int
	Err     error
	Message string
}

func (e *CmisError) Error() string {
	msg := e.Err.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *CmisError) Unwrap() error {
	return e.Err
}

func newError(kind error, format string, args ...any) *CmisError {
	return &CmisError{Err: kind, Message: fmt.Sprintf(format, args...)}
}

var statusKinds = map[int]error{
	http.StatusUnauthorized:        ErrPermissionDenied,
	http.StatusBadRequest:          ErrInvalidArgument,
	http.StatusNotFound:            ErrObjectNotFound,
	http.StatusForbidden:           ErrPermissionDenied,
	http.StatusMethodNotAllowed:    ErrNotSupported,
	http.StatusConflict:            ErrUpdateConflict,
	http.StatusInternalServerError: ErrRuntime,
}

// mapCommonErrors turns HTTP errors with a common CMIS meaning into
// *CmisError. Other errors, including *connection.HTTPError for unmapped
// statuses, are returned unchanged.
func mapCommonErrors(err error) error {
	var httpErr *connection.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	kind, ok := statusKinds[httpErr.StatusCode]
	if !ok {
		return err
	}
	return &CmisError{Status: httpErr.StatusCode, Err: kind, Message: httpErr.URL}
}

// asCmisError wraps a raw transport error left over by the low-level verbs
// into a generic *CmisError carrying its status.
func asCmisError(err error) error {
	var httpErr *connection.HTTPError
	if errors.As(err, &httpErr) {
		return &CmisError{Status: httpErr.StatusCode, Err: ErrCmis, Message: httpErr.URL}
	}
	return err
}
