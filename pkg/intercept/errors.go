package intercept

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnhandledRequest is matched by errors returned for requests no route
// answered.
var ErrUnhandledRequest = errors.New("unhandled request")

// NoMatchError describes a request no route answered.
type NoMatchError struct {
	Method string
	URL    string
}

func newNoMatchError(req *http.Request) *NoMatchError {
	return &NoMatchError{Method: req.Method, URL: req.URL.String()}
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("intercept: %s %s: %v", e.Method, e.URL, ErrUnhandledRequest)
}

// Is reports whether target is ErrUnhandledRequest.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrUnhandledRequest
}
