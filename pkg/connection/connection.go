// Package connection defines the transport contract cmislib talks through.
//
// A Connection executes one HTTP exchange against the CMIS service and
// hands back the raw response. It never interprets CMIS documents; parsing
// and error mapping happen in the cmislib package.
package connection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type Connection interface {
	// Do executes req. A non-2xx response is returned as *HTTPError.
	Do(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	Method string
	URL    string
	// Params are appended to URL's query string.
	Params      url.Values
	Body        []byte
	ContentType string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	// Status is the reason phrase, e.g. "404 Not Found".
	Status string
	Method string
	URL    string
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}
