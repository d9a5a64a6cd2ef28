// Package http is the net/http implementation of connection.Connection.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid"

	"github.com/cmislib/cmislib.go/pkg/connection"
	"github.com/cmislib/cmislib.go/pkg/constants"
	"github.com/cmislib/cmislib.go/pkg/logger"
	"github.com/cmislib/cmislib.go/pkg/uritemplate"
)

type Connection struct {
	BaseURL  string
	Username string
	Password string

	httpClient *http.Client
	logger     logger.Logger
}

func New(p *connection.Config) *Connection {
	con := Connection{
		BaseURL:    p.BaseURL,
		Username:   p.Username,
		Password:   p.Password,
		httpClient: p.HTTPClient,
		logger:     p.Logger,
	}

	if con.httpClient == nil {
		timeout := p.Timeout
		if timeout == 0 {
			timeout = constants.DefaultHTTPTimeout
		}
		con.httpClient = &http.Client{Timeout: timeout}
	}
	if con.logger == nil {
		con.logger = logger.Discard()
	}

	return &con
}

func (c *Connection) SetTimeout(timeout time.Duration) *Connection {
	c.httpClient.Timeout = timeout
	return c
}

func (c *Connection) SetHTTPClient(client *http.Client) *Connection {
	c.httpClient = client
	return c
}

func (c *Connection) Do(ctx context.Context, r *connection.Request) (*connection.Response, error) {
	target, err := uritemplate.AppendQuery(r.URL, r.Params)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, err
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if c.Username != "" || c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
	requestID := newRequestID()
	req.Header.Set(constants.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.MakeRequest(req)
	if err != nil {
		c.logger.Debug("cmis request failed", "method", r.Method, "url", target, "requestId", requestID, "error", err)
		return nil, err
	}
	c.logger.Debug("cmis request", "method", r.Method, "url", target, "requestId", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

func (c *Connection) MakeRequest(req *http.Request) (*connection.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &connection.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       respBytes,
		}, nil
	}

	return nil, &connection.HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Method:     req.Method,
		URL:        req.URL.String(),
		Body:       respBytes,
	}
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
