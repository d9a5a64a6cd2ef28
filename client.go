package cmislib

import (
	"context"
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/connection"
	"github.com/cmislib/cmislib.go/pkg/connection/http"
	"github.com/cmislib/cmislib.go/pkg/constants"
	"github.com/cmislib/cmislib.go/pkg/logger"
)

// Client is the entry point to a CMIS AtomPub service. It holds the service
// document URL and credentials, and performs every request made by the
// repositories and objects created through it.
type Client struct {
	// ServiceURL is the URL of the AtomPub service document.
	ServiceURL string
	Username   string
	Password   string

	// SelectDefault chooses the repository returned by GetDefaultRepository.
	// When nil, FirstWorkspace is used.
	SelectDefault RepositorySelector

	con    connection.Connection
	logger logger.Logger
}

// RepositoryInfo is the summary returned by ListRepositories.
type RepositoryInfo struct {
	ID   string
	Name string
}

// RepositorySelector returns the index of the default repository among the
// repositories in service document order.
type RepositorySelector func(repositories []RepositoryInfo) int

// FirstWorkspace selects the first workspace of the service document. CMIS
// has no notion of a default repository, so this is a policy, not protocol.
func FirstWorkspace(_ []RepositoryInfo) int {
	return 0
}

// New creates a Client for the service document at serviceURL using basic
// authentication and the default HTTP connection.
func New(serviceURL, username, password string) (*Client, error) {
	cfg, err := connection.ParseConfig(serviceURL)
	if err != nil {
		return nil, err
	}
	cfg.WithCredentials(username, password)
	return FromConfig(cfg), nil
}

// FromConfig creates a Client over the default HTTP connection built from cfg.
func FromConfig(cfg *connection.Config) *Client {
	return FromConnection(cfg, http.New(cfg))
}

// FromConnection creates a Client that sends its requests through con.
func FromConnection(cfg *connection.Config, con connection.Connection) *Client {
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}
	return &Client{
		ServiceURL: cfg.URL.String(),
		Username:   cfg.Username,
		Password:   cfg.Password,
		con:        con,
		logger:     l,
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("CMIS client connection to %s", c.ServiceURL)
}

// ListRepositories returns the id and name of every repository in the
// service document.
func (c *Client) ListRepositories(ctx context.Context) ([]RepositoryInfo, error) {
	workspaces, err := c.workspaces(ctx)
	if err != nil {
		return nil, err
	}
	repositories := make([]RepositoryInfo, 0, len(workspaces))
	for _, ws := range workspaces {
		info, err := newRepository(c, ws).summary(ctx)
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, info)
	}
	return repositories, nil
}

// GetRepository returns the repository with the given id.
func (c *Client) GetRepository(ctx context.Context, repositoryID string) (*Repository, error) {
	workspaces, err := c.workspaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, ws := range workspaces {
		if id, _ := atom.TextByTagNameNS(ws, constants.CmisNS, "repositoryId"); id == repositoryID {
			return newRepository(c, ws), nil
		}
	}
	return nil, newError(ErrObjectNotFound, "no repository with id %q", repositoryID)
}

// GetDefaultRepository returns the repository chosen by SelectDefault.
func (c *Client) GetDefaultRepository(ctx context.Context) (*Repository, error) {
	workspaces, err := c.workspaces(ctx)
	if err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, newError(ErrObjectNotFound, "service document lists no repositories")
	}

	selectDefault := c.SelectDefault
	if selectDefault == nil {
		selectDefault = FirstWorkspace
	}

	repositories := make([]*Repository, len(workspaces))
	infos := make([]RepositoryInfo, len(workspaces))
	for i, ws := range workspaces {
		repositories[i] = newRepository(c, ws)
		if infos[i], err = repositories[i].summary(ctx); err != nil {
			return nil, err
		}
	}

	i := selectDefault(infos)
	if i < 0 || i >= len(repositories) {
		return nil, fmt.Errorf("repository selector returned index %d of %d", i, len(repositories))
	}
	return repositories[i], nil
}

func (c *Client) workspaces(ctx context.Context) ([]*etree.Element, error) {
	doc, err := c.Get(ctx, c.ServiceURL, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	return atom.ElementsByTagNameNS(doc, constants.AppNS, "workspace"), nil
}

// Get performs a GET and parses the response. Most callers should navigate
// through Repository and the object types instead.
//
// Statuses with a common CMIS meaning are returned as *CmisError; other
// non-2xx statuses are returned as *connection.HTTPError.
func (c *Client) Get(ctx context.Context, url string, opts Options) (*etree.Element, error) {
	resp, err := c.do(ctx, connection.NewGet(url, opts.values()))
	if err != nil {
		return nil, err
	}
	return atom.Parse(resp.Body)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, url string, opts Options) error {
	_, err := c.do(ctx, connection.NewDelete(url, opts.values()))
	return err
}

// Post performs a POST of payload and parses the response. 201 Created is a
// success like any other 2xx status.
func (c *Client) Post(ctx context.Context, url string, payload []byte, contentType string, opts Options) (*etree.Element, error) {
	resp, err := c.do(ctx, connection.NewPost(url, payload, contentType, opts.values()))
	if err != nil {
		return nil, err
	}
	return atom.Parse(resp.Body)
}

// Put performs a PUT of payload. A response without a parsable body yields
// a nil element and no error.
func (c *Client) Put(ctx context.Context, url string, payload []byte, contentType string, opts Options) (*etree.Element, error) {
	resp, err := c.do(ctx, connection.NewPut(url, payload, contentType, opts.values()))
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	doc, err := atom.Parse(resp.Body)
	if err != nil {
		c.logger.Debug("ignoring unparsable PUT response body", "url", url, "error", err)
		return nil, nil
	}
	return doc, nil
}

// getRaw performs a GET and returns the unparsed body, for content streams.
func (c *Client) getRaw(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, connection.NewGet(url, nil))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, req *connection.Request) (*connection.Response, error) {
	resp, err := c.con.Do(ctx, req)
	if err == nil {
		return resp, nil
	}
	mapped := mapCommonErrors(err)
	var cmisErr *CmisError
	if errors.As(mapped, &cmisErr) {
		c.logger.Warn("cmis request failed", "method", req.Method, "url", req.URL, "status", cmisErr.Status, "error", cmisErr.Err)
	}
	return nil, mapped
}
