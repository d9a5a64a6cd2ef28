package cmislib

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/cmislib/cmislib.go/internal/fakecmis"
	"github.com/cmislib/cmislib.go/pkg/connection"
	"github.com/cmislib/cmislib.go/pkg/logger"
)

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("ftp://cmis.example/service", "admin", "admin")
	require.Error(t, err)

	_, err = New("http://", "admin", "admin")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New("http://cmis.example/alfresco/s/cmis", "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "http://cmis.example/alfresco/s/cmis", c.ServiceURL)
	assert.Equal(t, "admin", c.Username)
	assert.Equal(t, "CMIS client connection to http://cmis.example/alfresco/s/cmis", c.String())
}

func TestFromConfig_CredentialsInURL(t *testing.T) {
	cfg, err := connection.ParseConfig("https://bob:pw@cmis.example/cmis")
	require.NoError(t, err)

	c := FromConfig(cfg)
	assert.Equal(t, "https://cmis.example/cmis", c.ServiceURL)
	assert.Equal(t, "bob", c.Username)
	assert.Equal(t, "pw", c.Password)
}

type ClientTestSuite struct {
	cmisSuite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestListRepositories() {
	s.server.AddRepository("repo-2", "Archive")

	repos, err := s.client.ListRepositories(s.ctx)
	s.Require().NoError(err)
	s.Equal([]RepositoryInfo{
		{ID: "repo-1", Name: "Main Repository"},
		{ID: "repo-2", Name: "Archive"},
	}, repos)
}

func (s *ClientTestSuite) TestGetRepository() {
	s.server.AddRepository("repo-2", "Archive")

	repo, err := s.client.GetRepository(s.ctx, "repo-2")
	s.Require().NoError(err)
	name, err := repo.Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("Archive", name)
	s.Same(s.client, repo.Client())

	_, err = s.client.GetRepository(s.ctx, "missing")
	s.ErrorIs(err, ErrObjectNotFound)
}

func (s *ClientTestSuite) TestGetDefaultRepository_Selector() {
	s.server.AddRepository("repo-2", "Archive")

	s.client.SelectDefault = func(repos []RepositoryInfo) int {
		for i, r := range repos {
			if r.Name == "Archive" {
				return i
			}
		}
		return 0
	}
	repo, err := s.client.GetDefaultRepository(s.ctx)
	s.Require().NoError(err)
	id, err := repo.ID(s.ctx)
	s.Require().NoError(err)
	s.Equal("repo-2", id)

	s.client.SelectDefault = func([]RepositoryInfo) int { return 7 }
	_, err = s.client.GetDefaultRepository(s.ctx)
	s.Error(err)
}

func (s *ClientTestSuite) TestErrorMapping() {
	cases := []struct {
		status int
		kind   error
	}{
		{http.StatusBadRequest, ErrInvalidArgument},
		{http.StatusUnauthorized, ErrPermissionDenied},
		{http.StatusForbidden, ErrPermissionDenied},
		{http.StatusNotFound, ErrObjectNotFound},
		{http.StatusMethodNotAllowed, ErrNotSupported},
		{http.StatusConflict, ErrUpdateConflict},
		{http.StatusInternalServerError, ErrRuntime},
	}
	for _, tc := range cases {
		s.server.Fail(fakecmis.Failure{Method: http.MethodGet, PathContains: "/entry/", Status: tc.status, Times: 1})

		_, err := s.client.Get(s.ctx, s.server.URL+"/cmis/repo-1/entry/"+s.fake.RootFolderID, nil)
		s.Require().Error(err, "status %d", tc.status)
		s.ErrorIs(err, tc.kind, "status %d", tc.status)

		var cmisErr *CmisError
		s.Require().ErrorAs(err, &cmisErr)
		s.Equal(tc.status, cmisErr.Status)
	}

	// failures are consumed
	_, err := s.client.Get(s.ctx, s.server.URL+"/cmis/repo-1/entry/"+s.fake.RootFolderID, nil)
	s.NoError(err)
}

func (s *ClientTestSuite) TestUnmappedStatus() {
	s.server.Fail(fakecmis.Failure{Status: http.StatusTeapot})

	_, err := s.client.Get(s.ctx, s.client.ServiceURL, nil)
	var httpErr *connection.HTTPError
	s.Require().ErrorAs(err, &httpErr)
	s.Equal(http.StatusTeapot, httpErr.StatusCode)
	s.ErrorIs(err, &connection.HTTPError{StatusCode: http.StatusTeapot})

	var cmisErr *CmisError
	s.False(errors.As(err, &cmisErr))

	// high level operations wrap it into the generic kind
	_, err = s.client.ListRepositories(s.ctx)
	s.ErrorIs(err, ErrCmis)
	s.Require().ErrorAs(err, &cmisErr)
	s.Equal(http.StatusTeapot, cmisErr.Status)
}

func (s *ClientTestSuite) TestWrongCredentials() {
	cfg, err := connection.ParseConfig(s.server.ServiceURL())
	s.Require().NoError(err)
	cfg.WithCredentials(testUser, "wrong").WithLogger(logger.Discard())

	_, err = FromConfig(cfg).ListRepositories(s.ctx)
	s.ErrorIs(err, ErrPermissionDenied)
}

func (s *ClientTestSuite) TestRequestsCarryID() {
	_, err := s.client.ListRepositories(s.ctx)
	s.Require().NoError(err)

	s.NotEmpty(s.lastRequest().RequestID)
}

func (s *ClientTestSuite) TestPut_EmptyResponse() {
	s.server.EmptyPutResponses = true

	body, err := entryXMLDoc(map[string]any{"cm:title": StringValue("t")}, nil)
	s.Require().NoError(err)

	doc, err := s.client.Put(s.ctx, s.server.URL+"/cmis/repo-1/entry/"+s.fake.RootFolderID, body, "application/atom+xml", nil)
	s.Require().NoError(err)
	s.Nil(doc)
	s.Equal("t", s.fake.Object(s.fake.RootFolderID).Properties["cm:title"])
}

func (s *ClientTestSuite) TestOptionsAreSentAsQuery() {
	_, err := s.client.Get(s.ctx, s.server.URL+"/cmis/repo-1/children/"+s.fake.RootFolderID,
		Options{"maxItems": 5, "includeAllowableActions": true})
	s.Require().NoError(err)

	req := s.lastRequest()
	s.Equal("5", req.Query.Get("maxItems"))
	s.Equal("true", req.Query.Get("includeAllowableActions"))
}
