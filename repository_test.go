package cmislib

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cmislib/cmislib.go/internal/fakecmis"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

type RepositoryTestSuite struct {
	cmisSuite
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestInfo() {
	info, err := s.repo.Info(s.ctx)
	s.Require().NoError(err)

	s.Equal("repo-1", info["repositoryId"])
	s.Equal("Main Repository", info["repositoryName"])
	s.Equal(s.fake.RootFolderID, info["rootFolderId"])
	s.Equal("fakecmis", info["vendorName"])
	s.NotContains(info, "capabilities")
	s.Equal("CMIS repository repo-1", s.repo.String())
}

func (s *RepositoryTestSuite) TestCapabilities() {
	caps, err := s.repo.Capabilities(s.ctx)
	s.Require().NoError(err)

	s.Equal(true, caps["GetDescendants"])
	s.Equal(false, caps["Unfiling"])
	s.Equal("bothcombined", caps["Query"])
	s.Equal("anytime", caps["ContentStreamUpdatability"])
	s.Nil(caps["ACL"])
	s.Contains(caps, "ACL")
	s.NotContains(caps, "capabilityACL")
}

func (s *RepositoryTestSuite) TestReload() {
	caps, err := s.repo.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.Equal(false, caps["Unfiling"])

	s.fake.SetCapability("Unfiling", "true")

	// memoised until reload
	caps, err = s.repo.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.Equal(false, caps["Unfiling"])

	s.Require().NoError(s.repo.Reload(s.ctx))
	caps, err = s.repo.Capabilities(s.ctx)
	s.Require().NoError(err)
	s.Equal(true, caps["Unfiling"])
}

func (s *RepositoryTestSuite) TestReload_SelectsOwnWorkspace() {
	s.server.AddRepository("repo-2", "Archive")
	repo, err := s.client.GetRepository(s.ctx, "repo-2")
	s.Require().NoError(err)

	s.Require().NoError(repo.Reload(s.ctx))
	name, err := repo.Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("Archive", name)
}

func (s *RepositoryTestSuite) TestURITemplates() {
	templates, err := s.repo.URITemplates(s.ctx)
	s.Require().NoError(err)

	s.Contains(templates, constants.ObjectByIDTemplate)
	s.Contains(templates, constants.ObjectByPathTemplate)
	s.Contains(templates, constants.TypeByIDTemplate)
	s.Contains(templates, constants.QueryTemplate)

	byID := templates[constants.ObjectByIDTemplate]
	s.Equal(constants.AtomXMLEntryType, byID.MediaType)
	s.True(byID.Has("id"))
	s.True(strings.HasPrefix(byID.Template, s.server.URL))
}

func (s *RepositoryTestSuite) TestLinks() {
	href, ok, err := s.repo.Link(s.ctx, constants.TypeDescendantsRel)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(s.server.URL+"/cmis/repo-1/typedescendants", href)

	href, ok, err = s.repo.CollectionLink(s.ctx, constants.CheckedOutColl)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(s.server.URL+"/cmis/repo-1/checkedout", href)

	_, ok, err = s.repo.CollectionLink(s.ctx, "changes")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RepositoryTestSuite) TestRootFolder() {
	root := s.root()
	name, err := root.Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("Company Home", name)

	id, err := root.ID(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.fake.RootFolderID, id)
}

func (s *RepositoryTestSuite) TestGetObject() {
	doc := s.fake.AddDocument(s.fake.RootFolderID, "report.txt", []byte("hi"), "text/plain")

	obj, err := s.repo.GetObject(s.ctx, doc.ID, nil)
	s.Require().NoError(err)
	s.Equal(KindDocument, obj.Kind())

	name, err := obj.Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("report.txt", name)

	_, err = s.repo.GetObject(s.ctx, "missing", nil)
	s.ErrorIs(err, ErrObjectNotFound)
}

func (s *RepositoryTestSuite) TestGetFolder() {
	folder := s.fake.AddFolder(s.fake.RootFolderID, "Sites")

	f, err := s.repo.GetFolder(s.ctx, folder.ID)
	s.Require().NoError(err)
	s.Equal(KindFolder, f.Kind())
}

func (s *RepositoryTestSuite) TestGetObjectByPath() {
	sites := s.fake.AddFolder(s.fake.RootFolderID, "Sites")
	swsdp := s.fake.AddFolder(sites.ID, "swsdp")
	s.fake.AddDocument(swsdp.ID, "read me.txt", []byte("x"), "text/plain")

	obj, err := s.repo.GetObjectByPath(s.ctx, "/Sites/swsdp", nil)
	s.Require().NoError(err)
	s.Equal(KindFolder, obj.Kind())
	id, err := obj.ID(s.ctx)
	s.Require().NoError(err)
	s.Equal(swsdp.ID, id)

	obj, err = s.repo.GetObjectByPath(s.ctx, "/Sites/swsdp/read me.txt", nil)
	s.Require().NoError(err)
	s.Equal(KindDocument, obj.Kind())
	s.Equal("/Sites/swsdp/read me.txt", s.lastRequest().Query.Get("path"))

	_, err = s.repo.GetObjectByPath(s.ctx, "/nowhere", nil)
	s.ErrorIs(err, ErrObjectNotFound)
}

func (s *RepositoryTestSuite) TestGetObjectByPath_Options() {
	s.fake.AddFolder(s.fake.RootFolderID, "Sites")

	_, err := s.repo.GetObjectByPath(s.ctx, "/Sites", Options{constants.OptIncludeAllowableActions: true, "custom": "x"})
	s.Require().NoError(err)

	req := s.lastRequest()
	s.Equal("true", req.Query.Get("includeAllowableActions"))
	s.Equal("false", req.Query.Get("includeACL"))
	s.Equal("x", req.Query.Get("custom"))
}

func (s *RepositoryTestSuite) TestTypeDefinitions() {
	types, err := s.repo.GetTypeDefinitions(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(types, 4)

	ids := make([]string, 0, len(types))
	for _, t := range types {
		id, err := t.ID(s.ctx)
		s.Require().NoError(err)
		ids = append(ids, id)
	}
	s.Equal([]string{"cmis:document", "cmis:folder", "cmis:relationship", "cmis:policy"}, ids)
}

func (s *RepositoryTestSuite) TestTypeChildren() {
	s.fake.AddType("D:cm:content", fakecmis.Document, "Content")
	s.fake.AddType("D:cm:dictionary", "D:cm:content", "Dictionary")

	children, err := s.repo.GetTypeChildren(s.ctx, fakecmis.Document)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	id, err := children[0].ID(s.ctx)
	s.Require().NoError(err)
	s.Equal("D:cm:content", id)

	base, err := s.repo.GetTypeChildren(s.ctx, "")
	s.Require().NoError(err)
	s.Len(base, 4)
}

func (s *RepositoryTestSuite) TestTypeDescendants() {
	s.fake.AddType("D:cm:content", fakecmis.Document, "Content")
	s.fake.AddType("D:cm:dictionary", "D:cm:content", "Dictionary")

	all, err := s.repo.GetTypeDescendants(s.ctx, "", nil)
	s.Require().NoError(err)
	s.Len(all, 6)

	below, err := s.repo.GetTypeDescendants(s.ctx, fakecmis.Document, nil)
	s.Require().NoError(err)
	s.Len(below, 2)

	shallow, err := s.repo.GetTypeDescendants(s.ctx, fakecmis.Document, Options{constants.OptDepth: 1})
	s.Require().NoError(err)
	s.Len(shallow, 1)
	s.Equal("1", s.lastRequest().Query.Get("depth"))
}

func (s *RepositoryTestSuite) TestGetCollection() {
	_, err := s.repo.GetCollection(s.ctx, constants.QueryColl, nil)
	s.ErrorIs(err, ErrNotSupported)

	types, err := s.repo.GetCollection(s.ctx, constants.TypesColl, Options{"maxItems": 1})
	s.Require().NoError(err)
	s.Len(types.Types, 4)
	s.Nil(types.Results)

	s.fake.AddDocument(s.fake.RootFolderID, "a.txt", nil, "")
	root, err := s.repo.GetCollection(s.ctx, constants.RootColl, nil)
	s.Require().NoError(err)
	s.Equal(constants.RootColl, root.Type)
	n, err := root.Results.Len(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RepositoryTestSuite) TestUnfiledDocs() {
	s.fake.AddDocument("", "loose.txt", nil, "")
	s.fake.AddDocument(s.fake.RootFolderID, "filed.txt", nil, "")

	rs, err := s.repo.UnfiledDocs(s.ctx, nil)
	s.Require().NoError(err)
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	name, err := results[0].Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("loose.txt", name)
}

func (s *RepositoryTestSuite) TestQuery() {
	s.fake.AddDocument(s.fake.RootFolderID, "a.txt", nil, "")
	s.fake.AddDocument(s.fake.RootFolderID, "b.txt", nil, "")
	s.fake.AddFolder(s.fake.RootFolderID, "f")

	rs, err := s.repo.Query(s.ctx, "SELECT * FROM cmis:document", nil)
	s.Require().NoError(err)
	n, err := rs.Len(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	req := s.lastRequest()
	s.Equal(http.MethodPost, req.Method)
	s.Equal(constants.CmisQueryType, req.ContentType)
	s.Contains(string(req.Body), "<![CDATA[SELECT * FROM cmis:document]]>")

	rs, err = s.repo.Query(s.ctx, "SELECT * FROM cmis:document WHERE cmis:name = 'b.txt'", nil)
	s.Require().NoError(err)
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	name, err := results[0].Name(s.ctx)
	s.Require().NoError(err)
	s.Equal("b.txt", name)
}

func (s *RepositoryTestSuite) TestQuery_Paging() {
	for _, name := range []string{"a", "b", "c"} {
		s.fake.AddDocument(s.fake.RootFolderID, name, nil, "")
	}

	rs, err := s.repo.Query(s.ctx, "SELECT * FROM cmis:document", Options{"maxItems": 2})
	s.Require().NoError(err)
	n, err := rs.Len(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.True(rs.HasNext())

	next, err := rs.Next(s.ctx)
	s.Require().NoError(err)
	s.Len(next, 1)
	s.False(rs.HasNext())
}

func (s *RepositoryTestSuite) TestGetContentChanges() {
	_, err := s.repo.GetContentChanges(s.ctx, nil)
	s.ErrorIs(err, ErrNotSupported)

	s.fake.SetCapability("Changes", "objectidsonly")
	s.Require().NoError(s.repo.Reload(s.ctx))
	_, err = s.repo.GetContentChanges(s.ctx, nil)
	s.ErrorIs(err, ErrNotImplemented)
}

func (s *RepositoryTestSuite) TestCreateDocument_Unfiled() {
	before := s.server.RequestCount()
	_, err := s.repo.CreateDocument(s.ctx, "loose.txt", nil, nil, nil)
	s.ErrorIs(err, ErrInvalidArgument)
	s.Equal(before, s.server.RequestCount())

	s.fake.SetCapability("Unfiling", "true")
	s.Require().NoError(s.repo.Reload(s.ctx))
	_, err = s.repo.CreateDocument(s.ctx, "loose.txt", nil, nil, nil)
	s.ErrorIs(err, ErrNotImplemented)
}

func (s *RepositoryTestSuite) TestCreateDocumentAndFolder() {
	root := s.root()

	folder, err := s.repo.CreateFolder(s.ctx, root, "Projects", nil)
	s.Require().NoError(err)

	doc, err := s.repo.CreateDocument(s.ctx, "plan.txt", nil, folder, &ContentFile{Name: "plan.txt", Reader: strings.NewReader("step 1")})
	s.Require().NoError(err)

	data, err := doc.ContentStream(s.ctx)
	s.Require().NoError(err)
	s.Equal("step 1", string(data))
}

func (s *RepositoryTestSuite) TestNotImplemented() {
	_, err := s.repo.CreateDocumentFromSource(s.ctx, "src", nil, s.root())
	s.ErrorIs(err, ErrNotImplemented)

	_, err = s.repo.CreatePolicy(s.ctx, nil)
	s.ErrorIs(err, ErrNotImplemented)
}
