package cmislib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cmislib/cmislib.go/internal/fakecmis"
	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

type FolderTestSuite struct {
	cmisSuite
}

func TestFolderSuite(t *testing.T) {
	suite.Run(t, new(FolderTestSuite))
}

func (s *FolderTestSuite) names(objects []CmisObject) []string {
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		name, err := o.Name(s.ctx)
		s.Require().NoError(err)
		names = append(names, name)
	}
	return names
}

// tree builds
//
//	/Sites
//	/Sites/a.txt
//	/Sites/swsdp
//	/Sites/swsdp/b.txt
func (s *FolderTestSuite) tree() (sites, swsdp *fakecmis.Object) {
	sites = s.fake.AddFolder(s.fake.RootFolderID, "Sites")
	s.fake.AddDocument(sites.ID, "a.txt", nil, "")
	swsdp = s.fake.AddFolder(sites.ID, "swsdp")
	s.fake.AddDocument(swsdp.ID, "b.txt", nil, "")
	return sites, swsdp
}

func (s *FolderTestSuite) TestCreateFolder() {
	props := map[string]any{"cm:description": "team space"}

	folder, err := s.root().CreateFolder(s.ctx, "Projects", props)
	s.Require().NoError(err)
	s.Len(props, 1)

	body := string(s.lastRequest().Body)
	s.Contains(body, `<cmis:propertyId propertyDefinitionId="cmis:objectTypeId"><cmis:value>cmis:folder</cmis:value>`)
	s.Contains(body, "<title>Projects</title>")

	id, err := folder.ID(s.ctx)
	s.Require().NoError(err)
	stored := s.fake.Object(id)
	s.Require().NotNil(stored)
	s.Equal("Projects", stored.Name)
	s.Equal(s.fake.RootFolderID, stored.ParentID)
	s.Equal("team space", stored.Properties["cm:description"])

	_, err = s.root().CreateFolder(s.ctx, "Projects", nil)
	s.ErrorIs(err, ErrUpdateConflict)
}

func (s *FolderTestSuite) TestCreateDocument() {
	s.fake.AddType("D:cm:content", fakecmis.Document, "Content")

	doc, err := s.root().CreateDocument(s.ctx, "notes.txt",
		map[string]any{constants.PropObjectTypeID: IDValue("D:cm:content")},
		&ContentFile{Name: "notes.txt", Reader: strings.NewReader("remember")})
	s.Require().NoError(err)
	s.Equal(constants.AtomXMLEntryType, s.lastRequest().ContentType)

	id, err := doc.ID(s.ctx)
	s.Require().NoError(err)
	stored := s.fake.Object(id)
	s.Equal("D:cm:content", stored.TypeID)
	s.Equal("remember", string(stored.Content))
	s.True(strings.HasPrefix(stored.ContentType, "text/plain"))
}

func (s *FolderTestSuite) TestCreateDocument_UnknownType() {
	_, err := s.root().CreateDocument(s.ctx, "x", map[string]any{constants.PropObjectTypeID: IDValue("D:nope")}, nil)
	s.ErrorIs(err, ErrInvalidArgument)
}

func (s *FolderTestSuite) TestChildren() {
	sites, _ := s.tree()

	rs, err := s.folder(sites.ID).Children(s.ctx, nil)
	s.Require().NoError(err)
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"a.txt", "swsdp"}, s.names(results))
	s.Equal(KindDocument, results[0].Kind())
	s.Equal(KindFolder, results[1].Kind())
}

func (s *FolderTestSuite) TestChildren_Paging() {
	for _, name := range []string{"1", "2", "3", "4", "5"} {
		s.fake.AddFolder(s.fake.RootFolderID, name)
	}

	rs, err := s.root().Children(s.ctx, Options{"maxItems": 2})
	s.Require().NoError(err)
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"1", "2"}, s.names(results))
	s.True(rs.HasFirst())
	s.False(rs.HasPrev())
	s.True(rs.HasNext())
	s.True(rs.HasLast())

	results, err = rs.Next(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"3", "4"}, s.names(results))
	s.True(rs.HasPrev())

	results, err = rs.Last(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"5"}, s.names(results))
	s.False(rs.HasNext())

	results, err = rs.Next(s.ctx)
	s.Require().NoError(err)
	s.Nil(results)

	results, err = rs.Prev(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"3", "4"}, s.names(results))

	results, err = rs.First(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"1", "2"}, s.names(results))
}

func (s *FolderTestSuite) TestDescendants() {
	sites, _ := s.tree()
	folder := s.folder(sites.ID)

	link, err := folder.DescendantsLink(s.ctx)
	s.Require().NoError(err)
	s.NotContains(link, "?")

	rs, err := folder.Descendants(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal("-1", s.lastRequest().Query.Get("depth"))
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a.txt", "swsdp", "b.txt"}, s.names(results))

	rs, err = folder.Descendants(s.ctx, Options{constants.OptDepth: 1})
	s.Require().NoError(err)
	results, err = rs.Results(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a.txt", "swsdp"}, s.names(results))
}

func (s *FolderTestSuite) TestTree() {
	sites, _ := s.tree()

	rs, err := s.folder(sites.ID).Tree(s.ctx, nil)
	s.Require().NoError(err)
	results, err := rs.Results(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"swsdp"}, s.names(results))
}

func (s *FolderTestSuite) TestDescendants_NotSupported() {
	sites, _ := s.tree()
	folder := s.folder(sites.ID)

	s.fake.SetCapability("GetDescendants", "false")
	s.Require().NoError(s.repo.Reload(s.ctx))

	before := s.server.RequestCount()
	_, err := folder.Descendants(s.ctx, nil)
	s.ErrorIs(err, ErrNotSupported)
	_, err = folder.Tree(s.ctx, nil)
	s.ErrorIs(err, ErrNotSupported)
	s.ErrorIs(folder.DeleteTree(s.ctx, nil), ErrNotSupported)
	s.Equal(before, s.server.RequestCount())
}

func (s *FolderTestSuite) TestParent() {
	sites, swsdp := s.tree()

	parent, err := s.folder(swsdp.ID).Parent(s.ctx)
	s.Require().NoError(err)
	id, err := parent.ID(s.ctx)
	s.Require().NoError(err)
	s.Equal(sites.ID, id)

	_, err = s.root().Parent(s.ctx)
	s.ErrorIs(err, ErrInvalidArgument)
}

func (s *FolderTestSuite) TestDeleteTree() {
	sites, swsdp := s.tree()

	s.Require().NoError(s.folder(sites.ID).DeleteTree(s.ctx, Options{"continueOnFailure": true}))
	req := s.lastRequest()
	s.Equal("DELETE", req.Method)
	s.Equal("true", req.Query.Get("continueOnFailure"))

	s.Nil(s.fake.Object(sites.ID))
	s.Nil(s.fake.Object(swsdp.ID))
}

func (s *FolderTestSuite) TestFilingGates() {
	root := s.root()
	doc := s.object(s.fake.AddDocument(s.fake.RootFolderID, "a.txt", nil, "").ID)

	s.ErrorIs(root.AddObject(s.ctx, doc), ErrNotSupported)
	s.ErrorIs(root.RemoveObject(s.ctx, doc), ErrNotSupported)

	s.fake.SetCapability("Multifiling", "true")
	s.fake.SetCapability("Unfiling", "true")
	s.Require().NoError(s.repo.Reload(s.ctx))
	s.ErrorIs(root.AddObject(s.ctx, doc), ErrNotImplemented)
	s.ErrorIs(root.RemoveObject(s.ctx, doc), ErrNotImplemented)
}

func (s *FolderTestSuite) TestNestedEntriesKeepOwnLinks() {
	sites, _ := s.tree()

	rs, err := s.folder(sites.ID).Descendants(s.ctx, nil)
	s.Require().NoError(err)
	feed, err := atom.Feed(rs.Element())
	s.Require().NoError(err)
	self, ok := atom.OwnLink(feed, constants.SelfRel)
	s.True(ok)
	s.Contains(self, "/descendants/")
}
