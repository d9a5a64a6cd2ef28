package cmislib

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
	"github.com/cmislib/cmislib.go/pkg/uritemplate"
)

// Repository is one workspace of the service document. Its info,
// capabilities and URI templates are read from the workspace element on
// first use and kept until Reload.
type Repository struct {
	client *Client
	xml    *etree.Element

	id           string
	name         string
	info         map[string]string
	capabilities map[string]any
	templates    uritemplate.Registry
}

func newRepository(c *Client, workspace *etree.Element) *Repository {
	return &Repository{client: c, xml: workspace}
}

func (r *Repository) String() string {
	return fmt.Sprintf("CMIS repository %s", r.id)
}

// Client returns the client this repository was obtained from.
func (r *Repository) Client() *Client {
	return r.client
}

// Element returns the backing app:workspace element.
func (r *Repository) Element(ctx context.Context) (*etree.Element, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return r.xml, nil
}

func (r *Repository) ensureLoaded(ctx context.Context) error {
	if r.xml == nil {
		return r.Reload(ctx)
	}
	return nil
}

// Reload fetches the service document again and re-reads this repository's
// workspace. Cached info, capabilities and templates are discarded.
func (r *Repository) Reload(ctx context.Context) error {
	if r.id == "" && r.xml != nil {
		if _, err := r.ID(ctx); err != nil {
			return err
		}
	}
	workspaces, err := r.client.workspaces(ctx)
	if err != nil {
		return err
	}
	var ws *etree.Element
	for _, w := range workspaces {
		if r.id == "" {
			ws = w
			break
		}
		if id, _ := atom.TextByTagNameNS(w, constants.CmisNS, "repositoryId"); id == r.id {
			ws = w
			break
		}
	}
	if ws == nil {
		return newError(ErrObjectNotFound, "repository %q is no longer listed", r.id)
	}
	r.xml = ws
	r.name = ""
	r.info = nil
	r.capabilities = nil
	r.templates = nil
	return nil
}

func (r *Repository) summary(ctx context.Context) (RepositoryInfo, error) {
	id, err := r.ID(ctx)
	if err != nil {
		return RepositoryInfo{}, err
	}
	name, err := r.Name(ctx)
	if err != nil {
		return RepositoryInfo{}, err
	}
	return RepositoryInfo{ID: id, Name: name}, nil
}

// ID returns the repository id.
func (r *Repository) ID(ctx context.Context) (string, error) {
	if r.id == "" {
		if err := r.ensureLoaded(ctx); err != nil {
			return "", err
		}
		id, ok := atom.TextByTagNameNS(r.xml, constants.CmisNS, "repositoryId")
		if !ok {
			return "", fmt.Errorf("%w: workspace has no cmis:repositoryId", constants.ErrProtocolViolation)
		}
		r.id = id
	}
	return r.id, nil
}

// Name returns the repository name.
func (r *Repository) Name(ctx context.Context) (string, error) {
	if r.name == "" {
		if err := r.ensureLoaded(ctx); err != nil {
			return "", err
		}
		r.name, _ = atom.TextByTagNameNS(r.xml, constants.CmisNS, "repositoryName")
	}
	return r.name, nil
}

// Info returns the children of cmisra:repositoryInfo other than the
// capabilities, keyed by local name. Elements without text map to "".
func (r *Repository) Info(ctx context.Context) (map[string]string, error) {
	if r.info == nil {
		if err := r.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		info := map[string]string{}
		if ri := atom.FirstByTagNameNS(r.xml, constants.CmisraNS, "repositoryInfo"); ri != nil {
			for _, node := range ri.ChildElements() {
				if node.Tag == "capabilities" {
					continue
				}
				info[node.Tag], _ = atom.Text(node)
			}
		}
		r.info = info
	}
	return r.info, nil
}

// Capabilities returns the repository capabilities keyed by name without
// the "capability" prefix, e.g. "Unfiling". Values are decoded with
// ParseValue.
func (r *Repository) Capabilities(ctx context.Context) (map[string]any, error) {
	if r.capabilities == nil {
		if err := r.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		caps := map[string]any{}
		if el := atom.FirstByTagNameNS(r.xml, constants.CmisNS, "capabilities"); el != nil {
			for _, node := range el.ChildElements() {
				key := strings.Replace(node.Tag, "capability", "", 1)
				if text, ok := atom.Text(node); ok {
					caps[key] = ParseValue(text)
				} else {
					caps[key] = nil
				}
			}
		}
		r.capabilities = caps
	}
	return r.capabilities, nil
}

func (r *Repository) capability(ctx context.Context, name string) (any, error) {
	caps, err := r.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return caps[name], nil
}

// URITemplates returns the advertised cmisra:uritemplate entries keyed by
// type.
func (r *Repository) URITemplates(ctx context.Context) (uritemplate.Registry, error) {
	if r.templates == nil {
		if err := r.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		templates := uritemplate.Registry{}
		for _, el := range atom.ElementsByTagNameNS(r.xml, constants.CmisraNS, "uritemplate") {
			var t uritemplate.Template
			t.Template, _ = atom.TextByTagNameNS(el, constants.CmisraNS, "template")
			t.Type, _ = atom.TextByTagNameNS(el, constants.CmisraNS, "type")
			t.MediaType, _ = atom.TextByTagNameNS(el, constants.CmisraNS, "mediatype")
			templates[t.Type] = t
		}
		r.templates = templates
	}
	return r.templates, nil
}

func (r *Repository) template(ctx context.Context, templateType string) (uritemplate.Template, error) {
	templates, err := r.URITemplates(ctx)
	if err != nil {
		return uritemplate.Template{}, err
	}
	t, ok := templates[templateType]
	if !ok {
		return uritemplate.Template{}, fmt.Errorf("%w: repository advertises no %s template", constants.ErrProtocolViolation, templateType)
	}
	return t, nil
}

// Link returns the href of the workspace's atom:link with the given rel.
func (r *Repository) Link(ctx context.Context, rel string) (string, bool, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return "", false, err
	}
	href, ok := atom.Link(r.xml, rel, nil)
	return href, ok, nil
}

// CollectionLink returns the href of the collection of the given type, one
// of the constants.*Coll values.
func (r *Repository) CollectionLink(ctx context.Context, collectionType string) (string, bool, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return "", false, err
	}
	href, ok := atom.CollectionHref(r.xml, collectionType)
	return href, ok, nil
}

func (r *Repository) requiredCollectionLink(ctx context.Context, collectionType string) (string, error) {
	href, ok, err := r.CollectionLink(ctx, collectionType)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: repository has no %s collection", constants.ErrProtocolViolation, collectionType)
	}
	return href, nil
}

// RootFolder returns the folder named by the rootFolderId info entry. It is
// loaded lazily.
func (r *Repository) RootFolder(ctx context.Context) (*Folder, error) {
	info, err := r.Info(ctx)
	if err != nil {
		return nil, err
	}
	id := info["rootFolderId"]
	if id == "" {
		return nil, fmt.Errorf("%w: repository info has no rootFolderId", constants.ErrProtocolViolation)
	}
	return &Folder{newObject(r.client, r, id, nil, nil)}, nil
}

// GetObject fetches the object with the given id and returns it
// specialized by its base type.
func (r *Repository) GetObject(ctx context.Context, objectID string, opts Options) (CmisObject, error) {
	return Specialize(ctx, newObject(r.client, r, objectID, nil, opts))
}

// GetFolder fetches the folder with the given id.
func (r *Repository) GetFolder(ctx context.Context, folderID string) (*Folder, error) {
	obj, err := r.GetObject(ctx, folderID, nil)
	if err != nil {
		return nil, err
	}
	if f, ok := obj.(*Folder); ok {
		return f, nil
	}
	return &Folder{obj.Base()}, nil
}

// GetObjectByPath fetches the object at path, e.g. "/Sites/swsdp".
func (r *Repository) GetObjectByPath(ctx context.Context, path string, opts Options) (CmisObject, error) {
	tmpl, err := r.template(ctx, constants.ObjectByPathTemplate)
	if err != nil {
		return nil, err
	}
	defaults := map[string]string{
		"path":                               escapePath(path),
		constants.OptFilter:                  "",
		constants.OptIncludeAllowableActions: "false",
		constants.OptIncludePolicyIDs:        "false",
		constants.OptIncludeRelationships:    "false",
		constants.OptIncludeACL:              "false",
		constants.OptRenditionFilter:         "",
	}
	byPathURL, extra := tmpl.Fill(defaults, opts.encode())

	doc, err := r.client.Get(ctx, byPathURL, valuesOptions(extra))
	if err != nil {
		return nil, asCmisError(err)
	}
	entries := atom.ElementsByTagNameNS(doc, constants.AtomNS, "entry")
	if len(entries) != 1 {
		return nil, fmt.Errorf("%w: expected one entry for path %q, got %d", constants.ErrProtocolViolation, path, len(entries))
	}
	return Specialize(ctx, newObject(r.client, r, "", entries[0], opts))
}

// escapePath encodes path like a query value but keeps its slashes.
func escapePath(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

func valuesOptions(v url.Values) Options {
	if len(v) == 0 {
		return nil
	}
	opts := make(Options, len(v))
	for k := range v {
		opts[k] = v.Get(k)
	}
	return opts
}

// GetTypeDefinition fetches the type with the given id.
func (r *Repository) GetTypeDefinition(ctx context.Context, typeID string) (*ObjectType, error) {
	t := newObjectType(r.client, r, typeID, nil, nil)
	if err := t.Reload(ctx, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTypeDefinitions returns every type in the types collection, nested
// children included.
func (r *Repository) GetTypeDefinitions(ctx context.Context, opts Options) ([]*ObjectType, error) {
	typesURL, err := r.requiredCollectionLink(ctx, constants.TypesColl)
	if err != nil {
		return nil, err
	}
	return r.typeFeed(ctx, typesURL, opts)
}

// GetTypeChildren returns the direct children of typeID, or the base types
// when typeID is empty.
func (r *Repository) GetTypeChildren(ctx context.Context, typeID string) ([]*ObjectType, error) {
	if typeID == "" {
		return r.GetTypeDefinitions(ctx, nil)
	}
	parent, err := r.GetTypeDefinition(ctx, typeID)
	if err != nil {
		return nil, err
	}
	childrenURL, ok, err := parent.Link(ctx, constants.DownRel, constants.AtomXMLFeedTypeP)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: type %q has no children link", constants.ErrProtocolViolation, typeID)
	}
	return r.typeFeed(ctx, childrenURL, nil)
}

// GetTypeDescendants returns the descendants of typeID, or of every base
// type when typeID is empty. Pass constants.OptDepth to limit the depth.
func (r *Repository) GetTypeDescendants(ctx context.Context, typeID string, opts Options) ([]*ObjectType, error) {
	var descendantsURL string
	var ok bool
	if typeID != "" {
		parent, err := r.GetTypeDefinition(ctx, typeID)
		if err != nil {
			return nil, err
		}
		if descendantsURL, ok, err = parent.Link(ctx, constants.DownRel, constants.CmisTreeTypeP); err != nil {
			return nil, err
		}
	} else {
		var err error
		if descendantsURL, ok, err = r.Link(ctx, constants.TypeDescendantsRel); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, newError(ErrNotSupported, "could not determine the type descendants URL")
	}
	return r.typeFeed(ctx, descendantsURL, opts)
}

func (r *Repository) typeFeed(ctx context.Context, feedURL string, opts Options) ([]*ObjectType, error) {
	doc, err := r.client.Get(ctx, feedURL, opts)
	if err != nil {
		return nil, asCmisError(err)
	}
	entries := atom.ElementsByTagNameNS(doc, constants.AtomNS, "entry")
	types := make([]*ObjectType, 0, len(entries))
	for _, e := range entries {
		types = append(types, newObjectType(r.client, r, "", e, nil))
	}
	return types, nil
}

// Collection is the result of GetCollection. The types collection yields
// Types; every other collection yields Results.
type Collection struct {
	Type    string
	Results *ResultSet
	Types   []*ObjectType
}

// GetCollection fetches one of the workspace collections. The query
// collection cannot be fetched and returns ErrNotSupported; use Query.
func (r *Repository) GetCollection(ctx context.Context, collectionType string, opts Options) (*Collection, error) {
	switch collectionType {
	case constants.QueryColl:
		return nil, newError(ErrNotSupported, "query collection not supported")
	case constants.TypesColl:
		// paging options do not apply to type definitions
		types, err := r.GetTypeDefinitions(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &Collection{Type: collectionType, Types: types}, nil
	}
	collURL, err := r.requiredCollectionLink(ctx, collectionType)
	if err != nil {
		return nil, err
	}
	rs, err := r.resultSetFrom(ctx, collURL, opts)
	if err != nil {
		return nil, err
	}
	return &Collection{Type: collectionType, Results: rs}, nil
}

// CheckedOutDocs returns the private working copies in the checkedout
// collection.
func (r *Repository) CheckedOutDocs(ctx context.Context, opts Options) (*ResultSet, error) {
	c, err := r.GetCollection(ctx, constants.CheckedOutColl, opts)
	if err != nil {
		return nil, err
	}
	return c.Results, nil
}

// UnfiledDocs returns the objects in the unfiled collection.
func (r *Repository) UnfiledDocs(ctx context.Context, opts Options) (*ResultSet, error) {
	c, err := r.GetCollection(ctx, constants.UnfiledColl, opts)
	if err != nil {
		return nil, err
	}
	return c.Results, nil
}

func (r *Repository) resultSetFrom(ctx context.Context, feedURL string, opts Options) (*ResultSet, error) {
	doc, err := r.client.Get(ctx, feedURL, opts)
	if err != nil {
		return nil, asCmisError(err)
	}
	return newResultSet(r.client, r, doc), nil
}

// Query runs a CMIS SQL statement. Options such as maxItems and skipCount
// are sent inside the query document.
func (r *Repository) Query(ctx context.Context, statement string, opts Options) (*ResultSet, error) {
	queryURL, err := r.requiredCollectionLink(ctx, constants.QueryColl)
	if err != nil {
		return nil, err
	}
	body, err := queryXMLDoc(statement, opts)
	if err != nil {
		return nil, err
	}
	doc, err := r.client.Post(ctx, queryURL, body, constants.CmisQueryType, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	return newResultSet(r.client, r, doc), nil
}

// GetContentChanges requires the Changes capability.
func (r *Repository) GetContentChanges(ctx context.Context, opts Options) (*ResultSet, error) {
	changes, err := r.capability(ctx, constants.CapabilityChanges)
	if err != nil {
		return nil, err
	}
	if changes == nil {
		return nil, newError(ErrNotSupported, "repository does not support content changes")
	}
	return nil, newError(ErrNotImplemented, "getContentChanges")
}

// CreateDocument creates a document named name in parentFolder. A nil
// parentFolder requests an unfiled document, which needs the Unfiling
// capability.
func (r *Repository) CreateDocument(ctx context.Context, name string, properties map[string]any, parentFolder *Folder, content *ContentFile) (*Document, error) {
	if parentFolder == nil {
		unfiling, err := r.capability(ctx, constants.CapabilityUnfiling)
		if err != nil {
			return nil, err
		}
		if !truthy(unfiling) {
			return nil, newError(ErrInvalidArgument, "repository does not allow unfiling, please provide a parent folder")
		}
		return nil, newError(ErrNotImplemented, "unfiled document creation")
	}
	return parentFolder.CreateDocument(ctx, name, properties, content)
}

// CreateFolder creates a folder named name in parentFolder.
func (r *Repository) CreateFolder(ctx context.Context, parentFolder *Folder, name string, properties map[string]any) (*Folder, error) {
	return parentFolder.CreateFolder(ctx, name, properties)
}

// CreateRelationship relates source to target with a relationship of type
// relType.
func (r *Repository) CreateRelationship(ctx context.Context, source, target CmisObject, relType string) (CmisObject, error) {
	return source.Base().CreateRelationship(ctx, target, relType)
}

// CreateDocumentFromSource is not implemented.
func (r *Repository) CreateDocumentFromSource(_ context.Context, _ string, _ map[string]any, _ *Folder) (*Document, error) {
	return nil, newError(ErrNotImplemented, "createDocumentFromSource")
}

// CreatePolicy is not implemented.
func (r *Repository) CreatePolicy(_ context.Context, _ map[string]any) (*Policy, error) {
	return nil, newError(ErrNotImplemented, "createPolicy")
}
