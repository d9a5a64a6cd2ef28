package fakecmis

import (
	"fmt"
	"strings"
)

// Base type ids.
const (
	Document     = "cmis:document"
	Folder       = "cmis:folder"
	Relationship = "cmis:relationship"
	Policy       = "cmis:policy"
)

// Object is a stored CMIS object. Fields are exported so tests can inspect
// and tweak server state directly.
type Object struct {
	ID         string
	Name       string
	TypeID     string
	BaseTypeID string
	// ParentID is empty for the root folder and for unfiled objects.
	ParentID string
	// Properties holds extra string properties rendered as propertyString.
	Properties map[string]string

	Content     []byte
	ContentType string
	// InlineContent renders content inside atom:content instead of as src.
	InlineContent bool

	// AllowableActions overrides individual actions, which default to true.
	AllowableActions map[string]bool

	VersionSeriesID string
	VersionLabel    string
	Major           bool
	IsPWC           bool
	CheckedOutID    string
	CheckedOutBy    string

	SourceID   string
	TargetID   string
	PolicyText string
}

// Type is a stored type definition.
type Type struct {
	ID          string
	BaseID      string
	ParentID    string
	DisplayName string
	Description string
	Creatable   bool
	Queryable   bool
	Properties  []PropertyDefinition
}

type PropertyDefinition struct {
	ID           string
	PropertyType string
	Cardinality  string
	Updatability string
	Required     bool
	Inherited    bool
	Queryable    bool
	Orderable    bool
	OpenChoice   bool
}

// Repository is one workspace of the fake service.
type Repository struct {
	ID           string
	Name         string
	Description  string
	RootFolderID string
	// Capabilities are rendered with the "capability" prefix, e.g.
	// "Unfiling" becomes cmis:capabilityUnfiling.
	Capabilities map[string]string

	server  *Server
	objects map[string]*Object
	order   []string
	types   []*Type
}

func newRepository(s *Server, id, name string) *Repository {
	r := &Repository{
		ID:          id,
		Name:        name,
		Description: name + " (fake)",
		Capabilities: map[string]string{
			"ACL":                       "none",
			"AllVersionsSearchable":     "false",
			"Changes":                   "none",
			"ContentStreamUpdatability": "anytime",
			"GetDescendants":            "true",
			"GetFolderTree":             "true",
			"Multifiling":               "false",
			"PWCSearchable":             "false",
			"PWCUpdatable":              "true",
			"Query":                     "bothcombined",
			"Renditions":                "none",
			"Unfiling":                  "false",
			"VersionSpecificFiling":     "false",
			"Join":                      "none",
		},
		server:  s,
		objects: map[string]*Object{},
	}
	root := &Object{ID: s.newID("folder"), Name: "Company Home", TypeID: Folder, BaseTypeID: Folder}
	r.put(root)
	r.RootFolderID = root.ID
	for _, base := range []string{Document, Folder, Relationship, Policy} {
		r.types = append(r.types, baseType(base))
	}
	return r
}

func baseType(id string) *Type {
	t := &Type{
		ID:          id,
		BaseID:      id,
		DisplayName: strings.TrimPrefix(id, "cmis:"),
		Description: "Base type " + id,
		Creatable:   true,
		Queryable:   id != Relationship,
		Properties: []PropertyDefinition{
			{ID: "cmis:objectId", PropertyType: "id", Cardinality: "single", Updatability: "readonly", Queryable: true},
			{ID: "cmis:name", PropertyType: "string", Cardinality: "single", Updatability: "readwrite", Required: true, Queryable: true, Orderable: true},
			{ID: "cmis:objectTypeId", PropertyType: "id", Cardinality: "single", Updatability: "oncreate", Required: true},
		},
	}
	return t
}

func (r *Repository) put(o *Object) {
	if _, ok := r.objects[o.ID]; !ok {
		r.order = append(r.order, o.ID)
	}
	r.objects[o.ID] = o
}

func (r *Repository) remove(id string) {
	delete(r.objects, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// each calls fn for every object in creation order.
func (r *Repository) each(fn func(*Object)) {
	for _, id := range r.order {
		fn(r.objects[id])
	}
}

// Object returns the stored object with the given id, or nil.
func (r *Repository) Object(id string) *Object {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	return r.objects[id]
}

// Update calls fn with the stored object while holding the server lock.
func (r *Repository) Update(id string, fn func(*Object)) {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	if o := r.objects[id]; o != nil {
		fn(o)
	}
}

// SetCapability sets a repository capability, e.g. ("Unfiling", "true").
func (r *Repository) SetCapability(name, value string) {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	r.Capabilities[name] = value
}

// AddFolder creates a folder under parentID.
func (r *Repository) AddFolder(parentID, name string) *Object {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	o := &Object{ID: r.server.newID("folder"), Name: name, TypeID: Folder, BaseTypeID: Folder, ParentID: parentID}
	r.put(o)
	return o
}

// AddDocument creates a version 1.0 document under parentID. An empty
// parentID leaves it unfiled.
func (r *Repository) AddDocument(parentID, name string, content []byte, contentType string) *Object {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	return r.addDocument(parentID, name, Document, content, contentType)
}

func (r *Repository) addDocument(parentID, name, typeID string, content []byte, contentType string) *Object {
	id := r.server.newID("doc")
	o := &Object{
		ID:              id,
		Name:            name,
		TypeID:          typeID,
		BaseTypeID:      Document,
		ParentID:        parentID,
		Content:         content,
		ContentType:     contentType,
		VersionSeriesID: id,
		VersionLabel:    "1.0",
		Major:           true,
	}
	r.put(o)
	return o
}

// AddRelationship relates sourceID to targetID.
func (r *Repository) AddRelationship(sourceID, targetID, typeID string) *Object {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	return r.addRelationship(sourceID, targetID, typeID)
}

func (r *Repository) addRelationship(sourceID, targetID, typeID string) *Object {
	if typeID == "" {
		typeID = Relationship
	}
	o := &Object{
		ID:         r.server.newID("rel"),
		Name:       sourceID + "->" + targetID,
		TypeID:     typeID,
		BaseTypeID: Relationship,
		SourceID:   sourceID,
		TargetID:   targetID,
	}
	r.put(o)
	return o
}

// AddPolicy creates a policy under parentID.
func (r *Repository) AddPolicy(parentID, name, text string) *Object {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	o := &Object{ID: r.server.newID("policy"), Name: name, TypeID: Policy, BaseTypeID: Policy, ParentID: parentID, PolicyText: text}
	r.put(o)
	return o
}

// AddType registers a subtype of parentID.
func (r *Repository) AddType(id, parentID, displayName string) *Type {
	r.server.mu.Lock()
	defer r.server.mu.Unlock()
	parent := r.typeByID(parentID)
	if parent == nil {
		panic(fmt.Sprintf("fakecmis: unknown parent type %q", parentID))
	}
	t := &Type{
		ID:          id,
		BaseID:      parent.BaseID,
		ParentID:    parentID,
		DisplayName: displayName,
		Creatable:   true,
		Queryable:   true,
		Properties:  append([]PropertyDefinition(nil), parent.Properties...),
	}
	for i := range t.Properties {
		t.Properties[i].Inherited = true
	}
	r.types = append(r.types, t)
	return t
}

func (r *Repository) typeByID(id string) *Type {
	for _, t := range r.types {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *Repository) typeChildren(id string) []*Type {
	var out []*Type
	for _, t := range r.types {
		if t.ParentID == id {
			out = append(out, t)
		}
	}
	return out
}

func (r *Repository) children(folderID string) []*Object {
	var out []*Object
	r.each(func(o *Object) {
		if o.ParentID == folderID && o.ParentID != "" && r.isLatest(o) {
			out = append(out, o)
		}
	})
	return out
}

func (r *Repository) path(o *Object) string {
	if o.ID == r.RootFolderID {
		return "/"
	}
	var segments []string
	for cur := o; cur != nil && cur.ID != r.RootFolderID; cur = r.objects[cur.ParentID] {
		segments = append([]string{cur.Name}, segments...)
	}
	return "/" + strings.Join(segments, "/")
}

func (r *Repository) byPath(path string) *Object {
	var found *Object
	r.each(func(o *Object) {
		if found == nil && o.BaseTypeID != Relationship && r.isLatest(o) && r.path(o) == path {
			found = o
		}
	})
	return found
}

// series returns the versions of a series in creation order, PWC excluded.
func (r *Repository) series(seriesID string) []*Object {
	var out []*Object
	r.each(func(o *Object) {
		if o.VersionSeriesID == seriesID && !o.IsPWC {
			out = append(out, o)
		}
	})
	return out
}

func (r *Repository) isLatest(o *Object) bool {
	if o.BaseTypeID != Document || o.IsPWC {
		return true
	}
	versions := r.series(o.VersionSeriesID)
	return len(versions) > 0 && versions[len(versions)-1].ID == o.ID
}

func (r *Repository) latest(o *Object, major bool) *Object {
	if o.BaseTypeID != Document {
		return o
	}
	versions := r.series(o.VersionSeriesID)
	for i := len(versions) - 1; i >= 0; i-- {
		if !major || versions[i].Major {
			return versions[i]
		}
	}
	return o
}

func (r *Repository) setCheckout(seriesID, pwcID, by string) {
	r.each(func(o *Object) {
		if o.VersionSeriesID == seriesID {
			o.CheckedOutID = pwcID
			o.CheckedOutBy = by
		}
	})
}

// nextLabel returns the label following label: "1.0" becomes "1.1", or
// "2.0" for a major version.
func nextLabel(label string, major bool) string {
	var maj, minor int
	if _, err := fmt.Sscanf(label, "%d.%d", &maj, &minor); err != nil {
		return "1.0"
	}
	if major {
		return fmt.Sprintf("%d.0", maj+1)
	}
	return fmt.Sprintf("%d.%d", maj, minor+1)
}
