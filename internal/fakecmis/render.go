package fakecmis

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/constants"
)

var updated = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339)

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

func declareNamespaces(el *etree.Element, defaultNS string) {
	el.CreateAttr("xmlns", defaultNS)
	if defaultNS != constants.AtomNS {
		el.CreateAttr("xmlns:atom", constants.AtomNS)
	}
	if defaultNS != constants.AppNS {
		el.CreateAttr("xmlns:app", constants.AppNS)
	}
	el.CreateAttr("xmlns:cmis", constants.CmisNS)
	el.CreateAttr("xmlns:cmisra", constants.CmisraNS)
}

func text(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

func link(parent *etree.Element, rel, mediaType, href string) {
	l := parent.CreateElement("link")
	l.CreateAttr("rel", rel)
	if mediaType != "" {
		l.CreateAttr("type", mediaType)
	}
	l.CreateAttr("href", href)
}

func write(w http.ResponseWriter, status int, contentType string, doc *etree.Document) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	doc.Indent(2)
	_, _ = doc.WriteTo(w)
}

func (s *Server) serviceDocument() *etree.Document {
	doc := newDocument()
	service := doc.CreateElement("service")
	declareNamespaces(service, constants.AppNS)

	for _, r := range s.repos {
		base := s.base(r.ID)
		ws := service.CreateElement("workspace")
		text(ws, "atom:title", r.Name)

		info := ws.CreateElement("cmisra:repositoryInfo")
		text(info, "cmis:repositoryId", r.ID)
		text(info, "cmis:repositoryName", r.Name)
		text(info, "cmis:repositoryDescription", r.Description)
		text(info, "cmis:vendorName", "fakecmis")
		text(info, "cmis:productName", "fakecmis")
		text(info, "cmis:productVersion", "1.0")
		text(info, "cmis:rootFolderId", r.RootFolderID)
		caps := info.CreateElement("cmis:capabilities")
		names := make([]string, 0, len(r.Capabilities))
		for k := range r.Capabilities {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			text(caps, "cmis:capability"+k, r.Capabilities[k])
		}
		text(info, "cmis:cmisVersionSupported", "1.0")

		collections := []struct{ kind, href string }{
			{constants.RootColl, base + "/children/" + url.PathEscape(r.RootFolderID)},
			{constants.TypesColl, base + "/types"},
			{constants.QueryColl, base + "/query"},
			{constants.CheckedOutColl, base + "/checkedout"},
			{constants.UnfiledColl, base + "/unfiled"},
		}
		for _, c := range collections {
			coll := ws.CreateElement("collection")
			coll.CreateAttr("href", c.href)
			text(coll, "atom:title", c.kind)
			text(coll, "cmisra:collectionType", c.kind)
		}

		l := ws.CreateElement("atom:link")
		l.CreateAttr("rel", constants.TypeDescendantsRel)
		l.CreateAttr("type", constants.CmisTreeType)
		l.CreateAttr("href", base+"/typedescendants")

		byID := base + "/id?id={id}&filter={filter}&includeAllowableActions={includeAllowableActions}" +
			"&includePolicyIds={includePolicyIds}&includeRelationships={includeRelationships}" +
			"&includeACL={includeACL}&renditionFilter={renditionFilter}"
		if s.IncompleteTemplates {
			byID = base + "/id?id={id}&filter={filter}&includePolicyIds={includePolicyIds}" +
				"&includeRelationships={includeRelationships}&includeACL={includeACL}&renditionFilter={renditionFilter}"
		}
		templates := []struct{ kind, template, mediaType string }{
			{constants.ObjectByIDTemplate, byID, constants.AtomXMLEntryType},
			{constants.ObjectByPathTemplate, base + "/path?path={path}&filter={filter}&includeAllowableActions={includeAllowableActions}" +
				"&includePolicyIds={includePolicyIds}&includeRelationships={includeRelationships}" +
				"&includeACL={includeACL}&renditionFilter={renditionFilter}", constants.AtomXMLEntryType},
			{constants.TypeByIDTemplate, base + "/type?id={id}", constants.AtomXMLEntryType},
			{constants.QueryTemplate, base + "/query?q={q}&searchAllVersions={searchAllVersions}&maxItems={maxItems}&skipCount={skipCount}", constants.AtomXMLFeedType},
		}
		for _, t := range templates {
			ut := ws.CreateElement("cmisra:uritemplate")
			text(ut, "cmisra:template", t.template)
			text(ut, "cmisra:type", t.kind)
			text(ut, "cmisra:mediatype", t.mediaType)
		}
	}
	return doc
}

type entryOptions struct {
	allowableActions bool
	// depth of nested cmisra:children; 0 renders none, -1 everything.
	depth       int
	foldersOnly bool
}

func newFeed(title, self string) (*etree.Document, *etree.Element) {
	doc := newDocument()
	feed := doc.CreateElement("feed")
	declareNamespaces(feed, constants.AtomNS)
	text(feed, "id", "urn:fakecmis:"+title)
	text(feed, "title", title)
	text(feed, "updated", updated)
	link(feed, constants.SelfRel, constants.AtomXMLFeedType, self)
	return doc, feed
}

func (s *Server) entryDocument(r *Repository, o *Object, opts entryOptions) *etree.Document {
	doc := newDocument()
	s.writeEntry(&doc.Element, r, o, opts, true)
	return doc
}

func (s *Server) writeEntry(parent *etree.Element, r *Repository, o *Object, opts entryOptions, root bool) {
	base := s.base(r.ID)
	id := url.PathEscape(o.ID)

	entry := parent.CreateElement("entry")
	if root {
		declareNamespaces(entry, constants.AtomNS)
	}
	text(entry, "id", "urn:fakecmis:"+o.ID)
	text(entry, "title", o.Name)
	text(entry, "updated", updated)
	link(entry, constants.SelfRel, constants.AtomXMLEntryType, base+"/entry/"+id)
	link(entry, "edit", constants.AtomXMLEntryType, base+"/entry/"+id)
	link(entry, constants.RelationshipsRel, constants.AtomXMLFeedType, base+"/rels/"+id)
	if o.ParentID != "" {
		link(entry, constants.UpRel, constants.AtomXMLEntryType, base+"/parent/"+id)
	}

	switch o.BaseTypeID {
	case Folder:
		link(entry, constants.DownRel, constants.AtomXMLFeedType, base+"/children/"+id)
		link(entry, constants.DownRel, constants.CmisTreeType, base+"/descendants/"+id+"?depth=-1")
		link(entry, constants.FolderTreeRel, constants.AtomXMLFeedType, base+"/foldertree/"+id)
	case Document:
		link(entry, constants.VersionHistoryRel, constants.AtomXMLFeedType, base+"/versions/"+id)
		content := entry.CreateElement("content")
		content.CreateAttr("type", o.contentType())
		if o.InlineContent {
			content.SetText(string(o.Content))
		} else {
			content.CreateAttr("src", base+"/content/"+id)
		}
	}

	obj := entry.CreateElement("cmisra:object")
	props := obj.CreateElement("cmis:properties")
	for _, p := range objectProperties(r, o) {
		el := props.CreateElement("cmis:" + p.kind)
		el.CreateAttr("propertyDefinitionId", p.id)
		if p.set {
			text(el, "cmis:value", p.value)
		}
	}
	if opts.allowableActions {
		actions := obj.CreateElement("cmis:allowableActions")
		for _, a := range allowableActions(o) {
			text(actions, "cmis:"+a, strconv.FormatBool(o.allowed(a)))
		}
	}

	if o.BaseTypeID == Folder && opts.depth != 0 {
		children := entry.CreateElement("cmisra:children")
		feed := children.CreateElement("feed")
		text(feed, "title", o.Name)
		next := opts
		if next.depth > 0 {
			next.depth--
		}
		for _, c := range r.children(o.ID) {
			if opts.foldersOnly && c.BaseTypeID != Folder {
				continue
			}
			s.writeEntry(feed, r, c, next, false)
		}
	}
}

func (o *Object) contentType() string {
	if o.ContentType == "" {
		return "application/octet-stream"
	}
	return o.ContentType
}

func (o *Object) allowed(action string) bool {
	if v, ok := o.AllowableActions[action]; ok {
		return v
	}
	return true
}

func allowableActions(o *Object) []string {
	actions := []string{
		"canDeleteObject", "canUpdateProperties", "canGetProperties",
		"canApplyPolicy", "canRemovePolicy", "canGetAppliedPolicies",
		"canGetObjectRelationships", "canCreateRelationship",
	}
	switch o.BaseTypeID {
	case Folder:
		actions = append(actions, "canGetChildren", "canGetDescendants", "canCreateDocument", "canCreateFolder", "canDeleteTree")
	case Document:
		actions = append(actions, "canGetContentStream", "canSetContentStream", "canCheckOut", "canCancelCheckOut", "canCheckIn", "canGetAllVersions")
	}
	return actions
}

type property struct {
	kind  string
	id    string
	value string
	set   bool
}

func objectProperties(r *Repository, o *Object) []property {
	prop := func(kind, id, value string) property {
		return property{kind: kind, id: id, value: value, set: value != ""}
	}
	props := []property{
		prop("propertyId", "cmis:objectId", o.ID),
		prop("propertyString", "cmis:name", o.Name),
		prop("propertyId", "cmis:objectTypeId", o.TypeID),
		prop("propertyId", "cmis:baseTypeId", o.BaseTypeID),
		prop("propertyString", "cmis:createdBy", "admin"),
		prop("propertyDateTime", "cmis:creationDate", updated),
		prop("propertyString", "cmis:changeToken", updated),
	}
	switch o.BaseTypeID {
	case Folder:
		props = append(props,
			prop("propertyId", "cmis:parentId", o.ParentID),
			prop("propertyString", "cmis:path", r.path(o)),
		)
	case Document:
		props = append(props,
			prop("propertyBoolean", "cmis:isLatestVersion", strconv.FormatBool(r.isLatest(o))),
			prop("propertyBoolean", "cmis:isMajorVersion", strconv.FormatBool(o.Major)),
			prop("propertyString", "cmis:versionLabel", o.VersionLabel),
			prop("propertyId", "cmis:versionSeriesId", o.VersionSeriesID),
			prop("propertyBoolean", "cmis:isVersionSeriesCheckedOut", strconv.FormatBool(o.CheckedOutID != "")),
			prop("propertyString", "cmis:versionSeriesCheckedOutBy", o.CheckedOutBy),
			prop("propertyId", "cmis:versionSeriesCheckedOutId", o.CheckedOutID),
			prop("propertyInteger", "cmis:contentStreamLength", strconv.Itoa(len(o.Content))),
			prop("propertyString", "cmis:contentStreamMimeType", o.contentType()),
		)
	case Relationship:
		props = append(props,
			prop("propertyId", "cmis:sourceId", o.SourceID),
			prop("propertyId", "cmis:targetId", o.TargetID),
		)
	case Policy:
		props = append(props, prop("propertyString", "cmis:policyText", o.PolicyText))
	}
	names := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		props = append(props, prop("propertyString", k, o.Properties[k]))
	}
	return props
}

func (s *Server) writeType(parent *etree.Element, r *Repository, t *Type, definitions bool, depth int, root bool) {
	base := s.base(r.ID)
	id := url.PathEscape(t.ID)

	entry := parent.CreateElement("entry")
	if root {
		declareNamespaces(entry, constants.AtomNS)
	}
	text(entry, "id", "urn:fakecmis:type:"+t.ID)
	text(entry, "title", t.DisplayName)
	text(entry, "updated", updated)
	link(entry, constants.SelfRel, constants.AtomXMLEntryType, base+"/type?id="+url.QueryEscape(t.ID))
	link(entry, constants.DownRel, constants.AtomXMLFeedType, base+"/types/"+id+"/children")
	link(entry, constants.DownRel, constants.CmisTreeType, base+"/types/"+id+"/descendants")

	typ := entry.CreateElement("cmisra:type")
	text(typ, "cmis:id", t.ID)
	text(typ, "cmis:localName", t.ID)
	text(typ, "cmis:localNamespace", "http://fakecmis/model")
	text(typ, "cmis:displayName", t.DisplayName)
	text(typ, "cmis:queryName", t.ID)
	text(typ, "cmis:description", t.Description)
	text(typ, "cmis:baseId", t.BaseID)
	if t.ParentID != "" {
		text(typ, "cmis:parentId", t.ParentID)
	}
	text(typ, "cmis:creatable", strconv.FormatBool(t.Creatable))
	text(typ, "cmis:fileable", strconv.FormatBool(t.BaseID != Relationship))
	text(typ, "cmis:queryable", strconv.FormatBool(t.Queryable))
	text(typ, "cmis:fulltextIndexed", "false")
	text(typ, "cmis:includedInSupertypeQuery", "true")
	text(typ, "cmis:controllablePolicy", "false")
	text(typ, "cmis:controllableACL", "false")
	if definitions {
		for _, p := range t.Properties {
			def := typ.CreateElement("cmis:property" + title(p.PropertyType) + "Definition")
			text(def, "cmis:id", p.ID)
			text(def, "cmis:localName", p.ID)
			text(def, "cmis:displayName", p.ID)
			text(def, "cmis:queryName", p.ID)
			text(def, "cmis:propertyType", p.PropertyType)
			text(def, "cmis:cardinality", p.Cardinality)
			text(def, "cmis:updatability", p.Updatability)
			text(def, "cmis:inherited", strconv.FormatBool(p.Inherited))
			text(def, "cmis:required", strconv.FormatBool(p.Required))
			text(def, "cmis:queryable", strconv.FormatBool(p.Queryable))
			text(def, "cmis:orderable", strconv.FormatBool(p.Orderable))
			text(def, "cmis:openChoice", strconv.FormatBool(p.OpenChoice))
		}
	}

	if depth != 0 {
		children := r.typeChildren(t.ID)
		if len(children) > 0 {
			feed := entry.CreateElement("cmisra:children").CreateElement("feed")
			text(feed, "title", t.ID)
			for _, c := range children {
				s.writeType(feed, r, c, definitions, depth-1, false)
			}
		}
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
