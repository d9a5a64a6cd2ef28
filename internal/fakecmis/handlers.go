package fakecmis

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/cmis", s.handleService).Methods(http.MethodGet)

	repo := r.PathPrefix("/cmis/{repo}").Subrouter()
	repo.HandleFunc("/id", s.handleObjectByID).Methods(http.MethodGet)
	repo.HandleFunc("/path", s.handleObjectByPath).Methods(http.MethodGet)
	repo.HandleFunc("/type", s.handleTypeByID).Methods(http.MethodGet)
	repo.HandleFunc("/types", s.handleTypes).Methods(http.MethodGet)
	repo.HandleFunc("/types/{id}/children", s.handleTypeChildren).Methods(http.MethodGet)
	repo.HandleFunc("/types/{id}/descendants", s.handleTypeDescendants).Methods(http.MethodGet)
	repo.HandleFunc("/typedescendants", s.handleTypeDescendants).Methods(http.MethodGet)
	repo.HandleFunc("/entry/{id}", s.handleEntry).Methods(http.MethodGet)
	repo.HandleFunc("/entry/{id}", s.handleUpdate).Methods(http.MethodPut)
	repo.HandleFunc("/entry/{id}", s.handleDelete).Methods(http.MethodDelete)
	repo.HandleFunc("/parent/{id}", s.handleParent).Methods(http.MethodGet)
	repo.HandleFunc("/children/{id}", s.handleChildren).Methods(http.MethodGet)
	repo.HandleFunc("/children/{id}", s.handleCreate).Methods(http.MethodPost)
	repo.HandleFunc("/descendants/{id}", s.handleDescendants).Methods(http.MethodGet)
	repo.HandleFunc("/descendants/{id}", s.handleDeleteTree).Methods(http.MethodDelete)
	repo.HandleFunc("/foldertree/{id}", s.handleFolderTree).Methods(http.MethodGet)
	repo.HandleFunc("/content/{id}", s.handleGetContent).Methods(http.MethodGet)
	repo.HandleFunc("/content/{id}", s.handleSetContent).Methods(http.MethodPut)
	repo.HandleFunc("/content/{id}", s.handleDeleteContent).Methods(http.MethodDelete)
	repo.HandleFunc("/rels/{id}", s.handleRelationships).Methods(http.MethodGet)
	repo.HandleFunc("/rels/{id}", s.handleCreateRelationship).Methods(http.MethodPost)
	repo.HandleFunc("/versions/{id}", s.handleVersions).Methods(http.MethodGet)
	repo.HandleFunc("/checkedout", s.handleCheckedOut).Methods(http.MethodGet)
	repo.HandleFunc("/checkedout", s.handleCheckout).Methods(http.MethodPost)
	repo.HandleFunc("/unfiled", s.handleUnfiled).Methods(http.MethodGet)
	repo.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost, http.MethodGet)
	return r
}

// lookup resolves the repository and, when the route has one, the object.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) lookup(w http.ResponseWriter, req *http.Request, id string) (*Repository, *Object, bool) {
	r := s.repository(mux.Vars(req)["repo"])
	if r == nil {
		http.Error(w, "no such repository", http.StatusNotFound)
		return nil, nil, false
	}
	if id == "" {
		return r, nil, true
	}
	o := r.objects[id]
	if o == nil {
		http.Error(w, "no such object", http.StatusNotFound)
		return nil, nil, false
	}
	return r, o, true
}

func boolParam(req *http.Request, name string) bool {
	return req.URL.Query().Get(name) == "true"
}

func (s *Server) handleService(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	write(w, http.StatusOK, "application/atomsvc+xml", s.serviceDocument())
}

func (s *Server) handleObjectByID(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, req.URL.Query().Get("id"))
	if !ok {
		return
	}
	switch req.URL.Query().Get("returnVersion") {
	case "latest":
		o = r.latest(o, false)
	case "latestmajor":
		o = r.latest(o, true)
	}
	opts := entryOptions{allowableActions: boolParam(req, "includeAllowableActions")}
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, o, opts))
}

func (s *Server) handleObjectByPath(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	o := r.byPath(req.URL.Query().Get("path"))
	if o == nil {
		http.Error(w, "no object at path", http.StatusNotFound)
		return
	}
	opts := entryOptions{allowableActions: boolParam(req, "includeAllowableActions")}
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, o, opts))
}

func (s *Server) handleEntry(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, o, entryOptions{}))
}

func (s *Server) handleParent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	parent := r.objects[o.ParentID]
	if parent == nil {
		http.Error(w, "object has no parent", http.StatusNotFound)
		return
	}
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, parent, entryOptions{}))
}

// incoming is the data of a posted or put Atom entry.
type incoming struct {
	properties map[string]string
	content    []byte
	mediaType  string
	hasContent bool
}

func parseEntry(body []byte) (*incoming, error) {
	in := &incoming{properties: map[string]string{}}
	if len(body) == 0 {
		return in, nil
	}
	doc, err := atom.Parse(body)
	if err != nil {
		return nil, err
	}
	if props := atom.FirstByTagNameNS(doc, constants.CmisNS, "properties"); props != nil {
		for _, p := range props.ChildElements() {
			id, _ := atom.Attr(p, "propertyDefinitionId")
			in.properties[id], _ = atom.TextByTagNameNS(p, constants.CmisNS, "value")
		}
	}
	if content := atom.FirstByTagNameNS(doc, constants.CmisraNS, "content"); content != nil {
		in.mediaType, _ = atom.TextByTagNameNS(content, constants.CmisraNS, "mediatype")
		encoded, _ := atom.TextByTagNameNS(content, constants.CmisraNS, "base64")
		if in.content, err = base64.StdEncoding.DecodeString(encoded); err != nil {
			return nil, err
		}
		in.hasContent = true
	}
	return in, nil
}

func readEntry(w http.ResponseWriter, req *http.Request) (*incoming, bool) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	in, err := parseEntry(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return in, true
}

var reservedProperties = map[string]bool{
	"cmis:name":         true,
	"cmis:objectTypeId": true,
	"cmis:objectId":     true,
	"cmis:sourceId":     true,
	"cmis:targetId":     true,
	"cmis:policyText":   true,
}

func applyProperties(o *Object, props map[string]string) {
	for k, v := range props {
		switch k {
		case "cmis:name":
			o.Name = v
		case "cmis:policyText":
			o.PolicyText = v
		}
		if reservedProperties[k] {
			continue
		}
		if o.Properties == nil {
			o.Properties = map[string]string{}
		}
		o.Properties[k] = v
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, parent, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	in, ok := readEntry(w, req)
	if !ok {
		return
	}
	typeID := in.properties["cmis:objectTypeId"]
	t := r.typeByID(typeID)
	if t == nil {
		http.Error(w, "unknown type "+typeID, http.StatusBadRequest)
		return
	}
	for _, c := range r.children(parent.ID) {
		if c.Name == in.properties["cmis:name"] {
			http.Error(w, "name already exists", http.StatusConflict)
			return
		}
	}

	var o *Object
	switch t.BaseID {
	case Document:
		o = r.addDocument(parent.ID, "", typeID, in.content, in.mediaType)
	case Folder:
		o = &Object{ID: s.newID("folder"), TypeID: typeID, BaseTypeID: Folder, ParentID: parent.ID}
		r.put(o)
	case Policy:
		o = &Object{ID: s.newID("policy"), TypeID: typeID, BaseTypeID: Policy, ParentID: parent.ID}
		r.put(o)
	default:
		http.Error(w, "cannot file a "+t.BaseID, http.StatusBadRequest)
		return
	}
	applyProperties(o, in.properties)
	w.Header().Set("Location", s.base(r.ID)+"/entry/"+url.PathEscape(o.ID))
	write(w, http.StatusCreated, constants.AtomXMLEntryType, s.entryDocument(r, o, entryOptions{}))
}

func (s *Server) handleUpdate(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	in, ok := readEntry(w, req)
	if !ok {
		return
	}
	if boolParam(req, "checkin") {
		s.checkin(w, req, r, o, in)
		return
	}
	applyProperties(o, in.properties)
	if s.EmptyPutResponses {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, o, entryOptions{}))
}

func (s *Server) checkin(w http.ResponseWriter, req *http.Request, r *Repository, pwc *Object, in *incoming) {
	if !pwc.IsPWC {
		http.Error(w, "not a private working copy", http.StatusConflict)
		return
	}
	versions := r.series(pwc.VersionSeriesID)
	prev := versions[len(versions)-1]
	major := boolParam(req, "major")

	next := *pwc
	next.ID = pwc.VersionSeriesID + "-v" + strconv.Itoa(len(versions)+1)
	next.Name = prev.Name
	next.ParentID = prev.ParentID
	next.IsPWC = false
	next.Major = major
	next.VersionLabel = nextLabel(prev.VersionLabel, major)
	next.Properties = map[string]string{}
	for k, v := range prev.Properties {
		next.Properties[k] = v
	}
	if comment := req.URL.Query().Get("checkinComment"); comment != "" {
		next.Properties["cmis:checkinComment"] = comment
	}
	applyProperties(&next, in.properties)

	r.remove(pwc.ID)
	r.put(&next)
	r.setCheckout(pwc.VersionSeriesID, "", "")
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, &next, entryOptions{}))
}

func (s *Server) handleDelete(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	if o.ID == r.RootFolderID {
		http.Error(w, "cannot delete the root folder", http.StatusConflict)
		return
	}
	if o.BaseTypeID == Folder && len(r.children(o.ID)) > 0 {
		http.Error(w, "folder is not empty", http.StatusConflict)
		return
	}
	if o.IsPWC {
		r.setCheckout(o.VersionSeriesID, "", "")
	}
	r.remove(o.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTree(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	var drop func(id string)
	drop = func(id string) {
		for _, c := range r.children(id) {
			drop(c.ID)
		}
		for _, v := range r.series(id) {
			r.remove(v.ID)
		}
		r.remove(id)
	}
	drop(o.ID)
	w.WriteHeader(http.StatusNoContent)
}

// page writes a feed of objects honouring maxItems and skipCount, with
// paging links when maxItems is given.
func (s *Server) page(w http.ResponseWriter, req *http.Request, r *Repository, title string, objects []*Object, opts entryOptions) {
	q := req.URL.Query()
	self := s.URL + req.URL.Path
	doc, feed := newFeed(title, self+"?"+q.Encode())

	skip, _ := strconv.Atoi(q.Get("skipCount"))
	maxItems, err := strconv.Atoi(q.Get("maxItems"))
	if err != nil || maxItems <= 0 {
		maxItems = len(objects)
	}
	if skip > len(objects) {
		skip = len(objects)
	}
	end := skip + maxItems
	if end > len(objects) {
		end = len(objects)
	}

	if q.Get("maxItems") != "" && maxItems > 0 {
		pageURL := func(skipCount int) string {
			pq := url.Values{}
			for k, v := range q {
				pq[k] = v
			}
			pq.Set("skipCount", strconv.Itoa(skipCount))
			return self + "?" + pq.Encode()
		}
		link(feed, constants.FirstRel, constants.AtomXMLFeedType, pageURL(0))
		if skip > 0 {
			prev := skip - maxItems
			if prev < 0 {
				prev = 0
			}
			link(feed, constants.PrevRel, constants.AtomXMLFeedType, pageURL(prev))
		}
		if end < len(objects) {
			link(feed, constants.NextRel, constants.AtomXMLFeedType, pageURL(end))
		}
		last := 0
		if len(objects) > 0 {
			last = (len(objects) - 1) / maxItems * maxItems
		}
		link(feed, constants.LastRel, constants.AtomXMLFeedType, pageURL(last))
	}
	text(feed, "cmisra:numItems", strconv.Itoa(len(objects)))

	for _, o := range objects[skip:end] {
		s.writeEntry(feed, r, o, opts, false)
	}
	write(w, http.StatusOK, constants.AtomXMLFeedType, doc)
}

func (s *Server) handleChildren(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	opts := entryOptions{allowableActions: boolParam(req, "includeAllowableActions")}
	s.page(w, req, r, o.Name, r.children(o.ID), opts)
}

func depthParam(req *http.Request) int {
	depth, err := strconv.Atoi(req.URL.Query().Get("depth"))
	if err != nil || depth == 0 {
		return -1
	}
	return depth
}

func (s *Server) handleDescendants(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	s.tree(w, req, r, o, false)
}

func (s *Server) handleFolderTree(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	s.tree(w, req, r, o, true)
}

func (s *Server) tree(w http.ResponseWriter, req *http.Request, r *Repository, o *Object, foldersOnly bool) {
	depth := depthParam(req)
	doc, feed := newFeed(o.Name, s.URL+req.URL.RequestURI())
	opts := entryOptions{depth: depth - 1, foldersOnly: foldersOnly}
	if depth < 0 {
		opts.depth = -1
	}
	for _, c := range r.children(o.ID) {
		if foldersOnly && c.BaseTypeID != Folder {
			continue
		}
		s.writeEntry(feed, r, c, opts, false)
	}
	write(w, http.StatusOK, constants.CmisTreeType, doc)
}

func (s *Server) handleGetContent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	if o.BaseTypeID != Document || o.Content == nil {
		http.Error(w, "no content", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", o.contentType())
	_, _ = w.Write(o.Content)
}

func (s *Server) handleSetContent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	content, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o.Content = content
	o.ContentType = req.Header.Get("Content-Type")
	write(w, http.StatusOK, constants.AtomXMLEntryType, s.entryDocument(r, o, entryOptions{}))
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	o.Content = nil
	o.ContentType = ""
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRelationships(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	direction := req.URL.Query().Get("relationshipDirection")
	var rels []*Object
	r.each(func(rel *Object) {
		if rel.BaseTypeID != Relationship {
			return
		}
		source := rel.SourceID == o.ID
		target := rel.TargetID == o.ID
		switch direction {
		case "target":
			source = false
		case "either":
		default:
			target = false
		}
		if source || target {
			rels = append(rels, rel)
		}
	})
	s.page(w, req, r, "relationships", rels, entryOptions{})
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	in, ok := readEntry(w, req)
	if !ok {
		return
	}
	if in.properties["cmis:sourceId"] != o.ID {
		http.Error(w, "source does not match", http.StatusBadRequest)
		return
	}
	targetID := in.properties["cmis:targetId"]
	if r.objects[targetID] == nil {
		http.Error(w, "no such target", http.StatusNotFound)
		return
	}
	rel := r.addRelationship(o.ID, targetID, in.properties["cmis:objectTypeId"])
	write(w, http.StatusCreated, constants.AtomXMLEntryType, s.entryDocument(r, rel, entryOptions{}))
}

func (s *Server) handleVersions(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, o, ok := s.lookup(w, req, mux.Vars(req)["id"])
	if !ok {
		return
	}
	versions := r.series(o.VersionSeriesID)
	if o.CheckedOutID != "" {
		if pwc := r.objects[o.CheckedOutID]; pwc != nil {
			versions = append(versions, pwc)
		}
	}
	// newest first
	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
	s.page(w, req, r, "versions", versions, entryOptions{})
}

func (s *Server) handleCheckedOut(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	var pwcs []*Object
	r.each(func(o *Object) {
		if o.IsPWC {
			pwcs = append(pwcs, o)
		}
	})
	s.page(w, req, r, "checkedout", pwcs, entryOptions{})
}

func (s *Server) handleCheckout(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	in, ok := readEntry(w, req)
	if !ok {
		return
	}
	doc := r.objects[in.properties["cmis:objectId"]]
	if doc == nil || doc.BaseTypeID != Document {
		http.Error(w, "no such document", http.StatusNotFound)
		return
	}
	if doc.CheckedOutID != "" {
		http.Error(w, "already checked out", http.StatusConflict)
		return
	}
	by, _, _ := req.BasicAuth()
	if by == "" {
		by = "anonymous"
	}
	pwc := *doc
	pwc.ID = doc.VersionSeriesID + "-pwc"
	pwc.Name = doc.Name + " (Working Copy)"
	pwc.IsPWC = true
	pwc.ParentID = ""
	pwc.VersionLabel = "pwc"
	r.put(&pwc)
	r.setCheckout(doc.VersionSeriesID, pwc.ID, by)
	write(w, http.StatusCreated, constants.AtomXMLEntryType, s.entryDocument(r, &pwc, entryOptions{}))
}

func (s *Server) handleUnfiled(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	var unfiled []*Object
	r.each(func(o *Object) {
		if o.ParentID == "" && o.ID != r.RootFolderID && o.BaseTypeID == Document && !o.IsPWC && r.isLatest(o) {
			unfiled = append(unfiled, o)
		}
	})
	s.page(w, req, r, "unfiled", unfiled, entryOptions{})
}

var (
	fromClause  = regexp.MustCompile(`(?i)\bfrom\s+([\w:]+)`)
	whereClause = regexp.MustCompile(`(?i)\bwhere\s+([\w:]+)\s*=\s*'([^']*)'`)
)

// handleQuery supports "SELECT ... FROM type [WHERE prop = 'value']",
// matching objects of type or of its base type. POST takes a cmis:query
// document; GET, used by paging links, takes the statement in q.
func (s *Server) handleQuery(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	q := req.URL.Query()
	statement := q.Get("q")
	if req.Method == http.MethodPost {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		doc, err := atom.Parse(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		statement, _ = atom.TextByTagNameNS(doc, constants.CmisNS, "statement")
		q = url.Values{}
		for _, opt := range []string{"maxItems", "skipCount"} {
			if v, ok := atom.TextByTagNameNS(doc, constants.CmisNS, opt); ok {
				q.Set(opt, v)
			}
		}
		q.Set("q", statement)
		req.URL.RawQuery = q.Encode()
	}

	from := fromClause.FindStringSubmatch(statement)
	if from == nil {
		http.Error(w, "unsupported statement", http.StatusBadRequest)
		return
	}
	where := whereClause.FindStringSubmatch(statement)

	var results []*Object
	r.each(func(o *Object) {
		if o.ID == r.RootFolderID || o.IsPWC || !r.isLatest(o) {
			return
		}
		if o.TypeID != from[1] && o.BaseTypeID != from[1] {
			return
		}
		if where != nil && propertyValue(r, o, where[1]) != where[2] {
			return
		}
		results = append(results, o)
	})
	s.page(w, req, r, "query", results, entryOptions{})
}

func propertyValue(r *Repository, o *Object, id string) string {
	for _, p := range objectProperties(r, o) {
		if strings.EqualFold(p.id, id) {
			return p.value
		}
	}
	return ""
}

func (s *Server) handleTypeByID(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	t := r.typeByID(req.URL.Query().Get("id"))
	if t == nil {
		http.Error(w, "no such type", http.StatusNotFound)
		return
	}
	doc := newDocument()
	s.writeType(&doc.Element, r, t, boolParam(req, "includePropertyDefinitions"), 0, true)
	write(w, http.StatusOK, constants.AtomXMLEntryType, doc)
}

func (s *Server) typeFeed(w http.ResponseWriter, req *http.Request, r *Repository, title string, types []*Type, depth int, mediaType string) {
	doc, feed := newFeed(title, s.URL+req.URL.RequestURI())
	definitions := boolParam(req, "includePropertyDefinitions")
	for _, t := range types {
		s.writeType(feed, r, t, definitions, depth, false)
	}
	write(w, http.StatusOK, mediaType, doc)
}

func (s *Server) handleTypes(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	s.typeFeed(w, req, r, "types", r.typeChildren(""), 0, constants.AtomXMLFeedType)
}

func (s *Server) handleTypeChildren(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	id := mux.Vars(req)["id"]
	if r.typeByID(id) == nil {
		http.Error(w, "no such type", http.StatusNotFound)
		return
	}
	s.typeFeed(w, req, r, id, r.typeChildren(id), 0, constants.AtomXMLFeedType)
}

func (s *Server) handleTypeDescendants(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _, ok := s.lookup(w, req, "")
	if !ok {
		return
	}
	id := mux.Vars(req)["id"]
	if id != "" && r.typeByID(id) == nil {
		http.Error(w, "no such type", http.StatusNotFound)
		return
	}
	depth := depthParam(req)
	next := depth - 1
	if depth < 0 {
		next = -1
	}
	s.typeFeed(w, req, r, "descendants", r.typeChildren(id), next, constants.CmisTreeType)
}
