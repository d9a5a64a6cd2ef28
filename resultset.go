package cmislib

import (
	"context"
	"fmt"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

// ResultSet is one page of an Atom feed of objects. Entries are parsed on
// first access and kept in feed order until the page changes.
type ResultSet struct {
	client     *Client
	repository *Repository
	xml        *etree.Element

	results []CmisObject
	index   map[string]int
}

func newResultSet(c *Client, r *Repository, feed *etree.Element) *ResultSet {
	return &ResultSet{client: c, repository: r, xml: feed}
}

// Element returns the backing feed.
func (rs *ResultSet) Element() *etree.Element {
	return rs.xml
}

// Results returns the objects of the current page. An entry repeating an
// earlier id replaces it in place. Entries without an id, such as query
// rows that do not select cmis:objectId, are returned but not found by ByID.
func (rs *ResultSet) Results(ctx context.Context) ([]CmisObject, error) {
	if rs.index != nil {
		return rs.results, nil
	}
	var results []CmisObject
	index := map[string]int{}
	for _, entry := range atom.ElementsByTagNameNS(rs.xml, constants.AtomNS, "entry") {
		obj, err := Specialize(ctx, newObject(rs.client, rs.repository, "", entry, nil))
		if err != nil {
			return nil, err
		}
		props, err := obj.Properties(ctx)
		if err != nil {
			return nil, err
		}
		// query rows selecting no cmis:objectId are kept but not indexed
		id := props.String(constants.PropObjectID)
		if id == "" {
			results = append(results, obj)
			continue
		}
		if i, ok := index[id]; ok {
			results[i] = obj
			continue
		}
		index[id] = len(results)
		results = append(results, obj)
	}
	rs.results = results
	rs.index = index
	return results, nil
}

// Len returns the number of objects in the current page.
func (rs *ResultSet) Len(ctx context.Context) (int, error) {
	results, err := rs.Results(ctx)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// At returns the i-th object of the current page.
func (rs *ResultSet) At(ctx context.Context, i int) (CmisObject, error) {
	results, err := rs.Results(ctx)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(results) {
		return nil, fmt.Errorf("result index %d out of range [0,%d)", i, len(results))
	}
	return results[i], nil
}

// ByID returns the object of the current page with the given id.
func (rs *ResultSet) ByID(ctx context.Context, id string) (CmisObject, bool, error) {
	results, err := rs.Results(ctx)
	if err != nil {
		return nil, false, err
	}
	i, ok := rs.index[id]
	if !ok {
		return nil, false, nil
	}
	return results[i], true, nil
}

func (rs *ResultSet) link(rel string) (string, bool) {
	feed, err := atom.Feed(rs.xml)
	if err != nil {
		return "", false
	}
	return atom.OwnLink(feed, rel)
}

// page replaces the feed with the one behind rel. It returns nil results
// and no error when the feed has no such link.
func (rs *ResultSet) page(ctx context.Context, rel string) ([]CmisObject, error) {
	href, ok := rs.link(rel)
	if !ok {
		return nil, nil
	}
	doc, err := rs.client.Get(ctx, href, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	rs.xml = doc
	rs.results = nil
	rs.index = nil
	return rs.Results(ctx)
}

// Reload fetches the current page again through its self link.
func (rs *ResultSet) Reload(ctx context.Context) ([]CmisObject, error) {
	return rs.page(ctx, constants.SelfRel)
}

func (rs *ResultSet) First(ctx context.Context) ([]CmisObject, error) {
	return rs.page(ctx, constants.FirstRel)
}

func (rs *ResultSet) Prev(ctx context.Context) ([]CmisObject, error) {
	return rs.page(ctx, constants.PrevRel)
}

func (rs *ResultSet) Next(ctx context.Context) ([]CmisObject, error) {
	return rs.page(ctx, constants.NextRel)
}

func (rs *ResultSet) Last(ctx context.Context) ([]CmisObject, error) {
	return rs.page(ctx, constants.LastRel)
}

func (rs *ResultSet) HasFirst() bool {
	_, ok := rs.link(constants.FirstRel)
	return ok
}

func (rs *ResultSet) HasPrev() bool {
	_, ok := rs.link(constants.PrevRel)
	return ok
}

func (rs *ResultSet) HasNext() bool {
	_, ok := rs.link(constants.NextRel)
	return ok
}

func (rs *ResultSet) HasLast() bool {
	_, ok := rs.link(constants.LastRel)
	return ok
}
