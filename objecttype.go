package cmislib

import (
	"context"
	"fmt"
	"regexp"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

// ObjectType is a CMIS type definition such as cmis:document. Its fields
// are read from the type element of the backing entry, which is fetched
// through the typebyid template on first use.
type ObjectType struct {
	client     *Client
	repository *Repository
	typeID     string
	xml        *etree.Element
	options    Options
}

func newObjectType(c *Client, r *Repository, typeID string, entry *etree.Element, opts Options) *ObjectType {
	return &ObjectType{client: c, repository: r, typeID: typeID, xml: entry, options: opts}
}

func (t *ObjectType) String() string {
	return fmt.Sprintf("CMIS type %s", t.typeID)
}

// Reload fetches the type definition again. opts are merged into the
// options kept from earlier reloads.
func (t *ObjectType) Reload(ctx context.Context, opts Options) error {
	if len(opts) > 0 {
		t.options = mergeOptions(t.options, opts)
	}
	id, err := t.ID(ctx)
	if err != nil {
		return err
	}
	tmpl, err := t.repository.template(ctx, constants.TypeByIDTemplate)
	if err != nil {
		return err
	}
	byIDURL, extra := tmpl.Fill(map[string]string{"id": id}, t.options.encode())
	doc, err := t.client.Get(ctx, byIDURL, valuesOptions(extra))
	if err != nil {
		return asCmisError(err)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return err
	}
	t.xml = entry
	return nil
}

func (t *ObjectType) ensureLoaded(ctx context.Context) error {
	if t.xml == nil {
		return t.Reload(ctx, nil)
	}
	return nil
}

// typeElement returns the single direct child named type.
func (t *ObjectType) typeElement(ctx context.Context) (*etree.Element, error) {
	if err := t.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	found := atom.ChildrenByLocalName(t.xml, "type")
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: expected one type element, got %d", constants.ErrProtocolViolation, len(found))
	}
	return found[0], nil
}

func (t *ObjectType) elementValue(ctx context.Context, local string) (string, error) {
	typeEl, err := t.typeElement(ctx)
	if err != nil {
		return "", err
	}
	v, _ := atom.TextByTagNameNS(typeEl, constants.CmisNS, local)
	return v, nil
}

func (t *ObjectType) flag(ctx context.Context, local string) (bool, error) {
	v, err := t.elementValue(ctx, local)
	if err != nil {
		return false, err
	}
	return ParseValue(v) == true, nil
}

// ID returns the type id.
func (t *ObjectType) ID(ctx context.Context) (string, error) {
	if t.typeID == "" {
		if t.xml == nil {
			return "", fmt.Errorf("%w: cannot load a type without id", constants.ErrProtocolViolation)
		}
		id, err := t.elementValue(ctx, "id")
		if err != nil {
			return "", err
		}
		t.typeID = id
	}
	return t.typeID, nil
}

func (t *ObjectType) LocalName(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "localName")
}

func (t *ObjectType) LocalNamespace(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "localNamespace")
}

func (t *ObjectType) DisplayName(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "displayName")
}

func (t *ObjectType) QueryName(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "queryName")
}

func (t *ObjectType) Description(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "description")
}

// BaseID returns the base type, e.g. cmis:document.
func (t *ObjectType) BaseID(ctx context.Context) (string, error) {
	return t.elementValue(ctx, "baseId")
}

func (t *ObjectType) Creatable(ctx context.Context) (bool, error) {
	return t.flag(ctx, "creatable")
}

func (t *ObjectType) Fileable(ctx context.Context) (bool, error) {
	return t.flag(ctx, "fileable")
}

func (t *ObjectType) Queryable(ctx context.Context) (bool, error) {
	return t.flag(ctx, "queryable")
}

func (t *ObjectType) FulltextIndexed(ctx context.Context) (bool, error) {
	return t.flag(ctx, "fulltextIndexed")
}

func (t *ObjectType) IncludedInSupertypeQuery(ctx context.Context) (bool, error) {
	return t.flag(ctx, "includedInSupertypeQuery")
}

func (t *ObjectType) ControllablePolicy(ctx context.Context) (bool, error) {
	return t.flag(ctx, "controllablePolicy")
}

func (t *ObjectType) ControllableACL(ctx context.Context) (bool, error) {
	return t.flag(ctx, "controllableACL")
}

// Link returns the href of the atom:link with rel whose type matches
// typePattern.
func (t *ObjectType) Link(ctx context.Context, rel string, typePattern *regexp.Regexp) (string, bool, error) {
	if err := t.ensureLoaded(ctx); err != nil {
		return "", false, err
	}
	href, ok := atom.Link(t.xml, rel, typePattern)
	return href, ok, nil
}

// Properties returns the property definitions of the type keyed by id.
// When the loaded entry carries none, the type is reloaded with
// includePropertyDefinitions.
func (t *ObjectType) Properties(ctx context.Context) (map[string]*PropertyDefinition, error) {
	withDefinitions := Options{constants.OptIncludePropertyDefinitions: true}
	if t.xml == nil {
		if err := t.Reload(ctx, withDefinitions); err != nil {
			return nil, err
		}
	}
	typeEl, err := t.typeElement(ctx)
	if err != nil {
		return nil, err
	}
	found := atom.ElementsByTagNameNS(typeEl, constants.CmisNS, "propertyType")
	if len(found) == 0 {
		if err := t.Reload(ctx, withDefinitions); err != nil {
			return nil, err
		}
		if typeEl, err = t.typeElement(ctx); err != nil {
			return nil, err
		}
		found = atom.ElementsByTagNameNS(typeEl, constants.CmisNS, "propertyType")
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: could not retrieve property definitions of %s", constants.ErrProtocolViolation, t.typeID)
		}
	}
	defs := make(map[string]*PropertyDefinition, len(found))
	for _, el := range found {
		def := &PropertyDefinition{xml: el.Parent()}
		defs[def.ID()] = def
	}
	return defs, nil
}

// PropertyDefinition describes one property of an ObjectType. Accessors
// return the raw element text.
type PropertyDefinition struct {
	xml *etree.Element
}

func (p *PropertyDefinition) String() string {
	return p.ID()
}

func (p *PropertyDefinition) value(local string) string {
	v, _ := atom.TextByTagNameNS(p.xml, constants.CmisNS, local)
	return v
}

func (p *PropertyDefinition) ID() string             { return p.value("id") }
func (p *PropertyDefinition) LocalName() string      { return p.value("localName") }
func (p *PropertyDefinition) LocalNamespace() string { return p.value("localNamespace") }
func (p *PropertyDefinition) DisplayName() string    { return p.value("displayName") }
func (p *PropertyDefinition) QueryName() string      { return p.value("queryName") }
func (p *PropertyDefinition) Description() string    { return p.value("description") }
func (p *PropertyDefinition) PropertyType() string   { return p.value("propertyType") }
func (p *PropertyDefinition) Cardinality() string    { return p.value("cardinality") }
func (p *PropertyDefinition) Updatability() string   { return p.value("updatability") }
func (p *PropertyDefinition) Inherited() string      { return p.value("inherited") }
func (p *PropertyDefinition) Required() string       { return p.value("required") }
func (p *PropertyDefinition) Queryable() string      { return p.value("queryable") }
func (p *PropertyDefinition) Orderable() string      { return p.value("orderable") }
func (p *PropertyDefinition) OpenChoice() string     { return p.value("openChoice") }
