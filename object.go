package cmislib

import (
	"context"
	"fmt"
	"regexp"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

// ObjectKind is the specialization of an object, derived from its
// cmis:baseTypeId.
type ObjectKind int

const (
	KindObject ObjectKind = iota
	KindDocument
	KindFolder
	KindRelationship
	KindPolicy
)

func (k ObjectKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindFolder:
		return "folder"
	case KindRelationship:
		return "relationship"
	case KindPolicy:
		return "policy"
	default:
		return "object"
	}
}

// CmisObject is implemented by *Object and by the specialized types that
// embed it: *Document, *Folder, *Relationship and *Policy.
type CmisObject interface {
	Kind() ObjectKind
	// Base returns the generic object shared by every specialization.
	Base() *Object
	ID(ctx context.Context) (string, error)
	Name(ctx context.Context) (string, error)
	Properties(ctx context.Context) (Properties, error)
	Reload(ctx context.Context, opts Options) error
}

// cacheState records which lazily derived values of an Object are current.
// Every flag is dropped when the backing entry is replaced.
type cacheState uint8

const (
	stateLoaded cacheState = 1 << iota
	statePropertiesResolved
	stateActionsResolved
)

// Object is a CMIS object backed by its Atom entry. The entry is fetched on
// first use, and properties and allowable actions are derived from it once.
type Object struct {
	client     *Client
	repository *Repository
	objectID   string
	xml        *etree.Element
	options    Options

	state            cacheState
	properties       Properties
	allowableActions map[string]any
}

func newObject(c *Client, r *Repository, objectID string, entry *etree.Element, opts Options) *Object {
	o := &Object{
		client:     c,
		repository: r,
		objectID:   objectID,
		xml:        entry,
		options:    opts,
	}
	if entry != nil {
		o.state = stateLoaded
	}
	return o
}

func (o *Object) String() string {
	return fmt.Sprintf("CMIS object %s", o.objectID)
}

func (o *Object) Kind() ObjectKind { return KindObject }

func (o *Object) Base() *Object { return o }

func (o *Object) Repository() *Repository { return o.repository }

// Element returns the backing atom:entry, fetching it if needed.
func (o *Object) Element(ctx context.Context) (*etree.Element, error) {
	if err := o.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return o.xml, nil
}

func (o *Object) ensureLoaded(ctx context.Context) error {
	if o.state&stateLoaded == 0 {
		return o.Reload(ctx, nil)
	}
	return nil
}

// replace swaps the backing entry and drops every derived value.
func (o *Object) replace(entry *etree.Element) {
	o.xml = entry
	o.properties = nil
	o.allowableActions = nil
	o.state = 0
	if entry != nil {
		o.state = stateLoaded
	}
}

// Reload fetches the entry through the objectbyid template. opts are merged
// into the options the object was created with and kept for later reloads.
// Options the template has no slot for are sent as query parameters.
//
// With returnVersion set, the entry may describe another version, so the
// object id is forgotten and re-read from the new entry.
func (o *Object) Reload(ctx context.Context, opts Options) error {
	if len(opts) > 0 {
		o.options = mergeOptions(o.options, opts)
	}
	if o.objectID == "" && o.xml == nil {
		return fmt.Errorf("%w: cannot reload an object without id", constants.ErrProtocolViolation)
	}
	id, err := o.ID(ctx)
	if err != nil {
		return err
	}
	tmpl, err := o.repository.template(ctx, constants.ObjectByIDTemplate)
	if err != nil {
		return err
	}
	defaults := map[string]string{
		"id":                                 id,
		constants.OptFilter:                  "",
		constants.OptIncludeAllowableActions: "false",
		constants.OptIncludePolicyIDs:        "false",
		constants.OptIncludeRelationships:    "false",
		constants.OptIncludeACL:              "false",
		constants.OptRenditionFilter:         "",
	}
	byIDURL, extra := tmpl.Fill(defaults, o.options.encode())

	doc, err := o.client.Get(ctx, byIDURL, valuesOptions(extra))
	if err != nil {
		return asCmisError(err)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return err
	}
	o.replace(entry)
	if o.options.has(constants.OptReturnVersion) {
		o.objectID = ""
	}
	return nil
}

// ID returns cmis:objectId.
func (o *Object) ID(ctx context.Context) (string, error) {
	if o.objectID == "" {
		props, err := o.Properties(ctx)
		if err != nil {
			return "", err
		}
		id := props.String(constants.PropObjectID)
		if id == "" {
			return "", fmt.Errorf("%w: entry has no %s", constants.ErrProtocolViolation, constants.PropObjectID)
		}
		o.objectID = id
	}
	return o.objectID, nil
}

// Name returns cmis:name.
func (o *Object) Name(ctx context.Context) (string, error) {
	props, err := o.Properties(ctx)
	if err != nil {
		return "", err
	}
	return props.String(constants.PropName), nil
}

// Title returns the atom:title of the entry.
func (o *Object) Title(ctx context.Context) (string, error) {
	if err := o.ensureLoaded(ctx); err != nil {
		return "", err
	}
	title, _ := atom.Text(atom.ChildByTagNameNS(o.xml, constants.AtomNS, "title"))
	return title, nil
}

// Properties returns the object's properties keyed by property definition
// id. Each value is the first cmis:value of the property, or nil.
func (o *Object) Properties(ctx context.Context) (Properties, error) {
	if o.state&statePropertiesResolved != 0 {
		return o.properties, nil
	}
	if err := o.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	el := atom.FirstByTagNameNS(o.xml, constants.CmisNS, "properties")
	if el == nil {
		return nil, fmt.Errorf("%w: entry has no cmis:properties", constants.ErrProtocolViolation)
	}
	props := Properties{}
	for _, p := range el.ChildElements() {
		id, ok := atom.Attr(p, "propertyDefinitionId")
		if !ok {
			continue
		}
		if text, ok := atom.TextByTagNameNS(p, constants.CmisNS, "value"); ok {
			props[id] = text
		} else {
			props[id] = nil
		}
	}
	o.properties = props
	o.state |= statePropertiesResolved
	return props, nil
}

// AllowableActions reloads the object with includeAllowableActions and
// returns the actions keyed by local name, e.g. "canDeleteObject".
func (o *Object) AllowableActions(ctx context.Context) (map[string]any, error) {
	if o.state&stateActionsResolved != 0 {
		return o.allowableActions, nil
	}
	if err := o.Reload(ctx, Options{constants.OptIncludeAllowableActions: true}); err != nil {
		return nil, err
	}
	found := atom.ElementsByTagNameNS(o.xml, constants.CmisNS, "allowableActions")
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: expected one cmis:allowableActions, got %d", constants.ErrProtocolViolation, len(found))
	}
	actions := map[string]any{}
	for _, a := range found[0].ChildElements() {
		if text, ok := atom.Text(a); ok {
			actions[a.Tag] = ParseValue(text)
		}
	}
	o.allowableActions = actions
	o.state |= stateActionsResolved
	return actions, nil
}

func (o *Object) allowed(ctx context.Context, action string) (bool, error) {
	actions, err := o.AllowableActions(ctx)
	if err != nil {
		return false, err
	}
	return actions[action] == true, nil
}

// Link returns the href of the entry's atom:link with rel whose type
// matches typePattern, when typePattern is not nil.
func (o *Object) Link(ctx context.Context, rel string, typePattern *regexp.Regexp) (string, bool, error) {
	if err := o.ensureLoaded(ctx); err != nil {
		return "", false, err
	}
	href, ok := atom.Link(o.xml, rel, typePattern)
	return href, ok, nil
}

func (o *Object) requiredLink(ctx context.Context, rel string, typePattern *regexp.Regexp) (string, error) {
	href, ok, err := o.Link(ctx, rel, typePattern)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: entry has no %s link", constants.ErrProtocolViolation, rel)
	}
	return href, nil
}

// UpdateProperties PUTs the given properties to the self link. Property ids
// map to values as accepted by TypedValue. The returned entry, if any,
// replaces the backing entry; otherwise the object is re-fetched on next
// use.
func (o *Object) UpdateProperties(ctx context.Context, properties map[string]any) error {
	if _, err := o.ID(ctx); err != nil {
		return err
	}
	selfURL, err := o.requiredLink(ctx, constants.SelfRel, nil)
	if err != nil {
		return err
	}
	body, err := entryXMLDoc(properties, nil)
	if err != nil {
		return err
	}
	doc, err := o.client.Put(ctx, selfURL, body, constants.AtomXMLType, nil)
	if err != nil {
		return asCmisError(err)
	}
	o.replaceFrom(doc)
	return nil
}

// replaceFrom takes the entry of a mutation response, or forgets the
// backing entry when the server sent none.
func (o *Object) replaceFrom(doc *etree.Element) {
	if doc != nil {
		if entry, err := atom.Entry(doc); err == nil {
			o.replace(entry)
			return
		}
	}
	o.replace(nil)
}

// Delete deletes the object. Options such as allVersions are sent as query
// parameters.
func (o *Object) Delete(ctx context.Context, opts Options) error {
	selfURL, err := o.requiredLink(ctx, constants.SelfRel, nil)
	if err != nil {
		return err
	}
	if err := o.client.Delete(ctx, selfURL, opts); err != nil {
		return asCmisError(err)
	}
	return nil
}

// CreateRelationship relates o to target with a relationship of type
// relType, e.g. "R:cm:basis".
func (o *Object) CreateRelationship(ctx context.Context, target CmisObject, relType string) (CmisObject, error) {
	sourceID, err := o.ID(ctx)
	if err != nil {
		return nil, err
	}
	targetID, err := target.ID(ctx)
	if err != nil {
		return nil, err
	}
	relsURL, err := o.requiredLink(ctx, constants.RelationshipsRel, nil)
	if err != nil {
		return nil, err
	}
	body, err := entryXMLDoc(map[string]any{
		constants.PropSourceID:     IDValue(sourceID),
		constants.PropTargetID:     IDValue(targetID),
		constants.PropObjectTypeID: IDValue(relType),
	}, nil)
	if err != nil {
		return nil, err
	}
	doc, err := o.client.Post(ctx, relsURL, body, constants.AtomXMLType, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	entries := atom.ElementsByTagNameNS(doc, constants.AtomNS, "entry")
	if len(entries) != 1 {
		return nil, fmt.Errorf("%w: expected one entry for the new relationship, got %d", constants.ErrProtocolViolation, len(entries))
	}
	return Specialize(ctx, newObject(o.client, o.repository, "", entries[0], nil))
}

// Relationships returns the relationships the object takes part in. Pass
// relationshipDirection, typeId or includeSubRelationshipTypes in opts.
func (o *Object) Relationships(ctx context.Context, opts Options) (*ResultSet, error) {
	relsURL, err := o.requiredLink(ctx, constants.RelationshipsRel, nil)
	if err != nil {
		return nil, err
	}
	return o.repository.resultSetFrom(ctx, relsURL, opts)
}

// Move is not implemented.
func (o *Object) Move(_ context.Context, _, _ *Folder) error {
	return newError(ErrNotImplemented, "move")
}

// ObjectParents is not implemented.
func (o *Object) ObjectParents(_ context.Context) (*ResultSet, error) {
	return nil, newError(ErrNotImplemented, "getObjectParents")
}

func (o *Object) requireAction(ctx context.Context, action string) error {
	ok, err := o.allowed(ctx, action)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrCmis, "this object has %s set to false", action)
	}
	return nil
}

// ApplyPolicy requires the canApplyPolicy allowable action and is not
// implemented.
func (o *Object) ApplyPolicy(ctx context.Context, _ string) error {
	if err := o.requireAction(ctx, "canApplyPolicy"); err != nil {
		return err
	}
	return newError(ErrNotImplemented, "applyPolicy")
}

// RemovePolicy requires the canRemovePolicy allowable action and is not
// implemented.
func (o *Object) RemovePolicy(ctx context.Context, _ string) error {
	if err := o.requireAction(ctx, "canRemovePolicy"); err != nil {
		return err
	}
	return newError(ErrNotImplemented, "removePolicy")
}

// AppliedPolicies requires the canGetAppliedPolicies allowable action and
// is not implemented.
func (o *Object) AppliedPolicies(ctx context.Context) (*ResultSet, error) {
	if err := o.requireAction(ctx, "canGetAppliedPolicies"); err != nil {
		return nil, err
	}
	return nil, newError(ErrNotImplemented, "getAppliedPolicies")
}

// ACL requires the ACL capability and is not implemented.
func (o *Object) ACL(ctx context.Context) (map[string]any, error) {
	acl, err := o.repository.capability(ctx, constants.CapabilityACL)
	if err != nil {
		return nil, err
	}
	if !truthy(acl) {
		return nil, newError(ErrNotSupported, "repository does not support ACL")
	}
	return nil, newError(ErrNotImplemented, "getACL")
}

// ApplyACL requires the ACL capability to be "manage" and is not
// implemented.
func (o *Object) ApplyACL(ctx context.Context, _ map[string]any) error {
	acl, err := o.repository.capability(ctx, constants.CapabilityACL)
	if err != nil {
		return err
	}
	if acl != "manage" {
		return newError(ErrNotSupported, "repository does not allow ACL management")
	}
	return newError(ErrNotImplemented, "applyACL")
}

// Specialize returns obj as the type matching its cmis:baseTypeId: a
// *Document, *Folder, *Relationship or *Policy sharing obj's entry. An
// absent or unknown base type returns obj itself.
func Specialize(ctx context.Context, obj *Object) (CmisObject, error) {
	props, err := obj.Properties(ctx)
	if err != nil {
		return nil, err
	}
	base, ok := props[constants.PropBaseTypeID].(string)
	if !ok {
		return obj, nil
	}
	id := obj.objectID
	if id == "" {
		id = props.String(constants.PropObjectID)
	}
	fresh := func() *Object {
		return newObject(obj.client, obj.repository, id, obj.xml, obj.options)
	}
	switch base {
	case constants.BaseTypeDocument:
		return &Document{fresh()}, nil
	case constants.BaseTypeFolder:
		return &Folder{fresh()}, nil
	case constants.BaseTypeRelationship:
		return &Relationship{fresh()}, nil
	case constants.BaseTypePolicy:
		return &Policy{fresh()}, nil
	default:
		return obj, nil
	}
}
