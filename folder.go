package cmislib

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

// Folder is an object whose base type is cmis:folder.
type Folder struct {
	*Object
}

func (f *Folder) Kind() ObjectKind { return KindFolder }

func (f *Folder) String() string {
	return fmt.Sprintf("CMIS folder %s", f.objectID)
}

// CreateFolder creates a subfolder. cmis:objectTypeId defaults to
// cmis:folder; properties is not modified.
func (f *Folder) CreateFolder(ctx context.Context, name string, properties map[string]any) (*Folder, error) {
	obj, err := f.createChild(ctx, name, properties, constants.BaseTypeFolder, nil)
	if err != nil {
		return nil, err
	}
	return &Folder{obj}, nil
}

// CreateDocument creates a document in the folder, with content when
// content is not nil. cmis:objectTypeId defaults to cmis:document.
func (f *Folder) CreateDocument(ctx context.Context, name string, properties map[string]any, content *ContentFile) (*Document, error) {
	obj, err := f.createChild(ctx, name, properties, constants.BaseTypeDocument, content)
	if err != nil {
		return nil, err
	}
	return &Document{obj}, nil
}

func (f *Folder) createChild(ctx context.Context, name string, properties map[string]any, defaultType string, content *ContentFile) (*Object, error) {
	postURL, err := f.ChildrenLink(ctx)
	if err != nil {
		return nil, err
	}
	props := make(map[string]any, len(properties)+2)
	for k, v := range properties {
		props[k] = v
	}
	props[constants.PropName] = name
	if _, ok := props[constants.PropObjectTypeID]; !ok {
		props[constants.PropObjectTypeID] = IDValue(defaultType)
	}
	body, err := entryXMLDoc(props, content)
	if err != nil {
		return nil, err
	}
	doc, err := f.client.Post(ctx, postURL, body, constants.AtomXMLEntryType, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return nil, err
	}
	return newObject(f.client, f.repository, "", entry, nil), nil
}

// ChildrenLink returns the href of the down link of feed type.
func (f *Folder) ChildrenLink(ctx context.Context) (string, error) {
	return f.requiredLink(ctx, constants.DownRel, constants.AtomXMLFeedTypeP)
}

// DescendantsLink returns the href of the down link of tree type, with any
// query string removed.
func (f *Folder) DescendantsLink(ctx context.Context) (string, error) {
	href, err := f.requiredLink(ctx, constants.DownRel, constants.CmisTreeTypeP)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	return href, nil
}

// Children returns one page of the folder's children. opts may carry
// maxItems, skipCount, orderBy, filter and the include flags.
func (f *Folder) Children(ctx context.Context, opts Options) (*ResultSet, error) {
	childrenURL, err := f.ChildrenLink(ctx)
	if err != nil {
		return nil, err
	}
	return f.repository.resultSetFrom(ctx, childrenURL, opts)
}

func (f *Folder) requireDescendants(ctx context.Context, op string) error {
	getDescendants, err := f.repository.capability(ctx, constants.CapabilityGetDescendants)
	if err != nil {
		return err
	}
	if !truthy(getDescendants) {
		return newError(ErrNotSupported, "repository does not support %s", op)
	}
	return nil
}

// Descendants returns the folder's descendants, to every depth unless
// opts sets depth. It requires the GetDescendants capability.
func (f *Folder) Descendants(ctx context.Context, opts Options) (*ResultSet, error) {
	if err := f.requireDescendants(ctx, "getDescendants"); err != nil {
		return nil, err
	}
	if !opts.has(constants.OptDepth) {
		opts = mergeOptions(opts, Options{constants.OptDepth: -1})
	}
	descendantsURL, err := f.DescendantsLink(ctx)
	if err != nil {
		return nil, err
	}
	return f.repository.resultSetFrom(ctx, descendantsURL, opts)
}

// Tree returns the descendant folders, excluding f itself. It requires the
// GetDescendants capability.
func (f *Folder) Tree(ctx context.Context, opts Options) (*ResultSet, error) {
	if err := f.requireDescendants(ctx, "getFolderTree"); err != nil {
		return nil, err
	}
	treeURL, err := f.requiredLink(ctx, constants.FolderTreeRel, nil)
	if err != nil {
		return nil, err
	}
	return f.repository.resultSetFrom(ctx, treeURL, opts)
}

// Parent returns the parent folder. The root folder has none and yields
// ErrInvalidArgument.
func (f *Folder) Parent(ctx context.Context) (*Folder, error) {
	parentURL, ok, err := f.Link(ctx, constants.UpRel, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(ErrInvalidArgument, "folder has no parent")
	}
	doc, err := f.client.Get(ctx, parentURL, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return nil, err
	}
	return &Folder{newObject(f.client, f.repository, "", entry, nil)}, nil
}

// DeleteTree deletes the folder and everything below it. opts may carry
// allVersions, unfileObjects and continueOnFailure.
func (f *Folder) DeleteTree(ctx context.Context, opts Options) error {
	if err := f.requireDescendants(ctx, "deleteTree"); err != nil {
		return err
	}
	treeURL, err := f.requiredLink(ctx, constants.DownRel, constants.CmisTreeTypeP)
	if err != nil {
		return err
	}
	if err := f.client.Delete(ctx, treeURL, opts); err != nil {
		return asCmisError(err)
	}
	return nil
}

// AddObject requires the Multifiling capability and is not implemented.
func (f *Folder) AddObject(ctx context.Context, _ CmisObject) error {
	multifiling, err := f.repository.capability(ctx, constants.CapabilityMultifiling)
	if err != nil {
		return err
	}
	if !truthy(multifiling) {
		return newError(ErrNotSupported, "repository does not support multifiling")
	}
	return newError(ErrNotImplemented, "addObjectToFolder")
}

// RemoveObject requires the Unfiling capability and is not implemented.
func (f *Folder) RemoveObject(ctx context.Context, _ CmisObject) error {
	unfiling, err := f.repository.capability(ctx, constants.CapabilityUnfiling)
	if err != nil {
		return err
	}
	if !truthy(unfiling) {
		return newError(ErrNotSupported, "repository does not support unfiling")
	}
	return newError(ErrNotImplemented, "removeObjectFromFolder")
}
