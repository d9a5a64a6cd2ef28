package cmislib

import (
	"context"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/cmislib/cmislib.go/pkg/atom"
	"github.com/cmislib/cmislib.go/pkg/constants"
)

// Document is an object whose base type is cmis:document.
type Document struct {
	*Object
}

func (d *Document) Kind() ObjectKind { return KindDocument }

func (d *Document) String() string {
	return fmt.Sprintf("CMIS document %s", d.objectID)
}

func (d *Document) sibling(entry *etree.Element) *Document {
	return &Document{newObject(d.client, d.repository, "", entry, nil)}
}

// Checkout checks the document out and returns its private working copy.
// The document itself is reloaded to pick up the checkout.
func (d *Document) Checkout(ctx context.Context) (*Document, error) {
	id, err := d.ID(ctx)
	if err != nil {
		return nil, err
	}
	checkoutURL, err := d.repository.requiredCollectionLink(ctx, constants.CheckedOutColl)
	if err != nil {
		return nil, err
	}
	body, err := entryXMLDoc(map[string]any{constants.PropObjectID: IDValue(id)}, nil)
	if err != nil {
		return nil, err
	}
	doc, err := d.client.Post(ctx, checkoutURL, body, constants.AtomXMLEntryType, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return nil, err
	}
	if err := d.Reload(ctx, nil); err != nil {
		return nil, err
	}
	return d.sibling(entry), nil
}

// CancelCheckout deletes the private working copy, if any, and reloads the
// document.
func (d *Document) CancelCheckout(ctx context.Context) error {
	pwc, err := d.PrivateWorkingCopy(ctx)
	if err != nil {
		return err
	}
	if pwc == nil {
		return nil
	}
	if err := pwc.Delete(ctx, nil); err != nil {
		return err
	}
	return d.Reload(ctx, nil)
}

// PrivateWorkingCopy returns the document named by
// cmis:versionSeriesCheckedOutId, or nil when the document is not checked
// out.
func (d *Document) PrivateWorkingCopy(ctx context.Context) (*Document, error) {
	if err := d.Reload(ctx, nil); err != nil {
		return nil, err
	}
	props, err := d.Properties(ctx)
	if err != nil {
		return nil, err
	}
	pwcID := props.String(constants.PropVersionSeriesCheckedOutID)
	if pwcID == "" {
		return nil, nil
	}
	obj, err := d.repository.GetObject(ctx, pwcID, nil)
	if err != nil {
		return nil, err
	}
	return asDocument(obj), nil
}

// IsCheckedOut reloads the document and reports
// cmis:isVersionSeriesCheckedOut.
func (d *Document) IsCheckedOut(ctx context.Context) (bool, error) {
	if err := d.Reload(ctx, nil); err != nil {
		return false, err
	}
	props, err := d.Properties(ctx)
	if err != nil {
		return false, err
	}
	return ParseValue(props.String(constants.PropIsVersionSeriesCheckedOut)) == true, nil
}

// CheckedOutBy reloads the document and returns
// cmis:versionSeriesCheckedOutBy.
func (d *Document) CheckedOutBy(ctx context.Context) (string, error) {
	if err := d.Reload(ctx, nil); err != nil {
		return "", err
	}
	props, err := d.Properties(ctx)
	if err != nil {
		return "", err
	}
	return props.String(constants.PropVersionSeriesCheckedOutBy), nil
}

// Checkin checks in a private working copy and returns the new version.
// opts may carry major and the other checkIn arguments.
func (d *Document) Checkin(ctx context.Context, comment string, opts Options) (*Document, error) {
	selfURL, err := d.requiredLink(ctx, constants.SelfRel, nil)
	if err != nil {
		return nil, err
	}
	body, err := emptyEntryXML()
	if err != nil {
		return nil, err
	}
	params := mergeOptions(opts, Options{
		constants.OptCheckin:        true,
		constants.OptCheckinComment: comment,
	})
	doc, err := d.client.Put(ctx, selfURL, body, constants.AtomXMLType, params)
	if err != nil {
		return nil, asCmisError(err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: checkin returned no entry", constants.ErrProtocolViolation)
	}
	entry, err := atom.Entry(doc)
	if err != nil {
		return nil, err
	}
	return d.sibling(entry), nil
}

// LatestVersion returns the latest version of the version series, or the
// latest major version when major is set.
func (d *Document) LatestVersion(ctx context.Context, major bool, opts Options) (*Document, error) {
	id, err := d.ID(ctx)
	if err != nil {
		return nil, err
	}
	version := "latest"
	if major {
		version = "latestmajor"
	}
	obj, err := d.repository.GetObject(ctx, id, mergeOptions(opts, Options{constants.OptReturnVersion: version}))
	if err != nil {
		return nil, err
	}
	return asDocument(obj), nil
}

// PropertiesOfLatestVersion returns the properties of LatestVersion.
func (d *Document) PropertiesOfLatestVersion(ctx context.Context, major bool, opts Options) (Properties, error) {
	latest, err := d.LatestVersion(ctx, major, opts)
	if err != nil {
		return nil, err
	}
	return latest.Properties(ctx)
}

// AllVersions returns the version history, private working copy included.
func (d *Document) AllVersions(ctx context.Context, opts Options) (*ResultSet, error) {
	versionsURL, err := d.requiredLink(ctx, constants.VersionHistoryRel, nil)
	if err != nil {
		return nil, err
	}
	return d.repository.resultSetFrom(ctx, versionsURL, opts)
}

func (d *Document) contentElement(ctx context.Context) (*etree.Element, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	found := atom.ElementsByTagNameNS(d.xml, constants.AtomNS, "content")
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: expected one atom:content, got %d", constants.ErrProtocolViolation, len(found))
	}
	return found[0], nil
}

func (d *Document) contentSrc(ctx context.Context) (string, error) {
	content, err := d.contentElement(ctx)
	if err != nil {
		return "", err
	}
	src, ok := atom.Attr(content, "src")
	if !ok || src == "" {
		return "", fmt.Errorf("%w: unable to determine content stream URL", constants.ErrProtocolViolation)
	}
	return src, nil
}

// ContentStream returns the document content. Content referenced by src is
// downloaded; inline content is returned as is.
func (d *Document) ContentStream(ctx context.Context) ([]byte, error) {
	content, err := d.contentElement(ctx)
	if err != nil {
		return nil, err
	}
	if src, ok := atom.Attr(content, "src"); ok {
		data, err := d.client.getRaw(ctx, src)
		if err != nil {
			return nil, asCmisError(err)
		}
		return data, nil
	}
	text, _ := atom.Text(content)
	return []byte(text), nil
}

// SetContentStream replaces the document content and returns the updated
// document. An empty mimeType is sent as constants.DefaultContentMimeType.
func (d *Document) SetContentStream(ctx context.Context, content io.Reader, mimeType string) (*Document, error) {
	id, err := d.ID(ctx)
	if err != nil {
		return nil, err
	}
	src, err := d.contentSrc(ctx)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = constants.DefaultContentMimeType
	}
	doc, err := d.client.Put(ctx, src, data, mimeType, nil)
	if err != nil {
		return nil, asCmisError(err)
	}
	d.replace(nil)
	if doc != nil {
		if entry, err := atom.Entry(doc); err == nil {
			return d.sibling(entry), nil
		}
	}
	return &Document{newObject(d.client, d.repository, id, nil, nil)}, nil
}

// DeleteContentStream removes the document content.
func (d *Document) DeleteContentStream(ctx context.Context) error {
	if _, err := d.ID(ctx); err != nil {
		return err
	}
	src, err := d.contentSrc(ctx)
	if err != nil {
		return err
	}
	if err := d.client.Delete(ctx, src, nil); err != nil {
		return asCmisError(err)
	}
	d.replace(nil)
	return nil
}

// Renditions requires the Renditions capability and is not implemented.
func (d *Document) Renditions(ctx context.Context) (*ResultSet, error) {
	renditions, err := d.repository.capability(ctx, constants.CapabilityRenditions)
	if err != nil {
		return nil, err
	}
	if !truthy(renditions) {
		return nil, newError(ErrNotSupported, "repository does not support renditions")
	}
	return nil, newError(ErrNotImplemented, "getRenditions")
}

func asDocument(obj CmisObject) *Document {
	if doc, ok := obj.(*Document); ok {
		return doc
	}
	return &Document{obj.Base()}
}
