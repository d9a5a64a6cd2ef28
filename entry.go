package cmislib

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"mime"
	"path/filepath"
	"sort"

	"github.com/cmislib/cmislib.go/pkg/constants"
)

type entryXML struct {
	XMLName     xml.Name    `xml:"entry"`
	Xmlns       string      `xml:"xmlns,attr"`
	XmlnsApp    string      `xml:"xmlns:app,attr,omitempty"`
	XmlnsCmisra string      `xml:"xmlns:cmisra,attr,omitempty"`
	Title       string      `xml:"title,omitempty"`
	Content     *contentXML `xml:"cmisra:content,omitempty"`
	Object      *objectXML  `xml:"cmisra:object,omitempty"`
}

type contentXML struct {
	MediaType string `xml:"cmisra:mediatype"`
	Base64    string `xml:"cmisra:base64"`
}

type objectXML struct {
	XmlnsCmis  string         `xml:"xmlns:cmis,attr"`
	Properties *propertiesXML `xml:"cmis:properties,omitempty"`
}

type propertiesXML struct {
	Properties []propertyXML
}

type propertyXML struct {
	XMLName              xml.Name
	PropertyDefinitionID string   `xml:"propertyDefinitionId,attr"`
	Values               []string `xml:"cmis:value"`
}

type queryXML struct {
	XMLName   xml.Name `xml:"query"`
	Xmlns     string   `xml:"xmlns,attr"`
	Statement cdataXML `xml:"statement"`
	Options   []optionXML
}

type cdataXML struct {
	Text string `xml:",cdata"`
}

type optionXML struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ContentFile is document content to upload with createDocument.
type ContentFile struct {
	// Name is used to guess MimeType when it is empty.
	Name     string
	Reader   io.Reader
	MimeType string
}

func (c *ContentFile) mediaType() string {
	if c.MimeType != "" {
		return c.MimeType
	}
	if c.Name != "" {
		if t := mime.TypeByExtension(filepath.Ext(c.Name)); t != "" {
			return t
		}
	}
	return constants.DefaultContentMimeType
}

func marshalDocument(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// emptyEntryXML builds an Atom entry with no content, used for checkin.
func emptyEntryXML() ([]byte, error) {
	return marshalDocument(&entryXML{Xmlns: constants.AtomNS})
}

// entryXMLDoc builds an Atom entry carrying properties and, optionally,
// base64 encoded content. Property values may be TypedValue, string, bool,
// integers, float64 or time.Time; plain strings use LegacyPropertyKind.
func entryXMLDoc(properties map[string]any, content *ContentFile) ([]byte, error) {
	entry := &entryXML{
		Xmlns:       constants.AtomNS,
		XmlnsApp:    constants.AppNS,
		XmlnsCmisra: constants.CmisraNS,
		Object:      &objectXML{XmlnsCmis: constants.CmisNS},
	}

	if content != nil && content.Reader != nil {
		data, err := io.ReadAll(content.Reader)
		if err != nil {
			return nil, err
		}
		entry.Content = &contentXML{
			MediaType: content.mediaType(),
			Base64:    base64.StdEncoding.EncodeToString(data),
		}
	}

	if len(properties) > 0 {
		// a name is required for most things, but not for a checkout
		if name, ok := properties[constants.PropName]; ok {
			entry.Title = typedValue(constants.PropName, name).Value
		}

		ids := make([]string, 0, len(properties))
		for id := range properties {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		props := &propertiesXML{}
		for _, id := range ids {
			tv := typedValue(id, properties[id])
			props.Properties = append(props.Properties, propertyXML{
				XMLName:              xml.Name{Local: "cmis:" + string(tv.Kind)},
				PropertyDefinitionID: id,
				Values:               []string{tv.Value},
			})
		}
		entry.Object.Properties = props
	}

	return marshalDocument(entry)
}

// queryXMLDoc builds the cmis:query document POSTed to the query collection.
// Options become child elements in name order.
func queryXMLDoc(statement string, options Options) ([]byte, error) {
	q := &queryXML{
		Xmlns:     constants.CmisNS,
		Statement: cdataXML{Text: statement},
	}
	names := make([]string, 0, len(options))
	for k := range options {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		q.Options = append(q.Options, optionXML{
			XMLName: xml.Name{Local: k},
			Value:   ToCMISValue(options[k]),
		})
	}
	return marshalDocument(q)
}
