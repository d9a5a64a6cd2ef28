package cmislib

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseValue decodes the CMIS string encoding of booleans and null:
// "true" and "false" become bool, "none" becomes nil, anything else is
// returned unchanged.
func ParseValue(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	case "none":
		return nil
	default:
		return value
	}
}

// ToCMISValue is the inverse of ParseValue. Values other than bool, nil and
// string are formatted with their natural textual form.
func ToCMISValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "none"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// truthy follows the repository capability convention: true, or any
// non-empty value such as "manage" or "bothcombined", enables a feature.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	default:
		return false
	}
}

// Options are optional request arguments such as maxItems, filter or
// includeAllowableActions. Values are encoded with ToCMISValue.
type Options map[string]any

func (o Options) encode() map[string]string {
	out := make(map[string]string, len(o))
	for k, v := range o {
		out[k] = ToCMISValue(v)
	}
	return out
}

func (o Options) values() map[string][]string {
	if len(o) == 0 {
		return nil
	}
	out := make(map[string][]string, len(o))
	for k, v := range o {
		out[k] = []string{ToCMISValue(v)}
	}
	return out
}

func (o Options) has(key string) bool {
	_, ok := o[key]
	return ok
}

func mergeOptions(base Options, extra Options) Options {
	out := make(Options, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Properties is a property map as returned by the server. Values are the
// first cmis:value of each property, or nil for an empty property.
type Properties map[string]any

// String returns the property as a string, or "" when it is absent or nil.
func (p Properties) String(id string) string {
	s, _ := p[id].(string)
	return s
}

// PropertyKind selects the element used to serialise an outbound property.
type PropertyKind string

const (
	KindString   PropertyKind = "propertyString"
	KindID       PropertyKind = "propertyId"
	KindDateTime PropertyKind = "propertyDateTime"
	KindBoolean  PropertyKind = "propertyBoolean"
	KindInteger  PropertyKind = "propertyInteger"
	KindDecimal  PropertyKind = "propertyDecimal"
	KindURI      PropertyKind = "propertyUri"
	KindHTML     PropertyKind = "propertyHtml"
)

// TypedValue is an outbound property value with an explicit kind.
type TypedValue struct {
	Kind  PropertyKind
	Value string
}

func StringValue(s string) TypedValue { return TypedValue{Kind: KindString, Value: s} }
func IDValue(id string) TypedValue    { return TypedValue{Kind: KindID, Value: id} }
func URIValue(u string) TypedValue    { return TypedValue{Kind: KindURI, Value: u} }
func HTMLValue(h string) TypedValue   { return TypedValue{Kind: KindHTML, Value: h} }

func DateTimeValue(t time.Time) TypedValue {
	return TypedValue{Kind: KindDateTime, Value: t.Format(time.RFC3339Nano)}
}

func BooleanValue(b bool) TypedValue {
	return TypedValue{Kind: KindBoolean, Value: strconv.FormatBool(b)}
}

func IntegerValue(i int64) TypedValue {
	return TypedValue{Kind: KindInteger, Value: strconv.FormatInt(i, 10)}
}

func DecimalValue(f float64) TypedValue {
	return TypedValue{Kind: KindDecimal, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

// LegacyPropertyKind guesses a property's kind from its id:
// "...String" is a string, "...Id" an id, "...Date" or "...DateTime" a
// datetime, and everything else a string. It only applies to untyped values
// and misclassifies properties that do not follow this naming.
func LegacyPropertyKind(id string) PropertyKind {
	switch {
	case strings.HasSuffix(id, "String"):
		return KindString
	case strings.HasSuffix(id, "Id"):
		return KindID
	case strings.HasSuffix(id, "Date"), strings.HasSuffix(id, "DateTime"):
		return KindDateTime
	default:
		return KindString
	}
}

// typedValue resolves an outbound value to its kind and text.
func typedValue(id string, v any) TypedValue {
	switch t := v.(type) {
	case TypedValue:
		return t
	case string:
		return TypedValue{Kind: LegacyPropertyKind(id), Value: t}
	case bool:
		return BooleanValue(t)
	case int:
		return IntegerValue(int64(t))
	case int64:
		return IntegerValue(t)
	case float64:
		return DecimalValue(t)
	case time.Time:
		return DateTimeValue(t)
	default:
		return TypedValue{Kind: LegacyPropertyKind(id), Value: ToCMISValue(v)}
	}
}
