// Package uritemplate fills the server-advertised CMIS URI templates.
//
// Templates use single-level "{name}" placeholders. Values are substituted
// in one pass, so a value that itself looks like a placeholder is never
// expanded again.
package uritemplate

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Template is one cmisra:uritemplate entry.
type Template struct {
	Template  string
	Type      string
	MediaType string
}

// Registry maps a template type (objectbyid, objectbypath, typebyid, query)
// to its template.
type Registry map[string]Template

// Placeholder returns the token for name, e.g. "id" becomes "{id}".
func Placeholder(name string) string {
	return "{" + name + "}"
}

// MultipleReplace replaces every occurrence of every key of params in text
// with the corresponding value.
func MultipleReplace(params map[string]string, text string) string {
	if len(params) == 0 {
		return text
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// longest first so that overlapping keys resolve deterministically
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile("(" + strings.Join(quoted, "|") + ")")
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return params[m]
	})
}

// Has reports whether the template contains a slot for name.
func (t Template) Has(name string) bool {
	return strings.Contains(t.Template, Placeholder(name))
}

// Fill substitutes defaults and options into the template. Each default is
// keyed by option name and is used when options does not override it.
// Options whose slot is missing from the template are returned as extra
// query parameters instead, for servers that advertise incomplete templates.
func (t Template) Fill(defaults map[string]string, options map[string]string) (string, url.Values) {
	params := make(map[string]string, len(defaults)+len(options))
	for k, v := range defaults {
		params[Placeholder(k)] = v
	}
	extra := url.Values{}
	for k, v := range options {
		if t.Has(k) {
			params[Placeholder(k)] = v
		} else {
			extra.Set(k, v)
		}
	}
	return MultipleReplace(params, t.Template), extra
}

// AppendQuery adds params to rawURL's query string. Existing parameters with
// the same name are replaced. The other pairs of rawURL are kept verbatim:
// filled templates carry ids such as "workspace://SpacesStore/x;1.0".
func AppendQuery(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	var pairs []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if _, replaced := params[key]; replaced {
			continue
		}
		pairs = append(pairs, pair)
	}
	if extra := params.Encode(); extra != "" {
		pairs = append(pairs, extra)
	}
	u.RawQuery = strings.Join(pairs, "&")
	return u.String(), nil
}
