package uritemplate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const objectByID = "http://cmis.example/alfresco/s/cmis/arg/n?noderef={id}&filter={filter}&includeAllowableActions={includeAllowableActions}&includePolicyIds={includePolicyIds}&includeRelationships={includeRelationships}&includeACL={includeACL}&renditionFilter={renditionFilter}"

func TestMultipleReplace(t *testing.T) {
	got := MultipleReplace(map[string]string{
		"{id}":     "workspace://SpacesStore/123",
		"{filter}": "*",
	}, "/obj/{id}?f={filter}&again={id}")
	assert.Equal(t, "/obj/workspace://SpacesStore/123?f=*&again=workspace://SpacesStore/123", got)
}

func TestMultipleReplaceIsIdempotentOnOutput(t *testing.T) {
	params := map[string]string{"{id}": "a", "{path}": "/b/c"}
	tmpl := "{id}/{path}/{id}{id}"
	once := MultipleReplace(params, tmpl)
	assert.Equal(t, "a//b/c/aa", once)
	assert.Equal(t, once, MultipleReplace(params, once))
}

func TestMultipleReplaceSinglePass(t *testing.T) {
	// a value that looks like another placeholder is not expanded again
	got := MultipleReplace(map[string]string{"{a}": "{b}", "{b}": "x"}, "{a}-{b}")
	assert.Equal(t, "{b}-x", got)
}

func TestMultipleReplaceEmpty(t *testing.T) {
	assert.Equal(t, "/x/{id}", MultipleReplace(nil, "/x/{id}"))
}

func TestFill(t *testing.T) {
	tmpl := Template{Template: objectByID, Type: "objectbyid", MediaType: "application/atom+xml;type=entry"}
	defaults := map[string]string{
		"id":                      "abc",
		"filter":                  "",
		"includeAllowableActions": "false",
		"includePolicyIds":        "false",
		"includeRelationships":    "false",
		"includeACL":              "false",
		"renditionFilter":         "",
	}

	u, extra := tmpl.Fill(defaults, map[string]string{
		"includeAllowableActions": "true",
		"returnVersion":           "latest",
	})

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "abc", parsed.Query().Get("noderef"))
	assert.Equal(t, "true", parsed.Query().Get("includeAllowableActions"))
	assert.Equal(t, "false", parsed.Query().Get("includeACL"))
	assert.Equal(t, url.Values{"returnVersion": {"latest"}}, extra)
}

func TestFillIncompleteTemplate(t *testing.T) {
	tmpl := Template{Template: "http://cmis.example/id/{id}"}
	u, extra := tmpl.Fill(map[string]string{"id": "42", "filter": ""}, map[string]string{"filter": "cmis:name"})
	assert.Equal(t, "http://cmis.example/id/42", u)
	assert.Equal(t, "cmis:name", extra.Get("filter"))
}

func TestAppendQuery(t *testing.T) {
	u, err := AppendQuery("http://cmis.example/children?maxItems=5", url.Values{"maxItems": {"10"}, "skipCount": {"20"}})
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "10", parsed.Query().Get("maxItems"))
	assert.Equal(t, "20", parsed.Query().Get("skipCount"))

	same, err := AppendQuery("http://cmis.example/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://cmis.example/x", same)
}

func TestAppendQuery_KeepsSemicolonIDs(t *testing.T) {
	tmpl := Template{Template: "http://cmis.example/id?id={id}&filter={filter}"}
	filled, extra := tmpl.Fill(
		map[string]string{"id": "workspace://SpacesStore/abc;1.0", "filter": ""},
		map[string]string{"returnVersion": "latest"},
	)

	u, err := AppendQuery(filled, extra)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "id=workspace://SpacesStore/abc;1.0&filter=&returnVersion=latest", parsed.RawQuery)
}
