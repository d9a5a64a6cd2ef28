package cmislib_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmislib "github.com/cmislib/cmislib.go"
	"github.com/cmislib/cmislib.go/contrib/testenv"
)

// TestLiveRepository runs against the repository named by CMIS_URL and
// friends. It is skipped when none is configured.
func TestLiveRepository(t *testing.T) {
	repo := testenv.Repository(t)
	ctx := context.Background()

	id, err := repo.ID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	caps, err := repo.Capabilities(ctx)
	require.NoError(t, err)
	t.Logf("repository %s capabilities: %v", id, caps)

	folder := testenv.ScratchFolder(t, repo)

	sub, err := folder.CreateFolder(ctx, "sub", nil)
	require.NoError(t, err)
	doc, err := sub.CreateDocument(ctx, "hello.txt", nil, &cmislib.ContentFile{
		Name:   "hello.txt",
		Reader: strings.NewReader("hello, world"),
	})
	require.NoError(t, err)

	content, err := doc.ContentStream(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(content))

	path, err := folder.Name(ctx)
	require.NoError(t, err)
	byPath, err := repo.GetObjectByPath(ctx, "/"+path+"/sub/hello.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, cmislib.KindDocument, byPath.Kind())

	children, err := sub.Children(ctx, nil)
	require.NoError(t, err)
	n, err := children.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	parent, err := sub.Parent(ctx)
	require.NoError(t, err)
	parentName, err := parent.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, path, parentName)

	err = doc.UpdateProperties(ctx, map[string]any{"cmis:name": "renamed.txt"})
	require.NoError(t, err)
	name, err := doc.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", name)

	if caps["GetDescendants"] == true {
		rs, err := folder.Descendants(ctx, nil)
		require.NoError(t, err)
		all, err := rs.Results(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	}
}
