package testenv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmislib/cmislib.go/internal/fakecmis"
	"github.com/cmislib/cmislib.go/pkg/config"
)

func TestNew_NotConfigured(t *testing.T) {
	for _, k := range []string{config.EnvConfig, config.EnvURL} {
		t.Setenv(k, "")
	}
	_, _, err := New(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_FromEnv(t *testing.T) {
	server := fakecmis.NewServer()
	server.Username, server.Password = "admin", "secret"
	server.AddRepository("repo-2", "Archive")
	server.Start()
	defer server.Close()

	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvURL, server.ServiceURL())
	t.Setenv(config.EnvUsername, "admin")
	t.Setenv(config.EnvPassword, "secret")
	t.Setenv(config.EnvRepository, "repo-2")

	client, repo, err := New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", client.Username)
	id, err := repo.ID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "repo-2", id)

	t.Setenv(config.EnvRepository, "missing")
	_, _, err = New(context.Background())
	require.Error(t, err)
}

func TestScratchFolder(t *testing.T) {
	server := fakecmis.NewServer()
	server.Start()
	defer server.Close()

	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvURL, server.ServiceURL())
	t.Setenv(config.EnvUsername, "")
	t.Setenv(config.EnvRepository, "")

	var folderID string
	t.Run("scratch", func(t *testing.T) {
		repo := Repository(t)
		folder := ScratchFolder(t, repo)
		var err error
		folderID, err = folder.ID(context.Background())
		require.NoError(t, err)
		require.NotNil(t, server.Repository("repo-1").Object(folderID))
	})
	assert.Nil(t, server.Repository("repo-1").Object(folderID))
}
