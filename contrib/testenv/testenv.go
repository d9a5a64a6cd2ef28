// Package testenv connects tests to a live CMIS repository.
//
// The repository is described by the same settings the cmis command uses:
// an optional YAML file named by CMIS_CONFIG, overlaid with CMIS_URL,
// CMIS_USERNAME, CMIS_PASSWORD and CMIS_REPOSITORY. Tests that call
// Repository are skipped when no service URL is configured.
package testenv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	cmislib "github.com/cmislib/cmislib.go"
	"github.com/cmislib/cmislib.go/internal/rand"
	"github.com/cmislib/cmislib.go/pkg/config"
)

// ErrNotConfigured is returned by New when no service URL is set.
var ErrNotConfigured = errors.New("testenv: " + config.EnvURL + " is not set")

// New returns a client and repository for the configured service.
func New(ctx context.Context) (*cmislib.Client, *cmislib.Repository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.URL == "" {
		return nil, nil, ErrNotConfigured
	}
	conf, err := cfg.Connection()
	if err != nil {
		return nil, nil, err
	}
	client := cmislib.FromConfig(conf)

	var repo *cmislib.Repository
	if cfg.Repository != "" {
		repo, err = client.GetRepository(ctx, cfg.Repository)
	} else {
		repo, err = client.GetDefaultRepository(ctx)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("testenv: opening repository: %w", err)
	}
	return client, repo, nil
}

// Repository returns the configured repository or skips t.
func Repository(t testing.TB) *cmislib.Repository {
	t.Helper()
	_, repo, err := New(context.Background())
	if errors.Is(err, ErrNotConfigured) {
		t.Skipf("skipping: %v", err)
	}
	if err != nil {
		t.Fatalf("testenv: %v", err)
	}
	return repo
}

// ScratchFolder creates a uniquely named folder under the root folder of
// repo and deletes it, with everything below it, when t finishes.
func ScratchFolder(t testing.TB, repo *cmislib.Repository) *cmislib.Folder {
	t.Helper()
	ctx := context.Background()

	root, err := repo.RootFolder(ctx)
	if err != nil {
		t.Fatalf("testenv: root folder: %v", err)
	}
	name := rand.Name("cmislib-test-", 10)
	folder, err := root.CreateFolder(ctx, name, nil)
	if err != nil {
		t.Fatalf("testenv: creating %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := folder.DeleteTree(context.Background(), cmislib.Options{"continueOnFailure": true}); err != nil {
			t.Logf("testenv: deleting %s: %v", name, err)
		}
	})
	return folder
}
