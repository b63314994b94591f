//go:build integration

package storage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/campuskit/virtualta/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupArchive(t *testing.T) *SnapshotArchive {
	ctx := context.Background()

	mc := testutil.NewMinIOContainer(ctx, t)
	t.Cleanup(func() {
		if err := mc.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	archive, err := NewSnapshotArchive(ctx, SnapshotArchiveConfig{
		Endpoint:        mc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     mc.AccessKey,
		SecretAccessKey: mc.SecretKey,
		Bucket:          "virtualta-snapshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, archive.EnsureBucket(ctx))

	return archive
}

func TestSnapshotArchive_Archive(t *testing.T) {
	archive := setupArchive(t)
	ctx := context.Background()

	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshotPath, []byte(`[{"id":"d","type":"other","content":"c"}]`), 0o644))

	err := archive.Archive(ctx, snapshotPath)

	require.NoError(t, err)
}

func TestSnapshotArchive_Archive_MissingFile(t *testing.T) {
	archive := setupArchive(t)

	err := archive.Archive(context.Background(), filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read snapshot")
}

func TestSnapshotArchive_EnsureBucket_Idempotent(t *testing.T) {
	archive := setupArchive(t)

	// Calling again on an existing bucket must not fail.
	require.NoError(t, archive.EnsureBucket(context.Background()))
}

func TestSnapshotArchive_GenerateDownloadURL(t *testing.T) {
	archive := setupArchive(t)
	ctx := context.Background()

	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snapshotPath, []byte("[]"), 0o644))
	require.NoError(t, archive.Archive(ctx, snapshotPath))

	url, err := archive.GenerateDownloadURL(ctx, "snapshots/manual/snapshot.json")

	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "virtualta-snapshots"))
	assert.True(t, strings.Contains(url, "X-Amz-Signature"))

	// A presigned URL for a missing object is still signable; fetching it
	// returns 404 rather than an auth failure.
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
