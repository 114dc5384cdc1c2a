package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/salesdash/pkg/storage"
)

func TestLocalDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.json"), []byte(`[]`), 0o644))

	d := storage.NewLocalDisk(root)
	ctx := context.Background()

	got, err := d.Get(ctx, "data.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	n, err := d.Size(ctx, "data.json")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.True(t, d.Exists(ctx, "data.json"))
	assert.False(t, d.Exists(ctx, "missing.json"))

	_, err = d.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalDiskAbsolutePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "abs.json")
	require.NoError(t, os.WriteFile(file, []byte(`[1]`), 0o644))

	got, err := storage.NewLocalDisk("elsewhere").Get(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got))
}

func TestForURIRejectsMalformedS3(t *testing.T) {
	for _, uri := range []string{"s3://", "s3://bucket", "s3:///key"} {
		_, _, err := storage.ForURI(context.Background(), uri)
		assert.Error(t, err, uri)
	}
}

func TestForURILocal(t *testing.T) {
	d, path, err := storage.ForURI(context.Background(), "file://testdata/x.json")
	require.NoError(t, err)
	assert.Equal(t, "testdata/x.json", path)
	assert.IsType(t, &storage.LocalDisk{}, d)
}
