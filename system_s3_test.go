package storage_benchmark

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/fixtures"
)

// Runs against LocalStack or any other S3-compatible endpoint, e.g.
// S3_ENDPOINT=http://localhost:4566 go test -run S3 .
func TestS3StorageSystem(t *testing.T) {
	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_ENDPOINT is not set")
	}

	ctx := fixtures.Context(t)

	cfg := DefaultS3Config()
	cfg.Endpoint = endpoint
	cfg.Bucket = "storage-benchmark-test"

	system, err := NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	// creating the bucket twice must not fail
	_, err = NewS3StorageSystem(ctx, cfg)
	require.NoError(t, err)

	testStorageSystem(ctx, t, system)

	t.Run("multipart", func(t *testing.T) {
		key := NewKey()
		value := fixtures.RandomBytes(3*MinS3PartSize + 1)

		require.NoError(t, system.Put(ctx, key, value))

		retrieved, err := system.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, value, retrieved)
	})

	require.NoError(t, system.Close())
}

func TestNewS3StorageSystemValidatesConfig(t *testing.T) {
	ctx := fixtures.Context(t)

	cfg := DefaultS3Config()
	cfg.Bucket = ""
	_, err := NewS3StorageSystem(ctx, cfg)
	require.Error(t, err)

	cfg = DefaultS3Config()
	cfg.PartSize = 1024
	_, err = NewS3StorageSystem(ctx, cfg)
	require.Error(t, err)
}
