//go:build !rocksdb

package storage_benchmark

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/fixtures"
)

func TestRocksDBStorageSystemUnavailable(t *testing.T) {
	constructor, err := NewSystemConstructor(fixtures.Context(t), SystemRocksDB, SystemOptions{
		Dir: fixtures.Directory(t, ""),
	})
	require.NoError(t, err)

	_, err = constructor(60)
	require.ErrorIs(t, err, ErrRocksDBUnavailable)
}
