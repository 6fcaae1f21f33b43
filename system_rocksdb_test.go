//go:build rocksdb

package storage_benchmark

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/fixtures"
)

func TestRocksDBStorageSystem(t *testing.T) {
	for _, compression := range []string{CodecNone, CodecSnappy, CodecZSTD} {
		t.Run(compression, func(t *testing.T) {
			ctx := fixtures.Context(t)

			system, err := NewRocksDBStorageSystem(fixtures.Directory(t, ""), compression)
			require.NoError(t, err)

			testStorageSystem(ctx, t, system)

			require.NoError(t, system.Sync())
			require.NoError(t, system.Close())
		})
	}
}
