//go:build !rocksdb

package storage_benchmark

import "context"

// RocksDBAvailable reports whether the binary was built with the rocksdb tag.
const RocksDBAvailable = false

// RocksDBStorageSystem is a placeholder used when the binary is built
// without cgo bindings to librocksdb.
type RocksDBStorageSystem struct {
}

func NewRocksDBStorageSystem(dir string, compression string) (*RocksDBStorageSystem, error) {
	return nil, ErrRocksDBUnavailable
}

func (r *RocksDBStorageSystem) Put(ctx context.Context, key string, value []byte) error {
	return ErrRocksDBUnavailable
}

func (r *RocksDBStorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrRocksDBUnavailable
}

func (r *RocksDBStorageSystem) Close() error {
	return nil
}
