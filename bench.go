package storage_benchmark

import (
	"context"

	"github.com/boreq/errors"
)

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrUnknownSystem      = errors.New("unknown storage system")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrRocksDBUnavailable = errors.New("binary was built without rocksdb support, rebuild with -tags rocksdb")
)

// StorageSystem is a backend under test. Implementations must be safe for
// concurrent use by the readers.
type StorageSystem interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Syncer is implemented by systems which buffer writes. Sync is called after
// the upload phase so that reads observe durable data.
type Syncer interface {
	Sync() error
}

type SystemConstructor func(fileSizeMB int) (StorageSystem, error)

func syncSystem(system StorageSystem) error {
	if s, ok := system.(Syncer); ok {
		return s.Sync()
	}
	return nil
}
