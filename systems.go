package storage_benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boreq/errors"
)

const (
	SystemS3       = "s3"
	SystemRocksDB  = "rocksdb"
	SystemBadger   = "badger"
	SystemBolt     = "bbolt"
	SystemMargaret = "margaret"
)

var Systems = []string{
	SystemS3,
	SystemRocksDB,
	SystemBadger,
	SystemBolt,
	SystemMargaret,
}

type SystemOptions struct {
	// Dir is the parent directory of local databases. Every file size gets
	// its own database in a subdirectory named <system>_benchmark_<size>MB.
	Dir string

	// Codec is the value codec of local systems. For rocksdb it selects the
	// native block compression instead.
	Codec string

	S3 S3Config
}

// NewSystemConstructor returns a constructor which opens a fresh instance of
// the named system for every file size.
func NewSystemConstructor(ctx context.Context, name string, options SystemOptions) (SystemConstructor, error) {
	switch name {
	case SystemS3:
		return func(fileSizeMB int) (StorageSystem, error) {
			return NewS3StorageSystem(ctx, options.S3)
		}, nil
	case SystemRocksDB:
		return func(fileSizeMB int) (StorageSystem, error) {
			return NewRocksDBStorageSystem(SystemDirectory(options.Dir, name, fileSizeMB), options.Codec)
		}, nil
	case SystemBadger, SystemBolt, SystemMargaret:
		codec, err := NewCodec(options.Codec)
		if err != nil {
			return nil, errors.Wrap(err, "error creating the codec")
		}

		return func(fileSizeMB int) (StorageSystem, error) {
			dir := SystemDirectory(options.Dir, name, fileSizeMB)
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, errors.Wrap(err, "error creating the database directory")
			}
			return openLocalSystem(name, dir, codec)
		}, nil
	default:
		return nil, errors.Wrap(ErrUnknownSystem, name)
	}
}

func openLocalSystem(name, dir string, codec Codec) (StorageSystem, error) {
	switch name {
	case SystemBadger:
		return NewBadgerStorageSystem(dir, codec, nil)
	case SystemBolt:
		return NewBoltStorageSystem(dir, codec, nil)
	case SystemMargaret:
		return NewMargaretStorageSystem(dir, codec)
	default:
		return nil, errors.Wrap(ErrUnknownSystem, name)
	}
}

func SystemDirectory(parent, name string, fileSizeMB int) string {
	return filepath.Join(parent, fmt.Sprintf("%s_benchmark_%dMB", name, fileSizeMB))
}
