//go:build rocksdb

package storage_benchmark

import (
	"context"
	"os"

	"github.com/boreq/errors"
	"github.com/tecbot/gorocksdb"
)

const RocksDBAvailable = true

type RocksDBStorageSystem struct {
	db   *gorocksdb.DB
	opts *gorocksdb.Options
	ro   *gorocksdb.ReadOptions
	wo   *gorocksdb.WriteOptions
}

func NewRocksDBStorageSystem(dir string, compression string) (*RocksDBStorageSystem, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "error creating the database directory")
	}

	opts := gorocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)

	switch compression {
	case "", CodecNone:
		opts.SetCompression(gorocksdb.NoCompression)
	case CodecSnappy:
		opts.SetCompression(gorocksdb.SnappyCompression)
	case CodecZSTD:
		opts.SetCompression(gorocksdb.ZSTDCompression)
	default:
		opts.Destroy()
		return nil, errors.New("unknown compression: " + compression)
	}

	db, err := gorocksdb.OpenDb(opts, dir)
	if err != nil {
		opts.Destroy()
		return nil, errors.Wrap(err, "error opening the database")
	}

	return &RocksDBStorageSystem{
		db:   db,
		opts: opts,
		ro:   gorocksdb.NewDefaultReadOptions(),
		wo:   gorocksdb.NewDefaultWriteOptions(),
	}, nil
}

func (r *RocksDBStorageSystem) Put(ctx context.Context, key string, value []byte) error {
	if err := r.db.Put(r.wo, []byte(key), value); err != nil {
		return errors.Wrap(err, "error calling put")
	}
	return nil
}

func (r *RocksDBStorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	slice, err := r.db.Get(r.ro, []byte(key))
	if err != nil {
		return nil, errors.Wrap(err, "error calling get")
	}
	defer slice.Free()

	if !slice.Exists() {
		return nil, ErrKeyNotFound
	}

	// the slice memory belongs to rocksdb and is released by Free
	value := make([]byte, slice.Size())
	copy(value, slice.Data())
	return value, nil
}

func (r *RocksDBStorageSystem) Sync() error {
	fo := gorocksdb.NewDefaultFlushOptions()
	defer fo.Destroy()

	fo.SetWait(true)
	return r.db.Flush(fo)
}

func (r *RocksDBStorageSystem) Close() error {
	r.db.Close()
	r.ro.Destroy()
	r.wo.Destroy()
	r.opts.Destroy()
	return nil
}
