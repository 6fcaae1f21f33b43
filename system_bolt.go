package storage_benchmark

import (
	"context"
	"path"

	"github.com/boreq/errors"
	"go.etcd.io/bbolt"
)

var boltBucketName = []byte("values")

type BoltStorageSystem struct {
	db    *bbolt.DB
	codec Codec
}

func NewBoltStorageSystem(dir string, codec Codec, options *bbolt.Options) (*BoltStorageSystem, error) {
	f := path.Join(dir, "database.bolt")
	db, err := bbolt.Open(f, 0600, options)
	if err != nil {
		return nil, errors.Wrap(err, "error opening the database")
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "error creating the bucket")
	}

	return &BoltStorageSystem{db: db, codec: codec}, nil
}

func (b *BoltStorageSystem) Put(ctx context.Context, key string, value []byte) error {
	encoded, err := b.codec.Encode(value)
	if err != nil {
		return errors.Wrap(err, "error encoding the value")
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(boltBucketName).Put([]byte(key), encoded); err != nil {
			return errors.Wrap(err, "error calling put")
		}
		return nil
	})
}

func (b *BoltStorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	if err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(boltBucketName).Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound
		}

		// v is only valid for the life of the transaction
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	}); err != nil {
		return nil, err
	}

	return b.codec.Decode(value)
}

func (b *BoltStorageSystem) Close() error {
	return b.db.Close()
}

func (b *BoltStorageSystem) Sync() error {
	return b.db.Sync()
}
