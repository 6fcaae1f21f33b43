package storage_benchmark

import (
	"context"

	"github.com/boreq/errors"
	"github.com/dgraph-io/badger/v4"
)

type BadgerStorageSystem struct {
	db    *badger.DB
	codec Codec
}

func NewBadgerStorageSystem(dir string, codec Codec, fn func(*badger.Options)) (*BadgerStorageSystem, error) {
	opt := badger.
		DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	if fn != nil {
		fn(&opt)
	}

	db, err := badger.Open(opt)
	if err != nil {
		return nil, errors.Wrap(err, "error opening the database")
	}

	return &BadgerStorageSystem{db: db, codec: codec}, nil
}

func (b *BadgerStorageSystem) Put(ctx context.Context, key string, value []byte) error {
	encoded, err := b.codec.Encode(value)
	if err != nil {
		return errors.Wrap(err, "error encoding the value")
	}

	return b.db.Update(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(key), encoded); err != nil {
			return errors.Wrap(err, "error calling set")
		}
		return nil
	})
}

func (b *BadgerStorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	if err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return errors.Wrap(err, "error calling get")
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return errors.Wrap(err, "error calling value copy")
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return b.codec.Decode(value)
}

func (b *BadgerStorageSystem) Close() error {
	return b.db.Close()
}

func (b *BadgerStorageSystem) Sync() error {
	return b.db.Sync()
}
