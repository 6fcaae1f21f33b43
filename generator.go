package storage_benchmark

import (
	"crypto/rand"
	mathrand "math/rand"

	"github.com/boreq/errors"
	"github.com/google/uuid"
)

const (
	// DataRandom is incompressible data, the same as os.urandom.
	DataRandom = "random"

	// DataCompressible repeats a short random block which every codec
	// shrinks to a fraction of its size.
	DataCompressible = "compressible"
)

const compressibleBlockSize = 4096

func GenerateData(kind string, size int) ([]byte, error) {
	switch kind {
	case "", DataRandom:
		b := make([]byte, size)
		if _, err := rand.Read(b); err != nil {
			return nil, errors.Wrap(err, "error reading random bytes")
		}
		return b, nil
	case DataCompressible:
		block := make([]byte, compressibleBlockSize)
		mathrand.Read(block)

		b := make([]byte, size)
		for i := 0; i < size; i += compressibleBlockSize {
			copy(b[i:], block)
		}
		return b, nil
	default:
		return nil, errors.New("unknown data kind: " + kind)
	}
}

func NewKey() string {
	return uuid.NewString()
}
