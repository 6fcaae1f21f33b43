package storage_benchmark

import (
	"github.com/boreq/errors"
	"github.com/golang/snappy"
)

const (
	CodecNone   = "none"
	CodecSnappy = "snappy"
	CodecZSTD   = "zstd"
)

// Codec transforms values on their way into and out of a local store.
type Codec interface {
	Encode(value []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case "", CodecNone:
		return NewNoopCodec(), nil
	case CodecSnappy:
		return NewSnappyCodec(), nil
	case CodecZSTD:
		return NewZSTDCodec(), nil
	default:
		return nil, errors.New("unknown codec: " + name)
	}
}

type NoopCodec struct {
}

func NewNoopCodec() *NoopCodec {
	return &NoopCodec{}
}

func (n NoopCodec) Encode(value []byte) ([]byte, error) {
	return value, nil
}

func (n NoopCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

type SnappyCodec struct {
}

func NewSnappyCodec() *SnappyCodec {
	return &SnappyCodec{}
}

func (s SnappyCodec) Encode(value []byte) ([]byte, error) {
	return snappy.Encode(nil, value), nil
}

func (s SnappyCodec) Decode(data []byte) ([]byte, error) {
	v, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "error calling snappy decode")
	}
	return v, nil
}

type ZSTDCodec struct {
}

func NewZSTDCodec() *ZSTDCodec {
	return &ZSTDCodec{}
}

func (z ZSTDCodec) Encode(value []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(value, nil), nil
}

func (z ZSTDCodec) Decode(data []byte) ([]byte, error) {
	v, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error calling zstd decode")
	}
	return v, nil
}
