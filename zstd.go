package storage_benchmark

import "github.com/klauspost/compress/zstd"

// Shared between goroutines, EncodeAll and DecodeAll are safe for concurrent use.
var (
	zstdDecoder *zstd.Decoder
	zstdEncoder *zstd.Encoder
)

func init() {
	var err error

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<30))
	if err != nil {
		panic(err)
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic(err)
	}
}
