package storage_benchmark

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/boreq/errors"
	"go.cryptoscope.co/margaret"
	"go.cryptoscope.co/margaret/offset2"
)

// MargaretStorageSystem stores values in an append-only offset log. The log
// is addressed by sequence so the key to sequence mapping lives in memory.
type MargaretStorageSystem struct {
	log *offset2.OffsetLog

	mutex     sync.RWMutex
	sequences map[string]int64
}

func NewMargaretStorageSystem(dir string, codec Codec) (*MargaretStorageSystem, error) {
	log, err := offset2.Open(dir, newMargaretCodec(codec))
	if err != nil {
		return nil, errors.Wrap(err, "error calling open")
	}

	return &MargaretStorageSystem{
		log:       log,
		sequences: make(map[string]int64),
	}, nil
}

func (m *MargaretStorageSystem) Put(ctx context.Context, key string, value []byte) error {
	seq, err := m.log.Append(value)
	if err != nil {
		return errors.Wrap(err, "error calling append")
	}

	m.mutex.Lock()
	m.sequences[key] = seq
	m.mutex.Unlock()

	return nil
}

func (m *MargaretStorageSystem) Get(ctx context.Context, key string) ([]byte, error) {
	m.mutex.RLock()
	seq, ok := m.sequences[key]
	m.mutex.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}

	v, err := m.log.Get(seq)
	if err != nil {
		return nil, errors.Wrap(err, "error calling get")
	}

	value, ok := v.([]byte)
	if !ok {
		return nil, errors.New("log returned a value which is not a byte slice")
	}

	return value, nil
}

func (m *MargaretStorageSystem) Close() error {
	return m.log.Close()
}

type margaretCodec struct {
	codec Codec
}

func newMargaretCodec(codec Codec) *margaretCodec {
	return &margaretCodec{codec: codec}
}

func (m margaretCodec) Marshal(value interface{}) ([]byte, error) {
	return m.codec.Encode(value.([]byte))
}

func (m margaretCodec) Unmarshal(data []byte) (interface{}, error) {
	return m.codec.Decode(data)
}

func (m margaretCodec) NewDecoder(reader io.Reader) margaret.Decoder {
	return newMargaretDecoder(reader, m.codec)
}

func (m margaretCodec) NewEncoder(writer io.Writer) margaret.Encoder {
	return newMargaretEncoder(writer, m.codec)
}

type margaretEncoder struct {
	w     io.Writer
	codec Codec
}

func newMargaretEncoder(w io.Writer, codec Codec) margaretEncoder {
	return margaretEncoder{w: w, codec: codec}
}

func (enc margaretEncoder) Encode(v interface{}) error {
	b, err := enc.codec.Encode(v.([]byte))
	if err != nil {
		return errors.Wrap(err, "error encoding the value")
	}
	_, err = io.Copy(enc.w, bytes.NewReader(b))
	return err
}

type margaretDecoder struct {
	r     io.Reader
	codec Codec
}

func newMargaretDecoder(r io.Reader, codec Codec) margaretDecoder {
	return margaretDecoder{r: r, codec: codec}
}

func (dec margaretDecoder) Decode() (interface{}, error) {
	b, err := io.ReadAll(dec.r)
	if err != nil {
		return nil, err
	}
	return dec.codec.Decode(b)
}
