package storage_benchmark

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateData(t *testing.T) {
	for _, kind := range []string{DataRandom, DataCompressible} {
		t.Run(kind, func(t *testing.T) {
			a, err := GenerateData(kind, bytesInMB+1)
			require.NoError(t, err)
			require.Len(t, a, bytesInMB+1)

			b, err := GenerateData(kind, bytesInMB+1)
			require.NoError(t, err)
			require.NotEqual(t, a, b)
		})
	}

	_, err := GenerateData("zeros", 10)
	require.Error(t, err)
}

func TestNewKey(t *testing.T) {
	key := NewKey()

	parsed, err := uuid.Parse(key)
	require.NoError(t, err)
	require.Equal(t, uuid.Version(4), parsed.Version())
	require.NotEqual(t, key, NewKey())
}
