package progress

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarCountsBytes(t *testing.T) {
	bar := NewBar(io.Discard, Total([]int{1}, 2))

	bar.OnPut("s3", 1, 1024*1024, time.Second)
	bar.OnPut("s3", 1, 1024*1024, time.Second)
	bar.OnGet("s3", 1, 1024*1024, time.Second)
	bar.Finish()

	require.Equal(t, int64(3*1024*1024), bar.Current())
	require.Equal(t, int64(4*1024*1024), bar.Total())
}

func TestTotal(t *testing.T) {
	require.Equal(t, int64(2*5*(60+100)*1024*1024), Total([]int{60, 100}, 5))
	require.Zero(t, Total(nil, 5))
}
