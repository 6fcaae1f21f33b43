// Package progress displays the number of bytes transferred during a
// benchmark run.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

const template = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// Bar counts the bytes written and read by the harness. It implements the
// harness observer.
type Bar struct {
	*pb.ProgressBar
}

// NewBar starts a bar expecting total bytes. Every file is written and read
// once so the total of a backend is twice the number of bytes generated for
// it, see Total.
func NewBar(w io.Writer, total int64) *Bar {
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetWriter(w)
	bar.SetRefreshRate(time.Millisecond * 125)
	bar.SetTemplateString(template)
	bar.Set(pb.Bytes, true)
	bar.Start()

	return &Bar{ProgressBar: bar}
}

// Total returns the number of bytes transferred while benchmarking the given
// sizes.
func Total(fileSizesMB []int, fileCount int) int64 {
	var total int64
	for _, size := range fileSizesMB {
		total += 2 * int64(fileCount) * int64(size) * 1024 * 1024
	}
	return total
}

func (b *Bar) SetCaption(caption string) *Bar {
	b.ProgressBar.Set("prefix", caption)
	return b
}

func (b *Bar) OnPut(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	b.SetCaption(fmt.Sprintf("%s: writing %d MB", backend, fileSizeMB))
	b.Add(bytes)
}

func (b *Bar) OnGet(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	b.SetCaption(fmt.Sprintf("%s: reading %d MB", backend, fileSizeMB))
	b.Add(bytes)
}
