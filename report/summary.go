package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/boreq/errors"
	"github.com/dustin/go-humanize"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
)

// WriteSizeSummary prints the measurements of a single file size the same
// way for every backend.
func WriteSizeSummary(w io.Writer, result storagebenchmark.SizeResult) error {
	_, err := fmt.Fprintf(w,
		"File Size: %d MB\n"+
			"Upload Time: %.5f seconds\n"+
			"Write Throughput: %.5f MB/s\n"+
			"Read Throughput: %.5f MB/s\n"+
			"Average Latency: %.5f seconds\n",
		result.FileSizeMB,
		result.UploadTime,
		result.WriteThroughput,
		result.ReadThroughput,
		result.AvgReadLatency,
	)
	return err
}

func WriteBackendSummary(w io.Writer, result storagebenchmark.BackendResult) error {
	if _, err := fmt.Fprintf(w, "Results for %s\n", result.Backend); err != nil {
		return err
	}

	for _, size := range result.Sizes {
		if err := WriteSizeSummary(w, size); err != nil {
			return errors.Wrap(err, "error writing size summary")
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}

// Image returns the file name of the results grid of a backend.
func Image(backend string) string {
	return fmt.Sprintf("%s_results.png", backend)
}

func ComparisonImage(metric string) string {
	return fmt.Sprintf("comparison_%s.png", metric)
}

type ReadmeImage struct {
	Title string
	Path  string
}

// WriteReadme writes a Markdown document with a table per backend and links
// to the rendered images.
func WriteReadme(w io.Writer, results Results, images []ReadmeImage) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString("# Results\n")
	buf.WriteString("```\n")
	buf.WriteString(fmt.Sprintf("file_sizes_mb=%v\n", results.Params.FileSizesMB))
	buf.WriteString(fmt.Sprintf("file_count=%d\n", results.Params.FileCount))
	buf.WriteString(fmt.Sprintf("readers=%d\n", results.Params.Readers))
	buf.WriteString(fmt.Sprintf("data_kind=%s\n", results.Params.DataKind))
	buf.WriteString(fmt.Sprintf("verify=%t\n", results.Params.Verify))
	buf.WriteString("```\n")

	for _, backend := range results.Backends {
		buf.WriteString(fmt.Sprintf("## %s\n", backend.Backend))
		buf.WriteString("| File size | Written | Upload time (s) | Write throughput (MB/s) | Read throughput (MB/s) | Avg latency (s) | P95 latency (s) |\n")
		buf.WriteString("|---|---|---|---|---|---|---|\n")
		for _, size := range backend.Sizes {
			buf.WriteString(fmt.Sprintf("| %d MB | %s | %.5f | %.5f | %.5f | %.5f | %.5f |\n",
				size.FileSizeMB,
				humanize.IBytes(uint64(size.Bytes)),
				size.UploadTime,
				size.WriteThroughput,
				size.ReadThroughput,
				size.AvgReadLatency,
				size.P95ReadLatency,
			))
		}
	}

	for _, image := range images {
		buf.WriteString(fmt.Sprintf("### %s\n", image.Title))
		buf.WriteString(fmt.Sprintf("![](./%s)\n", image.Path))
	}

	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "error writing the readme")
	}

	return nil
}

// Fastest returns backend names ordered by descending read throughput at the
// given file size. Backends which did not run that size are skipped.
func Fastest(results Results, fileSizeMB int) []string {
	type entry struct {
		name       string
		throughput float64
	}

	var entries []entry
	for _, backend := range results.Backends {
		for _, size := range backend.Sizes {
			if size.FileSizeMB == fileSizeMB {
				entries = append(entries, entry{name: backend.Backend, throughput: size.ReadThroughput})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].throughput > entries[j].throughput
	})

	var names []string
	for _, e := range entries {
		names = append(names, e.name)
	}
	return names
}
