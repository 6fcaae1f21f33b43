package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/config"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/fixtures"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/report"
)

func TestRunBenchmarkWithLocalBackends(t *testing.T) {
	ctx := fixtures.Context(t)
	dir := fixtures.Directory(t, "")

	conf := config.Default()
	conf.Benchmark.Backends = []string{storagebenchmark.SystemBadger, storagebenchmark.SystemBolt}
	conf.Benchmark.FileSizesMB = []int{1, 2}
	conf.Benchmark.FileCount = 2
	conf.Benchmark.Readers = 2
	conf.Local.Dir = filepath.Join(dir, "data")
	conf.Local.Cleanup = true
	conf.Output.ImagesDir = filepath.Join(dir, "images")
	conf.Output.ResultsFile = filepath.Join(dir, "results", "results.json")
	require.NoError(t, conf.Validate())

	err := runBenchmark(ctx, conf, fixtures.Logger(t), false)
	require.NoError(t, err)

	results, err := report.LoadResults(conf.Output.ResultsFile)
	require.NoError(t, err)
	require.Len(t, results.Backends, 2)
	require.Equal(t, []int{1, 2}, results.Params.FileSizesMB)

	for _, name := range []string{
		"badger_results.png",
		"bbolt_results.png",
		"comparison_upload_time.png",
		"comparison_write_throughput.png",
		"comparison_read_throughput.png",
		"comparison_average_latency.png",
		"README.md",
	} {
		_, err := os.Stat(filepath.Join(conf.Output.ImagesDir, name))
		require.NoError(t, err, name)
	}

	_, err = os.Stat(storagebenchmark.SystemDirectory(conf.Local.Dir, storagebenchmark.SystemBadger, 1))
	require.True(t, os.IsNotExist(err), "databases should be removed")
}

func TestRunBenchmarkSavesCompletedBackendsOnFailure(t *testing.T) {
	if storagebenchmark.RocksDBAvailable {
		t.Skip("built with rocksdb support")
	}

	ctx := fixtures.Context(t)
	dir := fixtures.Directory(t, "")

	conf := config.Default()
	conf.Benchmark.Backends = []string{storagebenchmark.SystemBolt, storagebenchmark.SystemRocksDB}
	conf.Benchmark.FileSizesMB = []int{1}
	conf.Benchmark.FileCount = 2
	conf.Benchmark.Readers = 2
	conf.Local.Dir = filepath.Join(dir, "data")
	conf.Output.ImagesDir = filepath.Join(dir, "images")
	conf.Output.ResultsFile = filepath.Join(dir, "results.json")

	err := runBenchmark(ctx, conf, fixtures.Logger(t), false)
	require.ErrorIs(t, err, storagebenchmark.ErrRocksDBUnavailable)

	results, err := report.LoadResults(conf.Output.ResultsFile)
	require.NoError(t, err)
	require.Len(t, results.Backends, 1)
	require.Equal(t, storagebenchmark.SystemBolt, results.Backends[0].Backend)

	_, err = os.Stat(filepath.Join(conf.Output.ImagesDir, "bbolt_results.png"))
	require.NoError(t, err)
}

func TestRenderSingleBackendSkipsComparison(t *testing.T) {
	dir := fixtures.Directory(t, "")

	results := report.Results{
		Params: report.NewParams(storagebenchmark.DefaultParams()),
		Backends: []storagebenchmark.BackendResult{
			{
				Backend: storagebenchmark.SystemS3,
				Sizes: []storagebenchmark.SizeResult{
					{FileSizeMB: 60, FileCount: 5, UploadTime: 2, WriteThroughput: 150, ReadThroughput: 300, AvgReadLatency: 0.2},
					{FileSizeMB: 100, FileCount: 5, UploadTime: 3, WriteThroughput: 166, ReadThroughput: 350, AvgReadLatency: 0.3},
				},
			},
		},
	}

	err := render(results, dir, false, fixtures.Logger(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "s3_results.png", entries[0].Name())
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	app := kingpin.New("test", "")
	cmd := app.Command("run", "")
	flags := newRunFlags(cmd)

	_, err := app.Parse([]string{
		"run",
		"--backends", "rocksdb,badger",
		"--sizes", "1,2",
		"--files", "3",
		"--codec", "snappy",
		"--s3-bucket", "other-bucket",
		"--no-verify",
	})
	require.NoError(t, err)

	conf := config.Default()
	require.NoError(t, flags.apply(&conf))

	require.Equal(t, []string{"rocksdb", "badger"}, conf.Benchmark.Backends)
	require.Equal(t, []int{1, 2}, conf.Benchmark.FileSizesMB)
	require.Equal(t, 3, conf.Benchmark.FileCount)
	require.Equal(t, 5, conf.Benchmark.Readers)
	require.Equal(t, "snappy", conf.Local.Codec)
	require.Equal(t, "other-bucket", conf.S3.Bucket)
	require.Equal(t, "s3-benchmark-bucket", config.Default().S3.Bucket)
	require.False(t, conf.Benchmark.Verify)
}

func TestRunFlagsRejectInvalidSizes(t *testing.T) {
	app := kingpin.New("test", "")
	cmd := app.Command("run", "")
	flags := newRunFlags(cmd)

	_, err := app.Parse([]string{"run", "--sizes", "60,big"})
	require.NoError(t, err)

	conf := config.Default()
	require.Error(t, flags.apply(&conf))
}
