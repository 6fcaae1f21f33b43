package main

import (
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/boreq/errors"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/config"
)

// runFlags override values loaded from the config file. Flags which were not
// given leave the config untouched.
type runFlags struct {
	backends   *string
	sizes      *string
	files      *int
	readers    *int
	rateLimit  *float64
	dataKind   *string
	noVerify   *bool
	noProgress *bool

	dir     *string
	codec   *string
	cleanup *bool

	s3Endpoint        *string
	s3Region          *string
	s3Bucket          *string
	s3AccessKeyID     *string
	s3SecretAccessKey *string
	s3PartSize        *string
	s3PartConcurrency *int

	imagesDir   *string
	resultsFile *string
	metricsAddr *string
}

func newRunFlags(cmd *kingpin.CmdClause) *runFlags {
	return &runFlags{
		backends:   cmd.Flag("backends", "Comma separated backends (s3, rocksdb, badger, bbolt, margaret).").Short('b').Envar("BENCH_BACKENDS").String(),
		sizes:      cmd.Flag("sizes", "Comma separated file sizes in MB.").Envar("BENCH_FILE_SIZES_MB").String(),
		files:      cmd.Flag("files", "Number of files per size.").Envar("BENCH_FILE_COUNT").Int(),
		readers:    cmd.Flag("readers", "Number of goroutines reading the files back.").Envar("BENCH_READERS").Int(),
		rateLimit:  cmd.Flag("rate-limit", "Maximum number of operations per second.").Envar("BENCH_RATE_LIMIT").Float64(),
		dataKind:   cmd.Flag("data", "Generated data (random, compressible).").Envar("BENCH_DATA").String(),
		noVerify:   cmd.Flag("no-verify", "Skip checksum verification of read values.").Bool(),
		noProgress: cmd.Flag("no-progress", "Don't display the progress bar.").Bool(),

		dir:     cmd.Flag("dir", "Parent directory of local databases.").Envar("BENCH_DIR").String(),
		codec:   cmd.Flag("codec", "Value codec of local databases (none, snappy, zstd).").Envar("BENCH_CODEC").String(),
		cleanup: cmd.Flag("cleanup", "Remove local databases once a backend finishes.").Bool(),

		s3Endpoint:        cmd.Flag("s3-endpoint", "S3 endpoint.").Envar("S3_ENDPOINT").String(),
		s3Region:          cmd.Flag("s3-region", "S3 region.").Envar("AWS_REGION").String(),
		s3Bucket:          cmd.Flag("s3-bucket", "S3 bucket, created if it doesn't exist.").Envar("S3_BUCKET").String(),
		s3AccessKeyID:     cmd.Flag("s3-access-key-id", "S3 access key ID.").Envar("AWS_ACCESS_KEY_ID").String(),
		s3SecretAccessKey: cmd.Flag("s3-secret-access-key", "S3 secret access key.").Envar("AWS_SECRET_ACCESS_KEY").String(),
		s3PartSize:        cmd.Flag("s3-part-size", "Multipart upload part size, e.g. 5MiB.").Envar("S3_PART_SIZE").String(),
		s3PartConcurrency: cmd.Flag("s3-part-concurrency", "Parts uploaded at the same time, 0 uploads all parts at once.").Envar("S3_PART_CONCURRENCY").Int(),

		imagesDir:   cmd.Flag("images-dir", "Directory the images are written to.").String(),
		resultsFile: cmd.Flag("results", "Path of the JSON results file.").String(),
		metricsAddr: cmd.Flag("metrics-addr", "Serve Prometheus metrics on this address during the run.").Envar("BENCH_METRICS_ADDR").String(),
	}
}

func (f *runFlags) apply(conf *config.Config) error {
	if *f.backends != "" {
		conf.Benchmark.Backends = config.ParseList(*f.backends)
	}

	if *f.sizes != "" {
		var sizes []int
		for _, s := range config.ParseList(*f.sizes) {
			size, err := strconv.Atoi(s)
			if err != nil {
				return errors.Wrap(err, "invalid file size")
			}
			sizes = append(sizes, size)
		}
		conf.Benchmark.FileSizesMB = sizes
	}

	setInt(&conf.Benchmark.FileCount, *f.files)
	setInt(&conf.Benchmark.Readers, *f.readers)
	setInt(&conf.S3.PartConcurrency, *f.s3PartConcurrency)

	if *f.rateLimit > 0 {
		conf.Benchmark.RateLimit = *f.rateLimit
	}

	if *f.noVerify {
		conf.Benchmark.Verify = false
	}

	if *f.cleanup {
		conf.Local.Cleanup = true
	}

	setString(&conf.Benchmark.DataKind, *f.dataKind)
	setString(&conf.Local.Dir, *f.dir)
	setString(&conf.Local.Codec, *f.codec)
	setString(&conf.S3.Endpoint, *f.s3Endpoint)
	setString(&conf.S3.Region, *f.s3Region)
	setString(&conf.S3.Bucket, *f.s3Bucket)
	setString(&conf.S3.AccessKeyID, *f.s3AccessKeyID)
	setString(&conf.S3.SecretAccessKey, *f.s3SecretAccessKey)
	setString(&conf.S3.PartSize, *f.s3PartSize)
	setString(&conf.Output.ImagesDir, *f.imagesDir)
	setString(&conf.Output.ResultsFile, *f.resultsFile)
	setString(&conf.Metrics.Address, *f.metricsAddr)

	return nil
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setInt(target *int, value int) {
	if value != 0 {
		*target = value
	}
}
