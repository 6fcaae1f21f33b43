// Package config loads benchmark settings from a YAML file. Values missing
// from the file keep their defaults, which reproduce the S3 vs RocksDB
// benchmark: five files of each of 60, 100, 140, 180 and 220 MB read back by
// five goroutines.
package config

import (
	"os"
	"strings"

	"github.com/boreq/errors"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
	"gopkg.in/yaml.v2"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	S3        S3Config        `yaml:"s3"`
	Local     LocalConfig     `yaml:"local"`
	Output    OutputConfig    `yaml:"output"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type BenchmarkConfig struct {
	Backends    []string `yaml:"backends"`
	FileSizesMB []int    `yaml:"file_sizes_mb"`
	FileCount   int      `yaml:"file_count"`
	Readers     int      `yaml:"readers"`
	RateLimit   float64  `yaml:"rate_limit"`
	DataKind    string   `yaml:"data_kind"`
	Verify      bool     `yaml:"verify"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style"`

	// PartSize is a human readable size such as "5MiB".
	PartSize        string `yaml:"part_size"`
	PartConcurrency int    `yaml:"part_concurrency"`
}

type LocalConfig struct {
	Dir   string `yaml:"dir"`
	Codec string `yaml:"codec"`

	// Cleanup removes the database directories once a backend finishes.
	Cleanup bool `yaml:"cleanup"`
}

type OutputConfig struct {
	ImagesDir   string `yaml:"images_dir"`
	ResultsFile string `yaml:"results_file"`
	Readme      bool   `yaml:"readme"`
}

type MetricsConfig struct {
	// Address serves Prometheus metrics during a run, empty disables it.
	Address string `yaml:"address"`
}

func Default() Config {
	params := storagebenchmark.DefaultParams()
	s3 := storagebenchmark.DefaultS3Config()

	return Config{
		LogLevel: logrus.InfoLevel.String(),
		Benchmark: BenchmarkConfig{
			Backends:    []string{storagebenchmark.SystemS3, storagebenchmark.SystemRocksDB},
			FileSizesMB: params.FileSizesMB,
			FileCount:   params.FileCount,
			Readers:     params.Readers,
			RateLimit:   params.RateLimit,
			DataKind:    params.DataKind,
			Verify:      params.Verify,
		},
		S3: S3Config{
			Endpoint:        s3.Endpoint,
			Region:          s3.Region,
			Bucket:          s3.Bucket,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			ForcePathStyle:  s3.ForcePathStyle,
			PartSize:        humanize.IBytes(uint64(s3.PartSize)),
			PartConcurrency: s3.PartConcurrency,
		},
		Local: LocalConfig{
			Dir:   ".",
			Codec: storagebenchmark.CodecNone,
		},
		Output: OutputConfig{
			ImagesDir:   "images",
			ResultsFile: "results/results.json",
			Readme:      true,
		},
	}
}

// Load reads the file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "error reading the config file")
	}

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return Config{}, errors.Wrap(err, "error unmarshaling the config file")
	}

	return config, nil
}

func Save(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling the config")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "error writing the config file")
	}

	return nil
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	if len(c.Benchmark.Backends) == 0 {
		return errors.New("at least one backend is required")
	}

	seen := make(map[string]bool)
	for _, backend := range c.Benchmark.Backends {
		if !isKnownSystem(backend) {
			return errors.Wrap(storagebenchmark.ErrUnknownSystem, backend)
		}
		if backend == storagebenchmark.SystemRocksDB && !storagebenchmark.RocksDBAvailable {
			return storagebenchmark.ErrRocksDBUnavailable
		}
		if seen[backend] {
			return errors.New("duplicate backend: " + backend)
		}
		seen[backend] = true
	}

	if err := c.Params().Validate(); err != nil {
		return errors.Wrap(err, "invalid benchmark section")
	}

	if _, err := c.SystemOptions(); err != nil {
		return errors.Wrap(err, "invalid storage options")
	}

	if c.Output.ImagesDir == "" {
		return errors.New("images directory can't be empty")
	}

	if c.Output.ResultsFile == "" {
		return errors.New("results file can't be empty")
	}

	return nil
}

func (c Config) Params() storagebenchmark.Params {
	return storagebenchmark.Params{
		FileSizesMB: c.Benchmark.FileSizesMB,
		FileCount:   c.Benchmark.FileCount,
		Readers:     c.Benchmark.Readers,
		RateLimit:   c.Benchmark.RateLimit,
		DataKind:    c.Benchmark.DataKind,
		Verify:      c.Benchmark.Verify,
	}
}

func (c Config) SystemOptions() (storagebenchmark.SystemOptions, error) {
	partSize, err := humanize.ParseBytes(c.S3.PartSize)
	if err != nil {
		return storagebenchmark.SystemOptions{}, errors.Wrap(err, "invalid part size")
	}

	if partSize < storagebenchmark.MinS3PartSize {
		return storagebenchmark.SystemOptions{}, errors.New("part size must be at least " + humanize.IBytes(storagebenchmark.MinS3PartSize))
	}

	if c.S3.PartConcurrency < 0 {
		return storagebenchmark.SystemOptions{}, errors.New("part concurrency can't be negative")
	}

	if _, err := storagebenchmark.NewCodec(c.Local.Codec); err != nil {
		return storagebenchmark.SystemOptions{}, errors.Wrap(err, "invalid codec")
	}

	return storagebenchmark.SystemOptions{
		Dir:   c.Local.Dir,
		Codec: c.Local.Codec,
		S3: storagebenchmark.S3Config{
			Endpoint:        c.S3.Endpoint,
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			ForcePathStyle:  c.S3.ForcePathStyle,
			PartSize:        int(partSize),
			PartConcurrency: c.S3.PartConcurrency,
		},
	}, nil
}

// ParseList splits a comma separated flag value, empty elements are
// dropped.
func ParseList(s string) []string {
	var v []string
	for _, element := range strings.Split(s, ",") {
		if element = strings.TrimSpace(element); element != "" {
			v = append(v, element)
		}
	}
	return v
}

func isKnownSystem(name string) bool {
	for _, system := range storagebenchmark.Systems {
		if system == name {
			return true
		}
	}
	return false
}
