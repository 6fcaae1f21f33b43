package storage_benchmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boreq/errors"
	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var DefaultFileSizesMB = []int{60, 100, 140, 180, 220}

const (
	DefaultFileCount = 5
	DefaultReaders   = 5
)

type Params struct {
	FileSizesMB []int

	// FileCount is the number of files written and read for every size.
	FileCount int

	// Readers is the number of goroutines reading the files back.
	Readers int

	// RateLimit caps operations per second across all goroutines, zero
	// disables the limiter.
	RateLimit float64

	DataKind string

	// Verify compares the checksum of every value read with the value
	// written.
	Verify bool
}

func DefaultParams() Params {
	sizes := make([]int, len(DefaultFileSizesMB))
	copy(sizes, DefaultFileSizesMB)

	return Params{
		FileSizesMB: sizes,
		FileCount:   DefaultFileCount,
		Readers:     DefaultReaders,
		DataKind:    DataRandom,
		Verify:      true,
	}
}

func (p Params) Validate() error {
	if len(p.FileSizesMB) == 0 {
		return errors.New("at least one file size is required")
	}

	for _, size := range p.FileSizesMB {
		if size <= 0 {
			return errors.New("file sizes must be positive")
		}
	}

	if p.FileCount <= 0 {
		return errors.New("file count must be positive")
	}

	if p.Readers <= 0 {
		return errors.New("number of readers must be positive")
	}

	if p.RateLimit < 0 {
		return errors.New("rate limit can't be negative")
	}

	switch p.DataKind {
	case "", DataRandom, DataCompressible:
	default:
		return errors.New("unknown data kind: " + p.DataKind)
	}

	return nil
}

// Observer is notified about every completed operation.
type Observer interface {
	OnPut(backend string, fileSizeMB int, bytes int, elapsed time.Duration)
	OnGet(backend string, fileSizeMB int, bytes int, elapsed time.Duration)
}

type Observers []Observer

func (o Observers) OnPut(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	for _, observer := range o {
		observer.OnPut(backend, fileSizeMB, bytes, elapsed)
	}
}

func (o Observers) OnGet(backend string, fileSizeMB int, bytes int, elapsed time.Duration) {
	for _, observer := range o {
		observer.OnGet(backend, fileSizeMB, bytes, elapsed)
	}
}

type Harness struct {
	params   Params
	logger   logrus.FieldLogger
	observer Observer
	limiter  *rate.Limiter
}

func NewHarness(params Params, logger logrus.FieldLogger, observer Observer) (*Harness, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid params")
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if observer == nil {
		observer = Observers(nil)
	}

	h := &Harness{
		params:   params,
		logger:   logger,
		observer: observer,
	}

	if params.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(params.RateLimit), 1)
	}

	return h, nil
}

// Run benchmarks one backend across all file sizes. Sizes are executed one
// after another, each against a freshly constructed system.
func (h *Harness) Run(ctx context.Context, backend string, constructor SystemConstructor) (BackendResult, error) {
	result := BackendResult{
		Backend: backend,
		Started: time.Now(),
	}

	for _, fileSizeMB := range h.params.FileSizesMB {
		if err := ctx.Err(); err != nil {
			return BackendResult{}, errors.Wrap(err, "context error")
		}

		sizeResult, err := h.runWithConstructor(ctx, backend, fileSizeMB, constructor)
		if err != nil {
			return BackendResult{}, errors.Wrap(err, fmt.Sprintf("error benchmarking %s with file size %d MB", backend, fileSizeMB))
		}

		result.Sizes = append(result.Sizes, sizeResult)
	}

	return result, nil
}

func (h *Harness) runWithConstructor(ctx context.Context, backend string, fileSizeMB int, constructor SystemConstructor) (result SizeResult, err error) {
	system, err := constructor(fileSizeMB)
	if err != nil {
		return SizeResult{}, errors.Wrap(err, "error creating the storage system")
	}

	defer func() {
		if closeErr := system.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "error closing the storage system")
		}
	}()

	return h.RunSize(ctx, backend, system, fileSizeMB)
}

type file struct {
	key      string
	checksum uint64
}

// RunSize uploads FileCount files of the given size one by one, then reads
// them back concurrently.
func (h *Harness) RunSize(ctx context.Context, backend string, system StorageSystem, fileSizeMB int) (SizeResult, error) {
	logger := h.logger.WithFields(logrus.Fields{
		"backend": backend,
		"size_mb": fileSizeMB,
	})

	size := fileSizeMB * bytesInMB

	measurements := Measurements{
		FileSizeMB: fileSizeMB,
		FileCount:  h.params.FileCount,
	}

	logger.WithField("files", h.params.FileCount).Info("uploading files")

	files := make([]file, 0, h.params.FileCount)
	for i := 0; i < h.params.FileCount; i++ {
		value, err := GenerateData(h.params.DataKind, size)
		if err != nil {
			return SizeResult{}, errors.Wrap(err, "error generating data")
		}

		f := file{
			key:      NewKey(),
			checksum: xxhash.Sum64(value),
		}

		if err := h.wait(ctx); err != nil {
			return SizeResult{}, err
		}

		start := time.Now()
		if err := system.Put(ctx, f.key, value); err != nil {
			return SizeResult{}, errors.Wrap(err, fmt.Sprintf("error putting key %s", f.key))
		}
		elapsed := time.Since(start)

		measurements.UploadTime += elapsed
		measurements.WriteLatencies = append(measurements.WriteLatencies, elapsed)
		measurements.BytesWritten += int64(len(value))
		h.observer.OnPut(backend, fileSizeMB, len(value), elapsed)

		logger.WithFields(logrus.Fields{
			"key":     f.key,
			"elapsed": elapsed,
		}).Debug("uploaded file")

		files = append(files, f)
	}

	syncStart := time.Now()
	if err := syncSystem(system); err != nil {
		return SizeResult{}, errors.Wrap(err, "error syncing the storage system")
	}
	measurements.UploadTime += time.Since(syncStart)

	logger.WithField("readers", h.params.Readers).Info("reading files")

	readLatencies, bytesRead, readTime, err := h.readFiles(ctx, backend, system, fileSizeMB, files)
	if err != nil {
		return SizeResult{}, errors.Wrap(err, "error reading files")
	}

	measurements.ReadLatencies = readLatencies
	measurements.BytesRead = bytesRead
	measurements.ReadTime = readTime

	result := NewSizeResult(measurements)

	logger.WithFields(logrus.Fields{
		"written":          humanize.IBytes(uint64(measurements.BytesWritten)),
		"upload_time":      result.UploadTime,
		"write_throughput": result.WriteThroughput,
		"read_throughput":  result.ReadThroughput,
		"avg_latency":      result.AvgReadLatency,
	}).Info("finished file size")

	return result, nil
}

func (h *Harness) readFiles(ctx context.Context, backend string, system StorageSystem, fileSizeMB int, files []file) ([]time.Duration, int64, time.Duration, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		indexes   = make(chan int)
		latencies = make([]time.Duration, len(files))
		sizes     = make([]int64, len(files))

		errOnce  sync.Once
		firstErr error
	)

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	readers := h.params.Readers
	if readers > len(files) {
		readers = len(files)
	}

	start := time.Now()

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexes {
				if err := h.wait(ctx); err != nil {
					fail(err)
					return
				}

				f := files[index]

				opStart := time.Now()
				value, err := system.Get(ctx, f.key)
				if err != nil {
					fail(errors.Wrap(err, fmt.Sprintf("error getting key %s", f.key)))
					return
				}
				elapsed := time.Since(opStart)

				if h.params.Verify && xxhash.Sum64(value) != f.checksum {
					fail(errors.Wrap(ErrChecksumMismatch, f.key))
					return
				}

				latencies[index] = elapsed
				sizes[index] = int64(len(value))
				h.observer.OnGet(backend, fileSizeMB, len(value), elapsed)
			}
		}()
	}

feed:
	for i := range files {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)

	wg.Wait()

	readTime := time.Since(start)

	if firstErr != nil {
		return nil, 0, 0, firstErr
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, errors.Wrap(err, "context error")
	}

	var bytesRead int64
	for _, size := range sizes {
		bytesRead += size
	}

	return latencies, bytesRead, readTime, nil
}

func (h *Harness) wait(ctx context.Context) error {
	if h.limiter == nil {
		return ctx.Err()
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "error waiting for the rate limiter")
	}

	return nil
}
