package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/boreq/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/config"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/progress"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/report"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/rlimit"
)

func runBenchmark(ctx context.Context, conf config.Config, logger logrus.FieldLogger, showProgress bool) error {
	if limit, err := rlimit.RaiseOpenFileLimit(); err != nil {
		logger.WithError(err).Warn("unable to raise the open file limit")
	} else if limit > 0 {
		logger.WithField("limit", limit).Debug("raised the open file limit")
	}

	params := conf.Params()

	options, err := conf.SystemOptions()
	if err != nil {
		return errors.Wrap(err, "error creating system options")
	}

	var observers storagebenchmark.Observers

	if conf.Metrics.Address != "" {
		registry := prometheus.NewRegistry()

		metrics, err := storagebenchmark.NewMetrics(registry)
		if err != nil {
			return errors.Wrap(err, "error creating metrics")
		}
		observers = append(observers, metrics)

		server := serveMetrics(conf.Metrics.Address, registry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("error shutting down the metrics server")
			}
		}()
	}

	var bar *progress.Bar
	if showProgress {
		total := progress.Total(params.FileSizesMB, params.FileCount) * int64(len(conf.Benchmark.Backends))
		bar = progress.NewBar(os.Stderr, total)
		observers = append(observers, bar)
	}

	harness, err := storagebenchmark.NewHarness(params, logger, observers)
	if err != nil {
		return errors.Wrap(err, "error creating the harness")
	}

	results := report.Results{
		Params: report.NewParams(params),
	}

	var runErr error
	for _, backend := range conf.Benchmark.Backends {
		result, err := runBackend(ctx, harness, backend, options, conf.Local.Cleanup, params.FileSizesMB, logger)
		if err != nil {
			runErr = errors.Wrap(err, "error running "+backend)
			break
		}
		results.Backends = append(results.Backends, result)
	}

	if bar != nil {
		bar.Finish()
	}

	// Backends which completed before a failure are still saved.
	if len(results.Backends) > 0 {
		if err := writeResults(conf, results, logger); err != nil {
			if runErr != nil {
				logger.WithError(err).Error("error writing partial results")
				return runErr
			}
			return err
		}
	}

	if runErr != nil {
		return runErr
	}

	if len(results.Backends) > 1 {
		for _, size := range params.FileSizesMB {
			logger.WithFields(logrus.Fields{
				"size_mb": size,
				"ranking": report.Fastest(results, size),
			}).Info("read throughput ranking")
		}
	}

	return nil
}

func writeResults(conf config.Config, results report.Results, logger logrus.FieldLogger) error {
	for _, result := range results.Backends {
		if err := report.WriteBackendSummary(os.Stdout, result); err != nil {
			return errors.Wrap(err, "error writing the summary")
		}
	}

	if err := report.SaveResults(conf.Output.ResultsFile, results); err != nil {
		return errors.Wrap(err, "error saving the results")
	}
	logger.WithField("path", conf.Output.ResultsFile).Info("saved results")

	if err := render(results, conf.Output.ImagesDir, conf.Output.Readme, logger); err != nil {
		return errors.Wrap(err, "error rendering the images")
	}

	return nil
}

func runBackend(
	ctx context.Context,
	harness *storagebenchmark.Harness,
	backend string,
	options storagebenchmark.SystemOptions,
	cleanup bool,
	fileSizesMB []int,
	logger logrus.FieldLogger,
) (storagebenchmark.BackendResult, error) {
	constructor, err := storagebenchmark.NewSystemConstructor(ctx, backend, options)
	if err != nil {
		return storagebenchmark.BackendResult{}, errors.Wrap(err, "error creating the system constructor")
	}

	if cleanup && backend != storagebenchmark.SystemS3 {
		defer func() {
			for _, size := range fileSizesMB {
				dir := storagebenchmark.SystemDirectory(options.Dir, backend, size)
				if err := os.RemoveAll(dir); err != nil {
					logger.WithError(err).WithField("dir", dir).Warn("unable to remove the database")
				}
			}
		}()
	}

	logger.WithField("backend", backend).Info("running benchmark")

	return harness.Run(ctx, backend, constructor)
}

func serveMetrics(address string, registry *prometheus.Registry, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics server failed")
		}
	}()

	logger.WithField("address", address).Info("serving metrics")

	return server
}
