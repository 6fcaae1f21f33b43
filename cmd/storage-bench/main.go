package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/boreq/errors"
	"github.com/sirupsen/logrus"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/config"
)

var (
	app = kingpin.New("storage-bench", "Measures upload time, throughput and read latency of S3 and local key-value stores.")

	configFile = app.Flag("config", "Path to a YAML config file.").Short('c').Envar("BENCH_CONFIG").String()
	logLevel   = app.Flag("log-level", "Log level (panic, fatal, error, warn, info, debug, trace).").Envar("BENCH_LOG_LEVEL").String()

	runCmd     = app.Command("run", "Run the benchmark, save the results and render the images.").Default()
	runOptions = newRunFlags(runCmd)

	chartCmd         = app.Command("chart", "Render the images from previously saved results.")
	chartResultsFile = chartCmd.Flag("results", "Results file written by the run command.").String()
	chartImagesDir   = chartCmd.Flag("images-dir", "Directory the images are written to.").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, command); err != nil {
		logrus.WithError(err).Fatal("benchmark failed")
	}
}

func run(ctx context.Context, command string) error {
	conf, err := config.Load(*configFile)
	if err != nil {
		return errors.Wrap(err, "error loading the config")
	}

	if *logLevel != "" {
		conf.LogLevel = *logLevel
	}

	switch command {
	case runCmd.FullCommand():
		if err := runOptions.apply(&conf); err != nil {
			return errors.Wrap(err, "invalid flags")
		}
	case chartCmd.FullCommand():
		if *chartResultsFile != "" {
			conf.Output.ResultsFile = *chartResultsFile
		}
		if *chartImagesDir != "" {
			conf.Output.ImagesDir = *chartImagesDir
		}
	}

	if err := conf.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		return errors.Wrap(err, "error creating the logger")
	}

	switch command {
	case runCmd.FullCommand():
		return runBenchmark(ctx, conf, logger, !*runOptions.noProgress)
	case chartCmd.FullCommand():
		return renderSavedResults(conf, logger)
	default:
		return errors.New("unknown command: " + command)
	}
}

func newLogger(level string) (logrus.FieldLogger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing the log level")
	}

	logger := logrus.New()
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}
