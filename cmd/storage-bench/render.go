package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/boreq/errors"
	"github.com/sirupsen/logrus"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/chart"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/config"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/report"
)

func renderSavedResults(conf config.Config, logger logrus.FieldLogger) error {
	results, err := report.LoadResults(conf.Output.ResultsFile)
	if err != nil {
		return errors.Wrap(err, "error loading the results")
	}

	return render(results, conf.Output.ImagesDir, conf.Output.Readme, logger)
}

// render writes a grid of all metrics per backend and, when more than one
// backend was benchmarked, one comparison image per metric.
func render(results report.Results, directory string, readme bool, logger logrus.FieldLogger) error {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return errors.Wrap(err, "error creating the images directory")
	}

	var images []report.ReadmeImage

	for _, result := range results.Backends {
		result := result
		filename := report.Image(result.Backend)

		if err := writeFile(filepath.Join(directory, filename), func(w io.Writer) error {
			return chart.RenderBackendGrid(w, result)
		}); err != nil {
			return errors.Wrap(err, "error rendering "+result.Backend)
		}

		images = append(images, report.ReadmeImage{Title: result.Backend, Path: filename})
		logger.WithField("path", filepath.Join(directory, filename)).Info("rendered image")
	}

	if len(results.Backends) > 1 {
		for _, metric := range chart.Metrics {
			metric := metric
			filename := report.ComparisonImage(metric.Name)

			if err := writeFile(filepath.Join(directory, filename), func(w io.Writer) error {
				return chart.RenderComparison(w, results.Backends, metric)
			}); err != nil {
				return errors.Wrap(err, "error rendering the comparison of "+metric.Name)
			}

			images = append(images, report.ReadmeImage{Title: metric.Title, Path: filename})
			logger.WithField("path", filepath.Join(directory, filename)).Info("rendered image")
		}
	}

	if !readme {
		return nil
	}

	return writeFile(filepath.Join(directory, "README.md"), func(w io.Writer) error {
		return report.WriteReadme(w, results, images)
	})
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating the file")
	}

	if err := write(f); err != nil {
		f.Close()
		return errors.Wrap(err, "error writing the file")
	}

	return f.Close()
}
