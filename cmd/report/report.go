package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/boreq/errors"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/chart"
	"github.com/sudheerdagar/s3-rocksdb-benchmark/report"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// Reads the output of go test -bench from stdin and writes bar charts and a
// README into results/<cpu>-<goarch>-<goos>.
func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	results, err := report.GetGoBenchResults(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "error getting bench results")
	}

	directory := path.Join(
		"results",
		fmt.Sprintf("%s-%s-%s", results.Cpu, results.Goarch, results.Goos),
	)

	if err := os.RemoveAll(directory); err != nil {
		return errors.Wrap(err, "error removing directory")
	}

	if err := os.MkdirAll(directory, 0700); err != nil {
		return errors.Wrap(err, "error recreating directory")
	}

	readmeBuffer := bytes.NewBuffer(nil)
	readmeBuffer.WriteString("# Results\n")
	readmeBuffer.WriteString("```\n")
	readmeBuffer.WriteString(fmt.Sprintf("goarch=%s\n", results.Goarch))
	readmeBuffer.WriteString(fmt.Sprintf("goos=%s\n", results.Goos))
	readmeBuffer.WriteString(fmt.Sprintf("cpu=%s\n", results.Cpu))
	readmeBuffer.WriteString("```\n")

	readmeBuffer.WriteString("## Throughput\n")

	for _, result := range results.Results {
		var bars []chart.Bar
		for _, system := range result.Systems {
			bars = append(bars, chart.Bar{
				Label: system.SystemName,
				Value: system.MBPerS,
			})
		}

		resultsChart := chart.MakeBarChart(result.BenchmarkName, "MB/s", bars)

		filename := fmt.Sprintf(
			"%s.png",
			strings.Replace(result.BenchmarkName, "/", "-", -1),
		)

		f, err := os.Create(path.Join(directory, filename))
		if err != nil {
			return errors.Wrap(err, "error creating chart file")
		}

		if err := resultsChart.Render(gochart.PNG, f); err != nil {
			f.Close()
			return errors.Wrap(err, "error rendering the chart")
		}

		if err := f.Close(); err != nil {
			return errors.Wrap(err, "error closing chart file")
		}

		readmeBuffer.WriteString(fmt.Sprintf("### %s\n", result.BenchmarkName))
		readmeBuffer.WriteString(fmt.Sprintf("![](./%s)\n", filename))
		readmeBuffer.WriteString("```\n")
		sort.Slice(result.Systems, func(i, j int) bool {
			return result.Systems[i].MBPerS > result.Systems[j].MBPerS
		})
		for _, system := range result.Systems {
			readmeBuffer.WriteString(fmt.Sprintf("%20s = %10.2f MB/s %15.0f ns per op\n", system.SystemName, system.MBPerS, system.NsOp))
		}
		readmeBuffer.WriteString("```\n")
	}

	readmeFile, err := os.Create(path.Join(directory, "README.md"))
	if err != nil {
		return errors.Wrap(err, "error creating readme")
	}
	defer readmeFile.Close()

	if _, err := readmeBuffer.WriteTo(readmeFile); err != nil {
		return errors.Wrap(err, "error writing to readme file")
	}

	return nil
}
