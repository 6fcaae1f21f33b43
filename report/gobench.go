package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/boreq/errors"
	"golang.org/x/tools/benchmark/parse"
)

// GoBenchResults are results of BenchmarkPut and BenchmarkGet parsed from
// the output of go test -bench.
type GoBenchResults struct {
	Goos    string
	Goarch  string
	Cpu     string
	Results []GoBenchResult
}

type GoBenchResult struct {
	BenchmarkName string
	Systems       []SystemGoBenchResult
}

type SystemGoBenchResult struct {
	SystemName string
	NsOp       float64
	MBPerS     float64
}

var benchmarkPrefixes = []string{"BenchmarkPut", "BenchmarkGet"}

func GetGoBenchResults(r io.Reader) (GoBenchResults, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return GoBenchResults{}, errors.Wrap(err, "error reading all")
	}

	var result GoBenchResults

	scan := bufio.NewScanner(bytes.NewReader(b))
	for scan.Scan() {
		parseLine(scan.Text(), &result)
	}

	if err := scan.Err(); err != nil {
		return GoBenchResults{}, errors.Wrap(err, "scan error")
	}

	if result.Cpu == "" || result.Goarch == "" || result.Goos == "" {
		return GoBenchResults{}, fmt.Errorf("missing execution environment info in output: '%+v'", result)
	}

	results, err := getGoBenchResults(bytes.NewReader(b))
	if err != nil {
		return GoBenchResults{}, errors.Wrap(err, "error getting results")
	}

	result.Results = results

	return result, nil
}

const lineSep = ":"

// parseLine picks up the environment header printed by go test, other lines
// are ignored.
func parseLine(line string, result *GoBenchResults) bool {
	splitLine := strings.SplitN(line, lineSep, 2)
	if len(splitLine) != 2 {
		return false
	}

	key := splitLine[0]
	value := strings.TrimSpace(splitLine[1])

	switch key {
	case "goos":
		result.Goos = value
	case "goarch":
		result.Goarch = value
	case "cpu":
		result.Cpu = value
	default:
		return false
	}

	return true
}

func getGoBenchResults(r io.Reader) ([]GoBenchResult, error) {
	var results []GoBenchResult

	set, err := parse.ParseSet(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing set")
	}

	for _, benchmarks := range set {
		for _, benchmark := range benchmarks {
			if !hasBenchmarkPrefix(benchmark.Name) {
				continue
			}

			systemName, benchmarkName, err := ParseBenchmarkName(benchmark.Name)
			if err != nil {
				return nil, errors.Wrap(err, "error parsing benchmark name")
			}

			bench, ok := findBenchmark(results, benchmarkName)
			if !ok {
				results = append(results, GoBenchResult{
					BenchmarkName: benchmarkName,
					Systems:       nil,
				})
				bench = &results[len(results)-1]
			}

			bench.Systems = append(bench.Systems, SystemGoBenchResult{
				SystemName: systemName,
				NsOp:       benchmark.NsPerOp,
				MBPerS:     benchmark.MBPerS,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].BenchmarkName < results[j].BenchmarkName
	})

	for _, result := range results {
		sort.Slice(result.Systems, func(i, j int) bool {
			return result.Systems[i].SystemName < result.Systems[j].SystemName
		})
	}

	return results, nil
}

// ParseBenchmarkName splits BenchmarkPut/badger_none/1MB-8 into the system
// name "badger_none" and the benchmark name "Put/1MB".
func ParseBenchmarkName(name string) (string, string, error) {
	split := strings.SplitN(name, "/", 3)
	if len(split) != 3 {
		return "", "", errors.New("invalid name")
	}

	operation := strings.TrimPrefix(split[0], "Benchmark")
	return split[1], operation + "/" + trimProcs(split[2]), nil
}

func trimProcs(name string) string {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return name
	}

	if _, err := strconv.Atoi(name[i+1:]); err != nil {
		return name
	}

	return name[:i]
}

func hasBenchmarkPrefix(name string) bool {
	for _, prefix := range benchmarkPrefixes {
		if strings.HasPrefix(name, prefix+"/") {
			return true
		}
	}
	return false
}

func findBenchmark(results []GoBenchResult, benchmarkName string) (*GoBenchResult, bool) {
	for i := range results {
		if results[i].BenchmarkName == benchmarkName {
			return &results[i], true
		}
	}
	return nil, false
}
