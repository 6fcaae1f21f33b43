package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const goBenchOutput = `goos: linux
goarch: amd64
pkg: github.com/sudheerdagar/s3-rocksdb-benchmark
cpu: AMD Ryzen 7 5800X 8-Core Processor
BenchmarkPut/rocksdb/1MB-16         	    1000	   1048576 ns/op	1000.00 MB/s
BenchmarkPut/badger_none/1MB-16     	     500	   2097152 ns/op	 500.00 MB/s
BenchmarkGet/badger_none/1MB-16     	    2000	    524288 ns/op	2000.00 MB/s
BenchmarkGet/rocksdb/1MB-16         	    4000	    262144 ns/op	4000.00 MB/s
PASS
ok  	github.com/sudheerdagar/s3-rocksdb-benchmark	12.345s
`

func TestGetGoBenchResults(t *testing.T) {
	results, err := GetGoBenchResults(strings.NewReader(goBenchOutput))
	require.NoError(t, err)

	require.Equal(t, "linux", results.Goos)
	require.Equal(t, "amd64", results.Goarch)
	require.Equal(t, "AMD Ryzen 7 5800X 8-Core Processor", results.Cpu)

	require.Equal(t, []GoBenchResult{
		{
			BenchmarkName: "Get/1MB",
			Systems: []SystemGoBenchResult{
				{SystemName: "badger_none", NsOp: 524288, MBPerS: 2000},
				{SystemName: "rocksdb", NsOp: 262144, MBPerS: 4000},
			},
		},
		{
			BenchmarkName: "Put/1MB",
			Systems: []SystemGoBenchResult{
				{SystemName: "badger_none", NsOp: 2097152, MBPerS: 500},
				{SystemName: "rocksdb", NsOp: 1048576, MBPerS: 1000},
			},
		},
	}, results.Results)
}

func TestGetGoBenchResultsRequiresEnvironment(t *testing.T) {
	_, err := GetGoBenchResults(strings.NewReader("BenchmarkPut/rocksdb/1MB-16 1000 1048576 ns/op\n"))
	require.Error(t, err)
}

func TestParseBenchmarkName(t *testing.T) {
	testCases := []struct {
		Name          string
		System        string
		Benchmark     string
		ExpectedError bool
	}{
		{
			Name:      "BenchmarkPut/rocksdb/1MB-16",
			System:    "rocksdb",
			Benchmark: "Put/1MB",
		},
		{
			Name:      "BenchmarkGet/badger_zstd/16MB",
			System:    "badger_zstd",
			Benchmark: "Get/16MB",
		},
		{
			Name:      "BenchmarkGet/bbolt/size-large",
			System:    "bbolt",
			Benchmark: "Get/size-large",
		},
		{
			Name:          "BenchmarkGet",
			ExpectedError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			system, benchmark, err := ParseBenchmarkName(testCase.Name)
			if testCase.ExpectedError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.System, system)
			require.Equal(t, testCase.Benchmark, benchmark)
		})
	}
}
