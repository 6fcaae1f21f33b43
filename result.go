package storage_benchmark

import (
	"math"
	"sort"
	"time"
)

const bytesInMB = 1024 * 1024

type BackendResult struct {
	Backend string       `json:"backend"`
	Started time.Time    `json:"started"`
	Sizes   []SizeResult `json:"sizes"`
}

// SizeResult holds the measurements for one file size. Durations are stored
// as seconds to keep the serialized results readable.
type SizeResult struct {
	FileSizeMB int   `json:"file_size_mb"`
	FileCount  int   `json:"file_count"`
	Bytes      int64 `json:"bytes"`

	UploadTime float64 `json:"upload_time_s"`
	ReadTime   float64 `json:"read_time_s"`

	WriteThroughput float64 `json:"write_throughput_mb_s"`
	ReadThroughput  float64 `json:"read_throughput_mb_s"`

	AvgWriteLatency float64 `json:"avg_write_latency_s"`
	AvgReadLatency  float64 `json:"avg_read_latency_s"`
	MinReadLatency  float64 `json:"min_read_latency_s"`
	MaxReadLatency  float64 `json:"max_read_latency_s"`
	P50ReadLatency  float64 `json:"p50_read_latency_s"`
	P95ReadLatency  float64 `json:"p95_read_latency_s"`
}

type Measurements struct {
	FileSizeMB     int
	FileCount      int
	UploadTime     time.Duration
	ReadTime       time.Duration
	WriteLatencies []time.Duration
	ReadLatencies  []time.Duration
	BytesWritten   int64
	BytesRead      int64
}

func NewSizeResult(m Measurements) SizeResult {
	sorted := make([]time.Duration, len(m.ReadLatencies))
	copy(sorted, m.ReadLatencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	return SizeResult{
		FileSizeMB:      m.FileSizeMB,
		FileCount:       m.FileCount,
		Bytes:           m.BytesWritten,
		UploadTime:      m.UploadTime.Seconds(),
		ReadTime:        m.ReadTime.Seconds(),
		WriteThroughput: Throughput(m.BytesWritten, m.UploadTime),
		ReadThroughput:  Throughput(m.BytesRead, m.ReadTime),
		AvgWriteLatency: Mean(m.WriteLatencies).Seconds(),
		AvgReadLatency:  Mean(m.ReadLatencies).Seconds(),
		MinReadLatency:  Percentile(sorted, 0).Seconds(),
		MaxReadLatency:  Percentile(sorted, 100).Seconds(),
		P50ReadLatency:  Percentile(sorted, 50).Seconds(),
		P95ReadLatency:  Percentile(sorted, 95).Seconds(),
	}
}

// Throughput returns MB/s.
func Throughput(bytes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(bytes) / elapsed.Seconds() / bytesInMB
}

func Mean(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	return sum / time.Duration(len(durations))
}

// Percentile returns the nearest-rank percentile of already sorted durations.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	if p <= 0 {
		return sorted[0]
	}

	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
