package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/boreq/errors"
	storagebenchmark "github.com/sudheerdagar/s3-rocksdb-benchmark"
)

type Results struct {
	Params   Params                           `json:"params"`
	Backends []storagebenchmark.BackendResult `json:"backends"`
}

type Params struct {
	FileSizesMB []int   `json:"file_sizes_mb"`
	FileCount   int     `json:"file_count"`
	Readers     int     `json:"readers"`
	RateLimit   float64 `json:"rate_limit,omitempty"`
	DataKind    string  `json:"data_kind"`
	Verify      bool    `json:"verify"`
}

func NewParams(p storagebenchmark.Params) Params {
	return Params{
		FileSizesMB: p.FileSizesMB,
		FileCount:   p.FileCount,
		Readers:     p.Readers,
		RateLimit:   p.RateLimit,
		DataKind:    p.DataKind,
		Verify:      p.Verify,
	}
}

func (r Results) Backend(name string) (storagebenchmark.BackendResult, bool) {
	for _, backend := range r.Backends {
		if backend.Backend == name {
			return backend, true
		}
	}
	return storagebenchmark.BackendResult{}, false
}

func WriteResults(w io.Writer, results Results) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return errors.Wrap(err, "error encoding results")
	}
	return nil
}

func ReadResults(r io.Reader) (Results, error) {
	var results Results
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return Results{}, errors.Wrap(err, "error decoding results")
	}
	return results, nil
}

func SaveResults(path string, results Results) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "error creating directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "error creating results file")
	}

	if err := WriteResults(f, results); err != nil {
		f.Close()
		return errors.Wrap(err, "error writing results")
	}

	return f.Close()
}

func LoadResults(path string) (Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return Results{}, errors.Wrap(err, "error opening results file")
	}
	defer f.Close()

	return ReadResults(f)
}
