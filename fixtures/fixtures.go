package fixtures

import (
	"context"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func Directory(t testing.TB, dir string) string {
	name, err := os.MkdirTemp(dir, "storage-bench")
	if err != nil {
		t.Fatal(err)
	}

	cleanup := func() {
		err := os.RemoveAll(name)
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(cleanup)

	return name
}

func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// Logger discards everything unless BENCH_TEST_LOG is set.
func Logger(t testing.TB) logrus.FieldLogger {
	logger := logrus.New()
	if os.Getenv("BENCH_TEST_LOG") == "" {
		logger.SetOutput(io.Discard)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("test", t.Name())
}

func RandomBytes(n int) []byte {
	r := make([]byte, n)
	_, err := rand.Read(r)
	if err != nil {
		panic(err)
	}
	return r
}
