//go:build linux

// Package rlimit raises process limits before a benchmark run.
package rlimit

import (
	"github.com/boreq/errors"
	"golang.org/x/sys/unix"
)

// RaiseOpenFileLimit sets the soft limit of open files to the hard limit and
// returns the new soft limit.
func RaiseOpenFileLimit() (uint64, error) {
	var limit unix.Rlimit

	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, errors.Wrap(err, "unable to get rlimit")
	}

	if limit.Cur >= limit.Max {
		return uint64(limit.Cur), nil
	}

	limit.Cur = limit.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &limit); err != nil {
		return 0, errors.Wrap(err, "unable to set open file limit")
	}

	return uint64(limit.Cur), nil
}
