//go:build !linux

package rlimit

// RaiseOpenFileLimit does nothing on platforms without rlimits.
func RaiseOpenFileLimit() (uint64, error) {
	return 0, nil
}
