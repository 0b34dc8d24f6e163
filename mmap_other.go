//go:build !unix

package memlog

import (
	"fmt"
	"os"
	"runtime"
)

// On unsupported platforms opening a writer always fails.

func mapBacking(f *os.File, _ int64) (*region, error) {
	return nil, fmt.Errorf("%w: mmap %s: not supported on %s", ErrResourceUnavailable, f.Name(), runtime.GOOS)
}

func (r *region) sync() error { return nil }

func (r *region) unmap() error { return nil }
