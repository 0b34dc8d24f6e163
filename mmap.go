//go:build unix

package memlog

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps length bytes of fd write-only and shared, so stores reach the
// file's page cache and msync can make them durable. Tests replace it to
// simulate a mapping failure.
var mmapFile = func(fd, length int) ([]byte, error) {
	return unix.Mmap(fd, 0, length, unix.PROT_WRITE, unix.MAP_SHARED)
}

// mapBacking extends f to size bytes and maps it. The caller keeps ownership
// of f on error.
func mapBacking(f *os.File, size int64) (*region, error) {
	if err := f.Truncate(size); err != nil {
		return nil, fmt.Errorf("%w: extend %s to %d bytes: %w", ErrResourceUnavailable, f.Name(), size, err)
	}
	data, err := mmapFile(int(f.Fd()), int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %w", ErrResourceUnavailable, f.Name(), err)
	}
	return &region{file: f, data: data, size: size}, nil
}

// sync flushes the written prefix of the region synchronously.
func (r *region) sync() error {
	if r.data == nil || r.offset == 0 {
		return nil
	}
	if err := unix.Msync(r.data[:r.offset], unix.MS_SYNC); err != nil {
		return fmt.Errorf("%w: msync %s: %w", ErrIO, r.file.Name(), err)
	}
	return nil
}

// unmap releases the mapping. The region must not be written afterwards.
func (r *region) unmap() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("%w: munmap %s: %w", ErrIO, r.file.Name(), err)
	}
	return nil
}
