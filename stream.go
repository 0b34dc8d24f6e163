package memlog

import (
	"fmt"
	"os"

	"code.cloudfoundry.org/bytefmt"
	"go.uber.org/zap"
)

// StreamWriter menulis stream byte mentah ke file yang di-memory-map.
//
// File output adalah region itu sendiri: dibuka dengan truncate, diperbesar
// ke kapasitas yang dibulatkan ke page size, lalu di-map write-only. Close
// memotong file ke jumlah byte yang benar-benar ditulis.
//
// Tidak aman untuk goroutine.
type StreamWriter struct {
	path   string
	reg    *region
	log    *zap.Logger
	closed bool
}

// NewStreamWriter membuka writer dengan opsi default (lihat DefaultOptions).
func NewStreamWriter(path string, maxSize int64) (*StreamWriter, error) {
	return NewStreamWriterWithOptions(path, maxSize, DefaultOptions())
}

// NewStreamWriterWithOptions opens a writer with custom options. Capacity is
// maxSize rounded up to the page size. Any existing content at path is
// discarded. On error no file descriptor or mapping is left open and the
// output file is removed.
func NewStreamWriterWithOptions(path string, maxSize int64, opts Options) (*StreamWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	size, err := streamCapacity(maxSize)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, opts.Perm)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrResourceUnavailable, path, err)
	}
	reg, err := mapBacking(f, size)
	if err != nil {
		discardFile(opts.Logger, f)
		return nil, err
	}

	opts.Logger.Debug("stream writer opened",
		zap.String("path", path),
		zap.String("capacity", bytefmt.ByteSize(uint64(size))))
	return &StreamWriter{path: path, reg: reg, log: opts.Logger}, nil
}

// Write copies min(Available(), len(p)) bytes at the cursor and returns the
// number copied. A short copy is not an error: once the writer is full Write
// returns 0, nil, so callers must poll Available. This differs from the
// io.Writer contract on purpose.
func (w *StreamWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	return w.reg.put(p), nil
}

// WriteString is Write for a string. No newline is appended.
func (w *StreamWriter) WriteString(s string) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	return w.reg.put([]byte(s)), nil
}

// Printf formats in full first, then writes the result through the same
// bounded copy as Write, so output longer than Available is truncated.
// A formatting failure writes nothing and returns an ErrEncoding error.
func (w *StreamWriter) Printf(format string, args ...any) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	b, err := appendFormatted(nil, format, args...)
	if err != nil {
		return 0, err
	}
	return w.reg.put(b), nil
}

// Available returns the number of bytes that can still be written.
func (w *StreamWriter) Available() int64 { return w.reg.available() }
