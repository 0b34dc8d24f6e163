package memlog

import (
	"encoding/binary"
	"fmt"
	"os"

	"code.cloudfoundry.org/bytefmt"
	"go.uber.org/zap"
)

// TableWriter menulis baris-baris uint64 dengan lebar tetap.
//
// Baris disimpan dalam bentuk biner di file staging sementara yang
// di-memory-map; file output teks dibuka saat konstruksi dan baru diisi saat
// Close (header opsional, lalu satu baris teks per baris data).
//
// Tidak aman untuk goroutine.
type TableWriter struct {
	path      string
	out       *os.File // file output teks final
	reg       *region  // staging biner, dihapus setelah Close
	columns   uint64
	rows      uint64
	remaining uint64
	labels    []string
	delim     byte
	log       *zap.Logger
	closed    bool
}

// NewTableWriter membuka writer dengan opsi default (lihat DefaultOptions).
func NewTableWriter(path string, columns, rows uint64) (*TableWriter, error) {
	return NewTableWriterWithOptions(path, columns, rows, DefaultOptions())
}

// NewTableWriterWithOptions opens a writer with custom options. columns and
// rows must each be in (0, 2^63). The text output at path is created (or
// truncated) immediately; the binary staging file goes to opts.TempDir.
// On error every descriptor is closed and both the output and the staging
// file are removed.
func NewTableWriterWithOptions(path string, columns, rows uint64, opts Options) (*TableWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	size, err := tableCapacity(columns, rows)
	if err != nil {
		return nil, err
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, opts.Perm)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrResourceUnavailable, path, err)
	}
	staging, err := os.CreateTemp(opts.TempDir, "memlog-*.stage")
	if err != nil {
		discardFile(opts.Logger, out)
		return nil, fmt.Errorf("%w: create staging file: %w", ErrResourceUnavailable, err)
	}
	reg, err := mapBacking(staging, size)
	if err != nil {
		discardFile(opts.Logger, out)
		discardFile(opts.Logger, staging)
		return nil, err
	}

	opts.Logger.Debug("table writer opened",
		zap.String("path", path),
		zap.String("staging", staging.Name()),
		zap.Uint64("columns", columns),
		zap.Uint64("rows", rows),
		zap.String("capacity", bytefmt.ByteSize(uint64(size))))
	return &TableWriter{
		path:      path,
		out:       out,
		reg:       reg,
		columns:   columns,
		rows:      rows,
		remaining: rows,
		delim:     opts.Delimiter,
		log:       opts.Logger,
	}, nil
}

// Write appends one row. It fails with ErrCapacityExhausted once every
// declared row has been written and with ErrInvalidArgument when len(row)
// differs from the column count. Nothing is stored on failure.
func (t *TableWriter) Write(row []uint64) error {
	if t.closed {
		return ErrClosed
	}
	if t.remaining == 0 {
		return fmt.Errorf("%w: all %d rows written", ErrCapacityExhausted, t.rows)
	}
	if uint64(len(row)) != t.columns {
		return fmt.Errorf("%w: row has %d columns, want %d", ErrInvalidArgument, len(row), t.columns)
	}
	dst := t.reg.next(int64(t.columns) * elemSize)
	if dst == nil {
		// Seharusnya tidak terjadi: kapasitas dihitung dari rows x columns.
		return fmt.Errorf("%w: staging region full", ErrCapacityExhausted)
	}
	for i, v := range row {
		binary.LittleEndian.PutUint64(dst[i*elemSize:], v)
	}
	t.remaining--
	return nil
}

// SetIndex attaches one label per column, emitted as a header line on Close.
// It may be called once; the labels are copied.
func (t *TableWriter) SetIndex(labels []string) error {
	if t.closed {
		return ErrClosed
	}
	if t.labels != nil {
		return fmt.Errorf("%w: index already set", ErrInvalidArgument)
	}
	if uint64(len(labels)) != t.columns {
		return fmt.Errorf("%w: %d labels for %d columns", ErrInvalidArgument, len(labels), t.columns)
	}
	t.labels = append(make([]string, 0, len(labels)), labels...)
	return nil
}

// Available returns the number of rows that can still be written.
func (t *TableWriter) Available() uint64 { return t.remaining }

// closeQuietly closes f on an error path, logging rather than returning a
// failure so the original error reaches the caller.
func closeQuietly(log *zap.Logger, f *os.File) {
	if err := f.Close(); err != nil {
		log.Warn("close after failed open", zap.String("path", f.Name()), zap.Error(err))
	}
}

// discardFile closes and removes a file created by a failed open.
func discardFile(log *zap.Logger, f *os.File) {
	closeQuietly(log, f)
	if err := os.Remove(f.Name()); err != nil {
		log.Warn("remove after failed open", zap.String("path", f.Name()), zap.Error(err))
	}
}
