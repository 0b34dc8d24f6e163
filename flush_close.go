package memlog

import (
	"fmt"
	"os"

	"code.cloudfoundry.org/bytefmt"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Close forces written data to disk and releases every resource.
//
// The written prefix is msync'ed, the region unmapped, and the file
// truncated to exactly the bytes written. Every step runs even if an earlier
// one failed; all failures are returned together and wrap ErrIO. The writer
// must not be used afterwards (further calls return ErrClosed).
func (w *StreamWriter) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	err := w.reg.sync()
	err = multierr.Append(err, w.reg.unmap())
	if terr := w.reg.file.Truncate(w.reg.offset); terr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: truncate %s to %d bytes: %w", ErrIO, w.path, w.reg.offset, terr))
	}
	if cerr := w.reg.file.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: close %s: %w", ErrIO, w.path, cerr))
	}

	w.log.Debug("stream writer closed",
		zap.String("path", w.path),
		zap.String("written", bytefmt.ByteSize(uint64(w.reg.offset))),
		zap.Error(err))
	return err
}

// Close writes the final text file and removes the staging file.
//
// The staging region is msync'ed and unmapped, then the header and rows are
// transcoded to the output file, which is fsync'ed and closed. The staging
// file is always closed and removed. The text output is not transcoded when
// the staging flush fails, and is left partial if rendering fails midway.
func (t *TableWriter) Close() error {
	if t.closed {
		return ErrClosed
	}
	t.closed = true
	written := t.rows - t.remaining

	err := t.reg.sync()
	err = multierr.Append(err, t.reg.unmap())
	if err == nil {
		err = t.transcode(written)
	}
	if serr := t.out.Sync(); serr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: fsync %s: %w", ErrIO, t.path, serr))
	}
	if cerr := t.out.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: close %s: %w", ErrIO, t.path, cerr))
	}

	staging := t.reg.file.Name()
	if cerr := t.reg.file.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: close staging %s: %w", ErrIO, staging, cerr))
	}
	if rerr := os.Remove(staging); rerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: remove staging %s: %w", ErrIO, staging, rerr))
	}

	t.log.Debug("table writer closed",
		zap.String("path", t.path),
		zap.Uint64("rows", written),
		zap.Bool("header", t.labels != nil),
		zap.Error(err))
	return err
}
