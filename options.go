package memlog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Options menyediakan opsi konfigurasi untuk StreamWriter dan TableWriter.
//
//   - Perm:      permission bit untuk file output (default 0644)
//   - TempDir:   direktori file staging TableWriter ("" = os.TempDir())
//   - Delimiter: pemisah kolom pada output TableWriter (default ',')
//   - Logger:    logger untuk event open/close (nil = zap.L())
//
// Semua bidang bersifat opsi; nilai 0 artinya gunakan default.
type Options struct {
	Perm      os.FileMode
	TempDir   string
	Delimiter byte
	Logger    *zap.Logger
}

// DefaultOptions mengembalikan konfigurasi default yang digunakan NewStreamWriter
// dan NewTableWriter.
func DefaultOptions() Options {
	return Options{
		Perm:      0o644,
		Delimiter: ',',
	}
}

// withDefaults fills zero fields and rejects delimiters that would make the
// text output ambiguous.
func (o Options) withDefaults() (Options, error) {
	if o.Perm == 0 {
		o.Perm = 0o644
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	switch d := o.Delimiter; {
	case d == '\n' || d == '\r':
		return o, fmt.Errorf("%w: delimiter must not be a line break", ErrInvalidArgument)
	case d >= '0' && d <= '9':
		return o, fmt.Errorf("%w: delimiter must not be a digit, got %q", ErrInvalidArgument, d)
	}
	if o.Logger == nil {
		o.Logger = zap.L()
	}
	return o, nil
}
