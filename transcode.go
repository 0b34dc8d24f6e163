package memlog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// transcode renders the header (if any) and the first n staged rows to the
// text output. The staging file is read back through ordinary buffered I/O
// because the mapping is write-only.
func (t *TableWriter) transcode(n uint64) error {
	staging := t.reg.file
	if _, err := staging.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %s: %w", ErrIO, staging.Name(), err)
	}
	rd := bufio.NewReader(io.LimitReader(staging, int64(n*t.columns*elemSize)))
	wr := bufio.NewWriter(t.out)

	var line []byte
	if t.labels != nil {
		for i, l := range t.labels {
			if i > 0 {
				line = append(line, t.delim)
			}
			line = append(line, l...)
		}
		line = append(line, '\n')
		if _, err := wr.Write(line); err != nil {
			return fmt.Errorf("%w: write header to %s: %w", ErrIO, t.path, err)
		}
	}

	var elem [elemSize]byte
	for r := uint64(0); r < n; r++ {
		line = line[:0]
		for c := uint64(0); c < t.columns; c++ {
			if _, err := io.ReadFull(rd, elem[:]); err != nil {
				return fmt.Errorf("%w: read staged row %d: %w", ErrIO, r, err)
			}
			if c > 0 {
				line = append(line, t.delim)
			}
			line = strconv.AppendUint(line, binary.LittleEndian.Uint64(elem[:]), 10)
		}
		line = append(line, '\n')
		if _, err := wr.Write(line); err != nil {
			return fmt.Errorf("%w: write row %d to %s: %w", ErrIO, r, t.path, err)
		}
	}

	if err := wr.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrIO, t.path, err)
	}
	return nil
}
