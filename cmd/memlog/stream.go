package main

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	memlog "github.com/luhtfiimanal/go-memlog"
)

const (
	streamUsage   = "stream <output_file> [file_size]"
	streamShort   = "Fill a stream log until it is full"
	streamLong    = "This command opens a memory-mapped stream log and repeatedly writes a raw line, a string line and a formatted line until no capacity is left."
	streamExample = "memlog stream /tmp/out.log 4K"

	// defaultFileSize matches the byte budget used when no size is given.
	defaultFileSize = 1000
	testLine        = "Test writing a string\n"
)

func newStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:     streamUsage,
		Short:   streamShort,
		Long:    streamLong,
		Example: streamExample,
		Args:    cobra.RangeArgs(1, 2),
		RunE:    executeStream,
	}
}

// parseSize accepts a plain byte count or a human size such as 4K or 1M.
func parseSize(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	n, err := bytefmt.ToBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid file size %q: %w", s, err)
	}
	return int64(n), nil
}

// fillStream writes until w reports no capacity left and returns the number
// of loop iterations.
func fillStream(w *memlog.StreamWriter) (int, error) {
	i := 0
	for w.Available() > 0 {
		if _, err := w.Write([]byte(testLine)); err != nil {
			return i, fmt.Errorf("write: %w", err)
		}
		if _, err := w.WriteString(testLine); err != nil {
			return i, fmt.Errorf("write string: %w", err)
		}
		if _, err := w.Printf("Test writing a string i=%d\n", i); err != nil {
			return i, fmt.Errorf("printf: %w", err)
		}
		i++
	}
	return i, nil
}

func executeStream(_ *cobra.Command, args []string) error {
	path := args[0]
	size := int64(defaultFileSize)
	if len(args) == 2 {
		var err error
		if size, err = parseSize(args[1]); err != nil {
			return err
		}
	}

	w, err := memlog.NewStreamWriter(path, size)
	if err != nil {
		return fmt.Errorf("cannot open file %s: %w", path, err)
	}
	n, ferr := fillStream(w)
	st := w.GetStats()
	if err := w.Close(); err != nil && ferr == nil {
		ferr = fmt.Errorf("close %s: %w", path, err)
	}
	if ferr != nil {
		return ferr
	}

	zap.L().Info("stream written",
		zap.String("path", path),
		zap.Int("iterations", n),
		zap.String("written", bytefmt.ByteSize(uint64(st.Used))),
		zap.String("capacity", bytefmt.ByteSize(uint64(st.Capacity))))
	return nil
}
