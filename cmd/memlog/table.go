package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	memlog "github.com/luhtfiimanal/go-memlog"
)

const (
	tableUsage   = "table <output_file>"
	tableShort   = "Write rows of unsigned integers as delimited text"
	tableLong    = "This command reads unsigned integers from stdin, separated by whitespace or commas, groups them into rows of --columns values and writes them through a memory-mapped table writer. The text file is produced when input ends or --rows rows were written."
	tableExample = "seq 1 6 | memlog table out.csv --columns 3 --rows 2 --labels a,b,c"
)

// tableFlags holds the flag values of one table command.
type tableFlags struct {
	columns   uint64
	rows      uint64
	labels    []string
	delimiter string
	tempDir   string
	config    string
}

func newTableCmd() *cobra.Command {
	var tf tableFlags
	c := &cobra.Command{
		Use:     tableUsage,
		Short:   tableShort,
		Long:    tableLong,
		Example: tableExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeTable(cmd, args, &tf)
		},
	}
	f := c.Flags()
	f.Uint64Var(&tf.columns, "columns", 0, "values per row")
	f.Uint64Var(&tf.rows, "rows", 0, "maximum number of rows")
	f.StringSliceVar(&tf.labels, "labels", nil, "header labels, one per column")
	f.StringVar(&tf.delimiter, "delimiter", "", "single-byte column delimiter (default \",\")")
	f.StringVar(&tf.tempDir, "temp-dir", "", "directory for the staging file")
	f.StringVar(&tf.config, "config", "", "YAML file with columns, rows, labels, delimiter and temp_dir")
	return c
}

// resolveTableConfig merges the config file (if any) with explicitly set
// flags; flags win.
func resolveTableConfig(cmd *cobra.Command, tf *tableFlags) (tableConfig, error) {
	var cfg tableConfig
	if tf.config != "" {
		var err error
		if cfg, err = loadTableConfig(tf.config); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("columns") {
		cfg.Columns = tf.columns
	}
	if flags.Changed("rows") {
		cfg.Rows = tf.rows
	}
	if flags.Changed("labels") {
		cfg.Labels = tf.labels
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = tf.delimiter
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = tf.tempDir
	}
	return cfg, nil
}

// scanValues splits on whitespace and commas.
func scanValues(data []byte, atEOF bool) (int, []byte, error) {
	isSep := func(b byte) bool { return b == ',' || b == ' ' || b == '\t' || b == '\n' || b == '\r' }
	start := 0
	for start < len(data) && isSep(data[start]) {
		start++
	}
	for i := start; i < len(data); i++ {
		if isSep(data[i]) {
			return i + 1, data[start:i], nil
		}
	}
	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

// copyRows reads rows from r into tw until input ends or the writer is full.
// It returns the number of rows written and whether input was left unread.
func copyRows(tw *memlog.TableWriter, r io.Reader) (uint64, bool, error) {
	sc := bufio.NewScanner(r)
	sc.Split(scanValues)
	row := make([]uint64, 0, tw.ColumnLength())
	var n uint64
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 64)
		if err != nil {
			return n, false, fmt.Errorf("row %d: %w", n+1, err)
		}
		row = append(row, v)
		if uint64(len(row)) < tw.ColumnLength() {
			continue
		}
		if err := tw.Write(row); err != nil {
			if errors.Is(err, memlog.ErrCapacityExhausted) {
				return n, true, nil
			}
			return n, false, err
		}
		n++
		row = row[:0]
	}
	if err := sc.Err(); err != nil {
		return n, false, fmt.Errorf("read input: %w", err)
	}
	if len(row) > 0 {
		return n, false, fmt.Errorf("incomplete final row: %d of %d values", len(row), tw.ColumnLength())
	}
	return n, false, nil
}

func executeTable(cmd *cobra.Command, args []string, tf *tableFlags) error {
	path := args[0]
	cfg, err := resolveTableConfig(cmd, tf)
	if err != nil {
		return err
	}
	opts := memlog.DefaultOptions()
	opts.TempDir = cfg.TempDir
	if d, err := delimiterByte(cfg.Delimiter); err != nil {
		return err
	} else if d != 0 {
		opts.Delimiter = d
	}

	tw, err := memlog.NewTableWriterWithOptions(path, cfg.Columns, cfg.Rows, opts)
	if err != nil {
		return fmt.Errorf("cannot open file %s: %w", path, err)
	}
	if len(cfg.Labels) > 0 {
		if err := tw.SetIndex(cfg.Labels); err != nil {
			_ = tw.Close()
			return err
		}
	}

	n, truncated, cerr := copyRows(tw, cmd.InOrStdin())
	if err := tw.Close(); err != nil && cerr == nil {
		cerr = fmt.Errorf("close %s: %w", path, err)
	}
	if cerr != nil {
		return cerr
	}
	if truncated {
		zap.L().Warn("row capacity exhausted, remaining input ignored", zap.Uint64("rows", cfg.Rows))
	}
	zap.L().Info("table written",
		zap.String("path", path),
		zap.Uint64("rows", n),
		zap.Uint64("columns", cfg.Columns))
	return nil
}
