package memlog

// Stats menyimpan snapshot pemakaian region sebuah writer.
// Utilization dalam persentase (0-100) dari Capacity.
type Stats struct {
	Capacity    int64 // ukuran region (dibulatkan ke page size)
	Used        int64 // byte yang sudah ditulis
	Utilization float64
}

func newStats(r *region) Stats {
	ratio := 0.0
	if r.capacity() > 0 {
		ratio = float64(r.offset) / float64(r.capacity()) * 100.0
	}
	return Stats{Capacity: r.capacity(), Used: r.offset, Utilization: ratio}
}

// GetStats mengambil snapshot pemakaian tanpa mengubah state.
func (w *StreamWriter) GetStats() Stats { return newStats(w.reg) }

// Capacity returns the page-rounded size of the backing region.
func (w *StreamWriter) Capacity() int64 { return w.reg.capacity() }

// Offset returns the number of bytes written so far.
func (w *StreamWriter) Offset() int64 { return w.reg.offset }

// Path returns the output file path.
func (w *StreamWriter) Path() string { return w.path }

// GetStats mengambil snapshot pemakaian region staging.
func (t *TableWriter) GetStats() Stats { return newStats(t.reg) }

// Capacity returns the page-rounded size of the staging region.
func (t *TableWriter) Capacity() int64 { return t.reg.capacity() }

// ColumnLength returns the column count given at open.
func (t *TableWriter) ColumnLength() uint64 { return t.columns }

// RowLength returns the row count given at open.
func (t *TableWriter) RowLength() uint64 { return t.rows }

// RowsWritten returns the number of rows written so far.
func (t *TableWriter) RowsWritten() uint64 { return t.rows - t.remaining }

// Path returns the text output file path.
func (t *TableWriter) Path() string { return t.path }
