package memlog

import "os"

// region merepresentasikan area memory-map beserta cursor tulisnya.
//
// Panjang data selalu kelipatan page size dan tidak pernah berubah setelah
// dibuka. Field offset hanya bertambah; 0 <= offset <= len(data).
//
// Setelah unmap, data bernilai nil dan region tidak boleh ditulis lagi.
type region struct {
	file   *os.File // descriptor file backing
	data   []byte   // hasil unix.Mmap (PROT_WRITE saja, jangan dibaca)
	size   int64    // kapasitas region (tetap setelah unmap)
	offset int64    // jumlah byte yang sudah ditulis
}

func (r *region) capacity() int64 { return r.size }

func (r *region) available() int64 { return r.size - r.offset }

// put copies as much of p as fits at the cursor and advances it by the number
// of bytes copied.
func (r *region) put(p []byte) int {
	n := copy(r.data[r.offset:], p)
	r.offset += int64(n)
	return n
}

// next returns the n bytes at the cursor and advances past them, or nil if
// fewer than n bytes remain.
func (r *region) next(n int64) []byte {
	if n > r.available() {
		return nil
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b
}
