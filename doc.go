// Package memlog provides append-only, fixed-capacity log writers backed by
// a memory-mapped file.
//
// Two writers share the same design: the backing file is pre-sized to a
// page-rounded capacity and mapped write-only, a cursor advances over the
// mapped region on every write, and Close reconciles what was written with
// the file on disk.
//
//	StreamWriter – raw byte/string stream; the mapped file is the output and
//	               is truncated to the bytes written on Close.
//	TableWriter  – fixed-width rows of uint64; rows are staged in a mapped
//	               temporary file and transcoded to delimited text on Close,
//	               with an optional header line.
//
// The library is organised into several files:
//
//	options.go     – configuration struct & defaults
//	errors.go      – error kinds returned by every operation
//	capacity.go    – page rounding & overflow-checked sizing
//	mmap.go        – backing file mapping (unix only)
//	region.go      – mapped arena & write cursor
//	stream.go      – StreamWriter
//	printf.go      – format checking for StreamWriter.Printf
//	table.go       – TableWriter
//	transcode.go   – staging file to delimited text
//	flush_close.go – Close for both writers
//	stats.go       – lightweight accessors
//
// Writers are not safe for concurrent use. Callers with several producers
// must serialise access themselves or use one writer per goroutine.
package memlog
