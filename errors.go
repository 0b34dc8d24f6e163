package memlog

import "errors"

// Error kinds. Every error returned by this package matches one of these
// with errors.Is; the underlying cause, if any, is wrapped alongside.
var (
	// ErrInvalidArgument reports an empty path, a zero or out of range size,
	// a row of the wrong width, or a bad SetIndex call.
	ErrInvalidArgument = errors.New("memlog: invalid argument")
	// ErrResourceUnavailable reports a failure to create, extend or map the
	// backing file.
	ErrResourceUnavailable = errors.New("memlog: resource unavailable")
	// ErrCapacityExhausted is returned by TableWriter.Write once every
	// declared row has been written.
	ErrCapacityExhausted = errors.New("memlog: capacity exhausted")
	// ErrIO reports a flush, truncate or rendering failure during Close.
	ErrIO = errors.New("memlog: i/o error")
	// ErrEncoding reports a StreamWriter.Printf formatting failure.
	ErrEncoding = errors.New("memlog: encoding error")
	// ErrClosed is returned by any call made after Close.
	ErrClosed = errors.New("memlog: writer closed")
)
