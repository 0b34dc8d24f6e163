package memlog

import (
	"fmt"
	"math"
	"math/bits"
	"os"
)

// elemSize is the on-staging width of one table element (uint64, LE).
const elemSize = 8

// maxDimension is the exclusive upper bound for table columns and rows.
const maxDimension = uint64(1) << 63

// pageRound rounds n up to the next multiple of the page size.
// n must be positive and small enough that rounding cannot overflow.
func pageRound(n int64) int64 {
	ps := int64(os.Getpagesize())
	if rem := n % ps; rem > 0 {
		n += ps - rem
	}
	return n
}

// maxRegion returns the largest page-aligned length that can be mapped.
func maxRegion() int64 {
	ps := int64(os.Getpagesize())
	return int64(math.MaxInt) / ps * ps
}

// streamCapacity sizes the backing region for a byte budget.
func streamCapacity(maxSize int64) (int64, error) {
	if maxSize <= 0 {
		return 0, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidArgument, maxSize)
	}
	if maxSize > maxRegion() {
		return 0, fmt.Errorf("%w: size %d exceeds mappable limit %d", ErrInvalidArgument, maxSize, maxRegion())
	}
	return pageRound(maxSize), nil
}

// tableCapacity sizes the staging region for columns x rows elements.
// The product is checked for overflow before any allocation is attempted.
func tableCapacity(columns, rows uint64) (int64, error) {
	if columns == 0 || columns >= maxDimension {
		return 0, fmt.Errorf("%w: column count must be in (0, 2^63), got %d", ErrInvalidArgument, columns)
	}
	if rows == 0 || rows >= maxDimension {
		return 0, fmt.Errorf("%w: row count must be in (0, 2^63), got %d", ErrInvalidArgument, rows)
	}
	hi, elems := bits.Mul64(columns, rows)
	if hi != 0 || elems > uint64(maxRegion())/elemSize {
		return 0, fmt.Errorf("%w: %d columns x %d rows overflows mappable size", ErrInvalidArgument, columns, rows)
	}
	return pageRound(int64(elems * elemSize)), nil
}
