// Package addr plans the address bus of a (row, col) lookup table.
package addr

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// InvalidDimensionError is returned when an image has no rows or no columns.
type InvalidDimensionError struct {
	Height, Width int
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid image dimensions %dx%d: width and height must be positive", e.Width, e.Height)
}

// Plan holds the address widths for an image of Height rows and Width columns.
// The row index occupies the high RowBits of an address, the column index the
// low ColBits.
type Plan struct {
	Height  int
	Width   int
	RowBits int
	ColBits int
}

// New plans the address widths for a height x width image.
func New(height, width int) (Plan, error) {
	if height <= 0 || width <= 0 {
		return Plan{}, &InvalidDimensionError{Height: height, Width: width}
	}

	return Plan{
		Height:  height,
		Width:   width,
		RowBits: Bits(height),
		ColBits: Bits(width),
	}, nil
}

// Bits returns ceil(log2(n)), the number of bits needed to tell n indexes
// apart. A single index needs no bits. n must be positive.
func Bits(n int) int {
	return bits.Len(uint(n - 1))
}

// AddrBits returns the width of the combined address.
func (p Plan) AddrBits() int {
	return p.RowBits + p.ColBits
}

// Entries returns the number of addressed entries, one per pixel.
func (p Plan) Entries() int {
	return p.Height * p.Width
}

// Address returns the combined address of pixel (y, x) as a binary string.
func (p Plan) Address(y, x int) string {
	return Binary(uint64(y), p.RowBits) + Binary(uint64(x), p.ColBits)
}

// Binary formats v as a zero-padded base-2 string of exactly width
// characters. A zero width yields the empty string. Bits of v above width
// are discarded.
func Binary(v uint64, width int) string {
	if width <= 0 {
		return ""
	}
	if width < 64 {
		v &= 1<<uint(width) - 1
	}

	s := strconv.FormatUint(v, 2)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
