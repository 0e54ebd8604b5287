// Package rgb444 implements the 12-bit colour format stored in generated ROMs.
//
// Each channel keeps only its four most significant bits. The packed value is
// laid out red, green, blue from the most significant nibble down:
//
//	bit  ba98 7654 3210
//	     RRRR GGGG BBBB
package rgb444

import (
	"image/color"
	"strconv"
	"strings"
)

// Width is the number of bits in a packed Color.
const Width = 12

// Color is a packed 12-bit RGB value in [0, 4095].
type Color uint16

// Model converts any color.Color to a Color by truncating each channel.
var Model color.Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Quantize(n.R, n.G, n.B)
}

// Quantize packs the top four bits of each 8-bit channel. The low bits are
// dropped, not rounded.
func Quantize(r, g, b uint8) Color {
	return Color(r>>4)<<8 | Color(g>>4)<<4 | Color(b>>4)
}

// Channels returns the red, green and blue nibbles.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c>>8) & 0x0f, uint8(c>>4) & 0x0f, uint8(c) & 0x0f
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	// Replicating the nibble maps 0x0 to 0x0000 and 0xf to 0xffff.
	rn, gn, bn := c.Channels()
	r = uint32(rn) * 0x1111
	g = uint32(gn) * 0x1111
	b = uint32(bn) * 0x1111
	a = 0xffff
	return
}

// Bits returns c as a Width-character string of '0' and '1'.
func (c Color) Bits() string {
	s := strconv.FormatUint(uint64(c&0x0fff), 2)
	return strings.Repeat("0", Width-len(s)) + s
}
