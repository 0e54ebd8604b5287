// Package raster loads pictures into a row-major grid of 8-bit RGB pixels.
package raster

import (
	"image"
	"image/color"

	"romgen/rgb444"
)

// Pixel is one 8-bit-per-channel RGB sample.
type Pixel struct {
	R, G, B uint8
}

// Image is an immutable Height x Width pixel grid, stored row by row.
type Image struct {
	Width  int
	Height int
	Pix    []Pixel
}

// FromImage copies src into a grid whose origin is the top-left corner of
// src.Bounds(). Colours are read non-premultiplied; alpha is dropped.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	m := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]Pixel, b.Dx()*b.Dy()),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			m.Pix[i] = Pixel{R: c.R, G: c.G, B: c.B}
			i++
		}
	}

	return m
}

// At returns the pixel at row y, column x.
func (m *Image) At(y, x int) Pixel {
	return m.Pix[y*m.Width+x]
}

// Dims returns the number of rows and columns.
func (m *Image) Dims() (height, width int) {
	return m.Height, m.Width
}

// ColorAt returns the quantised colour of pixel (y, x).
func (m *Image) ColorAt(y, x int) rgb444.Color {
	p := m.At(y, x)
	return rgb444.Quantize(p.R, p.G, p.B)
}
