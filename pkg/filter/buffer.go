// Package filter implements the per-pixel color grading engine.
// Each filter is a fixed arithmetic recipe over (R, G, B); alpha passes
// through untouched and every output channel is clamped to [0, 255].
package filter

import (
	"fmt"
	"image"

	"github.com/lumabooth/luma/pkg/pool"
)

// Buffer is a rectangular RGBA pixel grid, 4 bytes per pixel.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8 // len == Width*Height*4, row-major RGBA
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Clone returns a deep copy backed by a pooled slab.
// Release the copy with Recycle when it goes out of scope.
func (b *Buffer) Clone() *Buffer {
	pix := pool.GetPix(len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Recycle returns the pixel slab to the pool. The buffer must not be used after.
func (b *Buffer) Recycle() {
	if b.Pix != nil {
		pool.PutPix(b.Pix)
		b.Pix = nil
	}
}

// Validate checks that the pixel slab matches the declared dimensions.
func (b *Buffer) Validate() error {
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("buffer %dx%d: want %d bytes, got %d", b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// FromImage converts any image into an RGBA buffer.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == w*4 {
		b := NewBuffer(w, h)
		copy(b.Pix, nrgba.Pix)
		return b
	}

	b := NewBuffer(w, h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			b.Pix[i] = uint8(r >> 8)
			b.Pix[i+1] = uint8(g >> 8)
			b.Pix[i+2] = uint8(bl >> 8)
			b.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return b
}

// Image wraps the buffer as an *image.NRGBA sharing the same pixel slab.
func (b *Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
