// Package editor applies single-photo adjustments between capture and
// save: rotation in quarter turns, brightness/contrast/saturation sliders,
// and an optional percent-coordinate crop. All passes are pure and clamped.
package editor

import (
	"fmt"

	"github.com/lumabooth/luma/pkg/filter"
)

// Adjustments is one editing pass. Slider values are percentages where
// 100 is the identity; the zero value of Crop means no crop.
type Adjustments struct {
	QuarterTurns int      `json:"quarterTurns"` // clockwise 90-degree steps
	Brightness   float64  `json:"brightness"`   // 0..200, 100 = identity
	Contrast     float64  `json:"contrast"`     // 0..200, 100 = identity
	Saturation   float64  `json:"saturation"`   // 0..200, 100 = identity
	Crop         *CropBox `json:"crop,omitempty"`
}

// CropBox selects a sub-rectangle in percent coordinates, so the same
// crop applies to any resolution of the same shot.
type CropBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Default returns the identity pass, matching the editor's initial
// slider positions. Note the zero value is NOT the identity: a zero
// brightness slider means fully dark.
func Default() Adjustments {
	return Adjustments{Brightness: 100, Contrast: 100, Saturation: 100}
}

// Identity reports whether applying a would leave any buffer unchanged.
func (a Adjustments) Identity() bool {
	return a.QuarterTurns%4 == 0 &&
		a.Brightness == 100 && a.Contrast == 100 && a.Saturation == 100 &&
		a.Crop == nil
}

// Apply runs the editing pass and returns the result. The input buffer
// is not modified. Order: crop, rotate, then the color sliders.
func Apply(src *filter.Buffer, a Adjustments) (*filter.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	out := src.Clone()

	if a.Crop != nil {
		cropped, err := crop(out, *a.Crop)
		if err != nil {
			out.Recycle()
			return nil, err
		}
		out.Recycle()
		out = cropped
	}

	if turns := ((a.QuarterTurns % 4) + 4) % 4; turns != 0 {
		rotated := rotate(out, turns)
		out.Recycle()
		out = rotated
	}

	adjustColors(out, a)
	return out, nil
}

func crop(src *filter.Buffer, box CropBox) (*filter.Buffer, error) {
	if box.X < 0 || box.Y < 0 || box.Width <= 0 || box.Height <= 0 ||
		box.X+box.Width > 100 || box.Y+box.Height > 100 {
		return nil, fmt.Errorf("editor: crop box %+v out of range", box)
	}

	x0 := int(box.X / 100 * float64(src.Width))
	y0 := int(box.Y / 100 * float64(src.Height))
	w := int(box.Width / 100 * float64(src.Width))
	h := int(box.Height / 100 * float64(src.Height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if x0+w > src.Width {
		w = src.Width - x0
	}
	if y0+h > src.Height {
		h = src.Height - y0
	}

	dst := filter.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		srcOff := ((y0+y)*src.Width + x0) * 4
		copy(dst.Pix[y*w*4:(y+1)*w*4], src.Pix[srcOff:srcOff+w*4])
	}
	return dst, nil
}

// rotate turns the buffer clockwise by turns*90 degrees, turns in 1..3.
func rotate(src *filter.Buffer, turns int) *filter.Buffer {
	w, h := src.Width, src.Height

	var dst *filter.Buffer
	switch turns {
	case 2:
		dst = filter.NewBuffer(w, h)
	default:
		dst = filter.NewBuffer(h, w)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch turns {
			case 1:
				dx, dy = h-1-y, x
			case 2:
				dx, dy = w-1-x, h-1-y
			case 3:
				dx, dy = y, w-1-x
			}
			si := (y*w + x) * 4
			di := (dy*dst.Width + dx) * 4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

func adjustColors(buf *filter.Buffer, a Adjustments) {
	bf := clampSlider(a.Brightness) / 100
	cf := clampSlider(a.Contrast) / 100
	sf := clampSlider(a.Saturation) / 100
	if bf == 1 && cf == 1 && sf == 1 {
		return
	}

	pix := buf.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r := float64(pix[i])
		g := float64(pix[i+1])
		b := float64(pix[i+2])

		r, g, b = r*bf, g*bf, b*bf

		r = (r-128)*cf + 128
		g = (g-128)*cf + 128
		b = (b-128)*cf + 128

		if sf != 1 {
			// Rec. 601 luma keeps perceived lightness stable as color drains.
			gray := 0.299*r + 0.587*g + 0.114*b
			r = gray + (r-gray)*sf
			g = gray + (g-gray)*sf
			b = gray + (b-gray)*sf
		}

		pix[i] = clamp8(r)
		pix[i+1] = clamp8(g)
		pix[i+2] = clamp8(b)
	}
}

func clampSlider(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 200 {
		return 200
	}
	return v
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
