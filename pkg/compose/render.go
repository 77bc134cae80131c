package compose

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/lumabooth/luma/pkg/filter"
)

// DefaultMultiplier is the export supersampling factor.
const DefaultMultiplier = 2

// glyphInk is the sticker rendering color, a muted plum that reads well
// on the blush canvas.
var glyphInk = color.NRGBA{R: 0x5a, G: 0x46, B: 0x50, A: 0xff}

// Flatten renders the scene to a raster at multiplier times the canvas
// size and returns it as an RGBA buffer. Selection state is cleared
// first so no selection chrome can leak into an export.
func (s *Scene) Flatten(multiplier int) (*filter.Buffer, error) {
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	s.deselectAll()

	m := float64(multiplier)
	dst := image.NewNRGBA(image.Rect(0, 0, s.Width*multiplier, s.Height*multiplier))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.Background), image.Point{}, draw.Src)

	ordered := s.Items()
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })

	for _, it := range ordered {
		switch it.Kind {
		case KindImage:
			if it.Image == nil {
				continue
			}
			if err := it.Image.Validate(); err != nil {
				return nil, fmt.Errorf("flatten item %d: %w", it.ID, err)
			}
			drawTransformed(dst, it.Image.Image(), it.X*m, it.Y*m, it.Scale*m, it.Rotation)
		case KindGlyph:
			raster := renderGlyph(it.Glyph)
			if raster == nil {
				continue
			}
			// glyph coordinates are the sticker center
			target := stickerFontSize * it.Scale * m
			scale := target / float64(raster.Bounds().Dy())
			w := float64(raster.Bounds().Dx()) * scale
			drawTransformed(dst, raster, it.X*m-w/2, it.Y*m-target/2, scale, it.Rotation)
		}
	}

	return filter.FromImage(dst), nil
}

// drawTransformed composites src onto dst scaled then rotated around its
// center, with the unrotated top-left corner landing at (x, y).
func drawTransformed(dst *image.NRGBA, src image.Image, x, y, scale, rotation float64) {
	if scale <= 0 {
		return
	}
	b := src.Bounds()
	cx := float64(b.Dx()) * scale / 2
	cy := float64(b.Dy()) * scale / 2

	rad := rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	aff := f64.Aff3{
		cos * scale, -sin * scale, x + cx - cos*cx + sin*cy,
		sin * scale, cos * scale, y + cy - sin*cx - cos*cy,
	}
	draw.ApproxBiLinear.Transform(dst, aff, src, b, draw.Over, nil)
}

// renderGlyph rasterizes a sticker glyph with the built-in bitmap face.
// The tiny face is scaled up at flatten time, giving stickers the chunky
// pixel look the booth uses everywhere.
func renderGlyph(glyph string) *image.NRGBA {
	return renderGlyphInk(glyph, glyphInk)
}

func renderGlyphInk(glyph string, ink color.NRGBA) *image.NRGBA {
	if glyph == "" {
		return nil
	}
	face := basicfont.Face7x13
	width := font.MeasureString(face, glyph).Ceil()
	if width <= 0 {
		return nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, face.Height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(glyph)
	return img
}
