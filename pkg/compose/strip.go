package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/lumabooth/luma/pkg/filter"
)

// Strip geometry, matching the original download canvas.
const (
	stripWidth       = 800
	stripPhotoHeight = 600
	stripPadding     = 40
	stripCaptionGap  = 80
)

// StripTheme selects a bouquet background for a rendered strip.
type StripTheme string

const (
	VintageRose    StripTheme = "vintage-rose"
	LavenderDreams StripTheme = "lavender-dreams"
	Wildflower     StripTheme = "wildflower"
	GardenParty    StripTheme = "garden-party"
	CherryBlossom  StripTheme = "cherry-blossom"
)

// DefaultStripTheme backs unknown theme names.
const DefaultStripTheme = VintageRose

type stripPalette struct {
	start, end  color.NRGBA
	mark        string
	suggestions []string
}

var stripPalettes = map[StripTheme]stripPalette{
	VintageRose: {
		start: color.NRGBA{0xff, 0xf5, 0xf5, 0xff},
		end:   color.NRGBA{0xff, 0xe4, 0xe6, 0xff},
		mark:  "🌹",
		suggestions: []string{
			"like a rose in bloom 🌹", "timeless beauty",
			"vintage hearts forever", "romantic memories", "in full bloom",
		},
	},
	LavenderDreams: {
		start: color.NRGBA{0xfa, 0xf5, 0xff, 0xff},
		end:   color.NRGBA{0xf3, 0xe8, 0xff, 0xff},
		mark:  "💜",
		suggestions: []string{
			"dreaming in lavender 💜", "soft purple haze",
			"ethereal moments", "gentle dreams", "lavender fields forever",
		},
	},
	Wildflower: {
		start: color.NRGBA{0xff, 0xfb, 0xeb, 0xff},
		end:   color.NRGBA{0xfe, 0xf3, 0xc7, 0xff},
		mark:  "🌼",
		suggestions: []string{
			"wild & free 🌼", "sunshine moments",
			"golden hour magic", "blooming beautiful", "free spirit energy",
		},
	},
	GardenParty: {
		start: color.NRGBA{0xfd, 0xf4, 0xff, 0xff},
		end:   color.NRGBA{0xfa, 0xe8, 0xff, 0xff},
		mark:  "🌸",
		suggestions: []string{
			"garden of dreams 🌸", "floral fantasy",
			"blooming together", "petal perfect", "in the garden",
		},
	},
	CherryBlossom: {
		start: color.NRGBA{0xfc, 0xe7, 0xf3, 0xff},
		end:   color.NRGBA{0xfb, 0xcf, 0xe8, 0xff},
		mark:  "🌸",
		suggestions: []string{
			"cherry blossom kisses 🌸", "sakura season",
			"delicate moments", "spring in my heart", "blossom & bloom",
		},
	},
}

// StripThemes lists the theme names in display order.
func StripThemes() []StripTheme {
	return []StripTheme{VintageRose, LavenderDreams, Wildflower, GardenParty, CherryBlossom}
}

// KnownStripTheme reports whether name is a registered theme.
func KnownStripTheme(name StripTheme) bool {
	_, ok := stripPalettes[name]
	return ok
}

// Suggestions returns the theme's canned caption ideas.
func (t StripTheme) Suggestions() []string {
	pal, ok := stripPalettes[t]
	if !ok {
		pal = stripPalettes[DefaultStripTheme]
	}
	out := make([]string, len(pal.suggestions))
	copy(out, pal.suggestions)
	return out
}

// StripPhoto is one framed photo in a strip: the shot itself, a caption
// under the frame, and any sticker glyphs pinned along the edges.
type StripPhoto struct {
	Image   *filter.Buffer
	Caption string
	Glyphs  []string
}

var (
	stripFrame   = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	stripShadow  = color.NRGBA{0x00, 0x00, 0x00, 0x1a}
	captionInk   = color.NRGBA{0x8b, 0x5a, 0x6b, 0xff}
	doodleInk    = color.NRGBA{0xf4, 0xa6, 0xc1, 0xff}
	watermarkInk = color.NRGBA{0x5a, 0x46, 0x50, 0x26}
)

// stickerSlots holds the edge positions a photo's glyphs cycle through,
// relative to the frame's top edge.
var stickerSlots = [8][2]float64{
	{stripPadding/2 - 15, 40},
	{stripWidth - stripPadding/2 + 5, 60},
	{stripPadding/2 - 10, 150},
	{stripWidth - stripPadding/2 + 8, 200},
	{stripPadding/2 - 12, 300},
	{stripWidth - stripPadding/2 + 10, 350},
	{stripPadding/2 - 8, stripPhotoHeight - 50},
	{stripWidth - stripPadding/2 + 5, stripPhotoHeight - 80},
}

// RenderStrip flattens a capture session into one vertical keepsake
// strip: polaroid-framed photos over a themed gradient, captions under
// each frame, sticker glyphs along the edges, theme marks watermarked in
// the corners. Rendered at multiplier times the 800-wide canvas.
func RenderStrip(photos []StripPhoto, theme StripTheme, multiplier int) (*filter.Buffer, error) {
	if len(photos) == 0 {
		return nil, errors.New("strip: no photos")
	}
	pal, ok := stripPalettes[theme]
	if !ok {
		pal = stripPalettes[DefaultStripTheme]
	}
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	m := float64(multiplier)

	canvasH := len(photos)*(stripPhotoHeight+stripCaptionGap+stripPadding) + stripPadding
	w, h := stripWidth*multiplier, canvasH*multiplier
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	fillGradient(dst, pal.start, pal.end)

	// theme watermarks in the four corners
	drawStripGlyph(dst, pal.mark, 20, 10, 40, m, watermarkInk)
	drawStripGlyph(dst, pal.mark, stripWidth-60, 10, 40, m, watermarkInk)
	drawStripGlyph(dst, pal.mark, 20, float64(canvasH)-50, 40, m, watermarkInk)
	drawStripGlyph(dst, pal.mark, stripWidth-60, float64(canvasH)-50, 40, m, watermarkInk)

	for i, p := range photos {
		yPos := float64(stripPadding + i*(stripPhotoHeight+stripCaptionGap+stripPadding))

		frame := rectAt(stripPadding/2, yPos, stripWidth-stripPadding, stripPhotoHeight+stripCaptionGap, m)
		fillRect(dst, frame.Add(image.Pt(3*multiplier, 3*multiplier)), stripShadow)
		fillRect(dst, frame, stripFrame)

		if p.Image != nil {
			if err := p.Image.Validate(); err != nil {
				return nil, fmt.Errorf("strip photo %d: %w", i, err)
			}
			inner := rectAt(stripPadding/2+10, yPos+10, stripWidth-stripPadding-20, stripPhotoHeight-20, m)
			src := p.Image.Image()
			draw.ApproxBiLinear.Scale(dst, inner, src, src.Bounds(), draw.Over, nil)
		}

		for gi, glyph := range p.Glyphs {
			if gi >= len(stickerSlots) {
				break
			}
			slot := stickerSlots[gi]
			drawStripGlyph(dst, glyph, slot[0], yPos+slot[1], 25, m, glyphInk)
		}

		strokeCircle(dst, stripPadding/2+25, yPos+25, 8, m, doodleInk)

		if p.Caption != "" {
			drawCaptionCentered(dst, p.Caption, stripWidth/2, yPos+stripPhotoHeight+24, 24, m)
		}
	}

	// the first photo's glyphs decorate the top margin, the last one's
	// the bottom
	for gi, glyph := range photos[0].Glyphs {
		if gi >= 4 {
			break
		}
		drawStripGlyph(dst, glyph, 50+float64(gi)*200, 5, 25, m, glyphInk)
	}
	for gi, glyph := range photos[len(photos)-1].Glyphs {
		if gi >= 4 {
			break
		}
		drawStripGlyph(dst, glyph, 100+float64(gi)*200, float64(canvasH)-35, 25, m, glyphInk)
	}

	return filter.FromImage(dst), nil
}

// fillGradient paints a top-to-bottom linear blend across the canvas.
func fillGradient(dst *image.NRGBA, start, end color.NRGBA) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		c := lerpColor(start, end, t)
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			row[x] = c.R
			row[x+1] = c.G
			row[x+2] = c.B
			row[x+3] = 0xff
		}
	}
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xff}
}

// rectAt converts a canvas-space rectangle to device pixels.
func rectAt(x, y, w, h, m float64) image.Rectangle {
	return image.Rect(int(x*m), int(y*m), int((x+w)*m), int((y+h)*m))
}

func fillRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawStripGlyph places a glyph with its top-left at canvas (x, y),
// scaled to the given point size.
func drawStripGlyph(dst *image.NRGBA, glyph string, x, y, size, m float64, ink color.NRGBA) {
	raster := renderGlyphInk(glyph, ink)
	if raster == nil {
		return
	}
	scale := size * m / float64(raster.Bounds().Dy())
	drawTransformed(dst, raster, x*m, y*m, scale, 0)
}

// drawCaptionCentered writes text centered on canvas x at the given top.
func drawCaptionCentered(dst *image.NRGBA, text string, centerX, top, size, m float64) {
	raster := renderGlyphInk(text, captionInk)
	if raster == nil {
		return
	}
	scale := size * m / float64(raster.Bounds().Dy())
	w := float64(raster.Bounds().Dx()) * scale
	drawTransformed(dst, raster, centerX*m-w/2, top*m, scale, 0)
}

// strokeCircle draws the hand-doodled ring near a frame corner.
func strokeCircle(dst *image.NRGBA, cx, cy, r, m float64, ink color.NRGBA) {
	steps := int(2 * math.Pi * r * m)
	if steps < 12 {
		steps = 12
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int((cx + r*math.Cos(a)) * m)
		y := int((cy + r*math.Sin(a)) * m)
		for dx := 0; dx < 2; dx++ {
			for dy := 0; dy < 2; dy++ {
				if pt := image.Pt(x+dx, y+dy); pt.In(dst.Bounds()) {
					dst.SetNRGBA(pt.X, pt.Y, ink)
				}
			}
		}
	}
}
