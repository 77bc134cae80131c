package compose

import (
	"image/color"
	"testing"

	"github.com/lumabooth/luma/pkg/filter"
)

func stripPixel(t *testing.T, buf *filter.Buffer, x, y int) color.NRGBA {
	t.Helper()
	i := (y*buf.Width + x) * 4
	return color.NRGBA{buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3]}
}

func TestRenderStripGeometry(t *testing.T) {
	photos := []StripPhoto{
		{Image: solidRed(4, 4)},
		{Image: solidRed(4, 4)},
	}

	flat, err := RenderStrip(photos, VintageRose, 1)
	if err != nil {
		t.Fatal(err)
	}
	if flat.Width != 800 {
		t.Errorf("want width 800, got %d", flat.Width)
	}
	// two frames of 600+80 each plus three padding gaps of 40
	if flat.Height != 2*(600+80+40)+40 {
		t.Errorf("want height 1480, got %d", flat.Height)
	}
}

func TestRenderStripEmptyRejected(t *testing.T) {
	if _, err := RenderStrip(nil, VintageRose, 1); err == nil {
		t.Fatal("empty strip should be rejected")
	}
}

func TestRenderStripThemeGradient(t *testing.T) {
	photos := []StripPhoto{{Image: solidRed(4, 4)}}

	flat, err := RenderStrip(photos, Wildflower, 1)
	if err != nil {
		t.Fatal(err)
	}

	top := stripPixel(t, flat, 400, 0)
	want := color.NRGBA{0xff, 0xfb, 0xeb, 0xff}
	if top != want {
		t.Errorf("top of gradient: want %v, got %v", want, top)
	}
	bottom := stripPixel(t, flat, 400, flat.Height-1)
	want = color.NRGBA{0xfe, 0xf3, 0xc7, 0xff}
	if bottom != want {
		t.Errorf("bottom of gradient: want %v, got %v", want, bottom)
	}
}

func TestRenderStripFrameAndPhoto(t *testing.T) {
	photos := []StripPhoto{{Image: solidRed(4, 4)}}

	flat, err := RenderStrip(photos, VintageRose, 1)
	if err != nil {
		t.Fatal(err)
	}

	// frame border, just inside the polaroid but outside the photo inset
	frame := stripPixel(t, flat, 24, 44)
	if frame != (color.NRGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("frame should be white, got %v", frame)
	}

	// center of the photo area
	photo := stripPixel(t, flat, 400, 40+10+290)
	if photo.R < 200 || photo.G > 50 || photo.B > 50 {
		t.Errorf("photo area should be red, got %v", photo)
	}
}

func TestRenderStripCaptionDrawn(t *testing.T) {
	photos := []StripPhoto{{Image: solidRed(4, 4), Caption: "beach day"}}

	flat, err := RenderStrip(photos, VintageRose, 1)
	if err != nil {
		t.Fatal(err)
	}

	// the caption band sits on the white frame, so any pixel well
	// below white there must be caption ink (or its resampled blend)
	found := false
	for y := 40 + 600; y < 40+600+80 && !found; y++ {
		for x := 200; x < 600; x++ {
			c := stripPixel(t, flat, x, y)
			if c.R < 200 && c.G < 200 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("caption ink not found under the photo frame")
	}
}

func TestRenderStripUnknownThemeFallsBack(t *testing.T) {
	photos := []StripPhoto{{Image: solidRed(4, 4)}}

	flat, err := RenderStrip(photos, StripTheme("disco"), 1)
	if err != nil {
		t.Fatal(err)
	}

	top := stripPixel(t, flat, 400, 0)
	want := color.NRGBA{0xff, 0xf5, 0xf5, 0xff}
	if top != want {
		t.Errorf("unknown theme should use the default palette, got %v", top)
	}
}

func TestStripThemeSuggestions(t *testing.T) {
	for _, theme := range StripThemes() {
		if !KnownStripTheme(theme) {
			t.Errorf("theme %s not registered", theme)
		}
		if len(theme.Suggestions()) == 0 {
			t.Errorf("theme %s has no caption suggestions", theme)
		}
	}
	if KnownStripTheme("disco") {
		t.Error("unregistered theme reported as known")
	}
}
