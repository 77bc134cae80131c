package editor

import (
	"bytes"
	"testing"

	"github.com/lumabooth/luma/pkg/filter"
)

func gradient(w, h int) *filter.Buffer {
	b := filter.NewBuffer(w, h)
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i] = uint8(i % 251)
		b.Pix[i+1] = uint8((i * 3) % 251)
		b.Pix[i+2] = uint8((i * 7) % 251)
		b.Pix[i+3] = 255
	}
	return b
}

func TestDefaultIsIdentity(t *testing.T) {
	src := gradient(8, 6)
	out, err := Apply(src, Default())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src.Pix, out.Pix) {
		t.Error("identity sliders changed pixels")
	}
	if !Default().Identity() {
		t.Error("Default should report Identity")
	}
	if (Adjustments{}).Identity() {
		t.Error("zero value must not report Identity")
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	// 2x1 image: red pixel left, blue pixel right.
	src := filter.NewBuffer(2, 1)
	copy(src.Pix, []uint8{255, 0, 0, 255, 0, 0, 255, 255})

	a := Default()
	a.QuarterTurns = 1
	out, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 1 || out.Height != 2 {
		t.Fatalf("want 1x2 after rotation, got %dx%d", out.Width, out.Height)
	}
	// clockwise: red ends up on top
	if out.Pix[0] != 255 || out.Pix[6] != 255 {
		t.Errorf("unexpected pixel order after rotation: %v", out.Pix)
	}
}

func TestRotateFourTurnsIsIdentity(t *testing.T) {
	src := gradient(5, 3)
	a := Default()
	a.QuarterTurns = 4
	out, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src.Pix, out.Pix) {
		t.Error("four quarter turns should be a no-op")
	}
}

func TestRotateNegativeTurns(t *testing.T) {
	src := gradient(4, 2)
	cw := Default()
	cw.QuarterTurns = 3
	ccw := Default()
	ccw.QuarterTurns = -1

	a, err := Apply(src, cw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Apply(src, ccw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("-1 turns should equal 3 turns")
	}
}

func TestBrightnessExtremes(t *testing.T) {
	src := gradient(4, 4)

	dark := Default()
	dark.Brightness = 0
	out, err := Apply(src, dark)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i] != 0 || out.Pix[i+1] != 0 || out.Pix[i+2] != 0 {
			t.Fatal("brightness 0 should black out every channel")
		}
		if out.Pix[i+3] != 255 {
			t.Fatal("alpha must pass through")
		}
	}
}

func TestSaturationZeroIsGrayscale(t *testing.T) {
	src := filter.NewBuffer(1, 1)
	copy(src.Pix, []uint8{200, 40, 90, 255})

	a := Default()
	a.Saturation = 0
	out, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Pix[0] != out.Pix[1] || out.Pix[1] != out.Pix[2] {
		t.Errorf("desaturated pixel should be gray, got %v", out.Pix[:3])
	}
}

func TestContrastPushesApart(t *testing.T) {
	src := filter.NewBuffer(2, 1)
	copy(src.Pix, []uint8{180, 180, 180, 255, 80, 80, 80, 255})

	a := Default()
	a.Contrast = 150
	out, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Pix[0] <= 180 {
		t.Errorf("bright pixel should rise, got %d", out.Pix[0])
	}
	if out.Pix[4] >= 80 {
		t.Errorf("dark pixel should fall, got %d", out.Pix[4])
	}
}

func TestCropPercentCoords(t *testing.T) {
	src := gradient(10, 10)
	a := Default()
	a.Crop = &CropBox{X: 25, Y: 25, Width: 50, Height: 50}

	out, err := Apply(src, a)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 5 || out.Height != 5 {
		t.Fatalf("want 5x5 crop, got %dx%d", out.Width, out.Height)
	}
	// top-left of the crop is source pixel (2,2)
	srcOff := (2*10 + 2) * 4
	if !bytes.Equal(out.Pix[:4], src.Pix[srcOff:srcOff+4]) {
		t.Error("crop origin mismatch")
	}
}

func TestCropOutOfRange(t *testing.T) {
	src := gradient(4, 4)
	a := Default()
	a.Crop = &CropBox{X: 60, Y: 0, Width: 50, Height: 50}

	if _, err := Apply(src, a); err == nil {
		t.Fatal("expected error for crop extending past the frame")
	}
}

func TestSourceUntouched(t *testing.T) {
	src := gradient(6, 6)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	a := Default()
	a.Brightness = 140
	a.QuarterTurns = 1
	if _, err := Apply(src, a); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, src.Pix) {
		t.Error("Apply mutated its input")
	}
}
