package filter

import (
	"math"
	"math/rand"
)

// Name identifies a filter recipe.
type Name string

// The full filter roster. Names are wire-stable: the UI persists them.
const (
	GoldenHour    Name = "golden-hour"
	SoftDream     Name = "soft-dream"
	BlueVelvet    Name = "blue-velvet"
	DustyFilm     Name = "dusty-film"
	RoseGlow      Name = "rose-glow"
	Dreamy        Name = "dreamy"
	WarmFilm      Name = "warm-film"
	PinkHaze      Name = "pink-haze"
	VintageGrain  Name = "vintage-grain"
	AngelGlow     Name = "angel-glow"
	MoodyBlue     Name = "moody-blue"
	LavenderDream Name = "lavender-dream"
	PeachCream    Name = "peach-cream"
	MintFrost     Name = "mint-frost"
	SunsetAmber   Name = "sunset-amber"
	VelvetNoir    Name = "velvet-noir"
	PearlShimmer  Name = "pearl-shimmer"
	CherryBlossom Name = "cherry-blossom"
)

// Info describes a filter for selection UIs.
type Info struct {
	Name        Name   `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// recipe is a per-pixel arithmetic plan.
//
// Evaluation order per pixel: optionally rebase channels on the pixel
// average (sepia-style), then scale+offset, clamp, optional grayscale
// blend toward the average, optional contrast split, optional shimmer
// oscillation, optional grain noise, final clamp.
type recipe struct {
	fromAvg  bool       // base all channels on the pixel average first
	scale    [3]float64 // per-channel multiplier
	offset   [3]float64 // per-channel additive offset
	blend    float64    // grayscale blend weight toward average (0 = off)
	contrast bool       // bright/dark split: >128 boosted, <=128 crushed
	shimmer  float64    // sinusoidal oscillation amplitude (0 = off)
	grain    float64    // uniform noise amplitude (0 = off)
}

var recipes = map[Name]recipe{
	GoldenHour:    {scale: [3]float64{1.25, 1.15, 0.75}, offset: [3]float64{25, 15, 0}},
	SoftDream:     {scale: [3]float64{1.1, 1.08, 1.05}, offset: [3]float64{30, 25, 20}, blend: 0.3},
	BlueVelvet:    {scale: [3]float64{0.85, 0.95, 1.2}, offset: [3]float64{0, 10, 20}},
	DustyFilm:     {fromAvg: true, scale: [3]float64{1.1, 1.0, 0.85}, offset: [3]float64{15, 10, 0}, grain: 25},
	RoseGlow:      {scale: [3]float64{1.2, 1.0, 1.05}, offset: [3]float64{30, 10, 15}},
	Dreamy:        {scale: [3]float64{1.12, 1.05, 0.95}, offset: [3]float64{20, 12, 8}},
	WarmFilm:      {fromAvg: true, scale: [3]float64{1.15, 1.0, 0.8}, offset: [3]float64{20, 10, 0}},
	PinkHaze:      {scale: [3]float64{1.25, 0.95, 1.1}, offset: [3]float64{35, 5, 20}},
	VintageGrain:  {fromAvg: true, scale: [3]float64{1.05, 0.95, 0.85}, grain: 30},
	AngelGlow:     {scale: [3]float64{1.3, 1.25, 1.2}, offset: [3]float64{40, 35, 30}, blend: 0.4},
	MoodyBlue:     {scale: [3]float64{0.7, 0.9, 1.3}, offset: [3]float64{0, 5, 25}},
	LavenderDream: {scale: [3]float64{1.15, 1.0, 1.25}, offset: [3]float64{25, 10, 35}, blend: 0.25},
	PeachCream:    {scale: [3]float64{1.2, 1.1, 0.9}, offset: [3]float64{30, 20, 5}},
	MintFrost:     {scale: [3]float64{0.95, 1.15, 1.1}, offset: [3]float64{10, 20, 15}},
	SunsetAmber:   {scale: [3]float64{1.3, 1.15, 0.6}, offset: [3]float64{35, 20, 0}},
	VelvetNoir:    {scale: [3]float64{0.6, 0.65, 0.7}, offset: [3]float64{0, 0, 10}, contrast: true},
	PearlShimmer:  {scale: [3]float64{1.25, 1.2, 1.18}, offset: [3]float64{30, 28, 25}, shimmer: 15},
	CherryBlossom: {scale: [3]float64{1.18, 1.05, 1.12}, offset: [3]float64{28, 15, 20}},
}

// infos preserves the presentation order of the original filter picker.
var infos = []Info{
	{GoldenHour, "Golden Hour", "Warm glowing sunset tone"},
	{SoftDream, "Soft Dream", "Creamy blur with haze"},
	{BlueVelvet, "Blue Velvet", "Cool moody lighting"},
	{DustyFilm, "Dusty Film", "Vintage fade with grain"},
	{RoseGlow, "Rose Glow", "Soft pink highlight"},
	{Dreamy, "Dreamy Soft", "Ethereal romantic glow"},
	{WarmFilm, "Warm Vintage", "Sepia autumn warmth"},
	{PinkHaze, "Soft Pink", "Dreamy pink filter"},
	{VintageGrain, "Film Grain", "Classic film texture"},
	{AngelGlow, "Angel Glow", "Heavenly soft light"},
	{MoodyBlue, "Moody Blue", "Deep blue atmosphere"},
	{LavenderDream, "Lavender Dream", "Soft purple romantic haze"},
	{PeachCream, "Peach Cream", "Warm peachy glow"},
	{MintFrost, "Mint Frost", "Cool mint fresh tone"},
	{SunsetAmber, "Sunset Amber", "Rich golden amber glow"},
	{VelvetNoir, "Velvet Noir", "Dramatic dark elegance"},
	{PearlShimmer, "Pearl Shimmer", "Iridescent pearl effect"},
	{CherryBlossom, "Cherry Blossom", "Delicate spring pink"},
}

// All returns every filter in presentation order.
func All() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}

// Known reports whether name maps to a defined recipe.
func Known(name Name) bool {
	_, ok := recipes[name]
	return ok
}

// Deterministic reports whether the filter is byte-for-byte repeatable.
// The two grain filters inject noise and are exempt from the
// repeatability guarantee.
func Deterministic(name Name) bool {
	r, ok := recipes[name]
	return !ok || r.grain == 0
}

// Apply transforms the buffer in place with the named filter.
// Unknown names are the identity transform: capture flows must survive a
// bad selection. Grain noise draws from the shared math/rand source; use
// ApplyWithRand to pin it.
func Apply(buf *Buffer, name Name) {
	ApplyWithRand(buf, name, nil)
}

// ApplyWithRand is Apply with an explicit noise source for the grain
// filters. A nil rng falls back to the shared source.
func ApplyWithRand(buf *Buffer, name Name, rng *rand.Rand) {
	r, ok := recipes[name]
	if !ok {
		return
	}

	noise := func() float64 { return rand.Float64() }
	if rng != nil {
		noise = rng.Float64
	}

	pix := buf.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r0, g0, b0 := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])

		if r.fromAvg {
			avg := (r0 + g0 + b0) / 3
			r0, g0, b0 = avg, avg, avg
		}

		r1 := clamp(r0*r.scale[0] + r.offset[0])
		g1 := clamp(g0*r.scale[1] + r.offset[1])
		b1 := clamp(b0*r.scale[2] + r.offset[2])

		if r.blend > 0 {
			avg := (r1 + g1 + b1) / 3
			keep := 1 - r.blend
			r1 = r1*keep + avg*r.blend
			g1 = g1*keep + avg*r.blend
			b1 = b1*keep + avg*r.blend
		}

		if r.contrast {
			avg := (r1 + g1 + b1) / 3
			if avg > 128 {
				r1, g1, b1 = r1*1.1, g1*1.1, b1*1.1
			} else {
				r1, g1, b1 = r1*0.8, g1*0.8, b1*0.8
			}
		}

		if r.shimmer > 0 {
			s := math.Sin(float64(i)*0.01) * r.shimmer
			r1, g1, b1 = r1+s, g1+s, b1+s
		}

		if r.grain > 0 {
			n := (noise() - 0.5) * r.grain
			r1, g1, b1 = r1+n, g1+n, b1+n
		}

		pix[i] = uint8(clamp(r1))
		pix[i+1] = uint8(clamp(g1))
		pix[i+2] = uint8(clamp(b1))
		// alpha untouched
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
