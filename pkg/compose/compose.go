// Package compose maintains the collage scene graph and flattens it to a
// raster. The scene is plain data (placed items with position, scale,
// rotation, z-order) and carries no rendering state; Flatten is the only
// operation that touches pixels.
package compose

import (
	"image/color"
	"math/rand"

	"github.com/lumabooth/luma/pkg/filter"
)

// Canvas defaults matching the original booth.
const (
	DefaultWidth  = 800
	DefaultHeight = 800

	// AddImage drops new photos somewhere in this band.
	randPosMin = 100
	randPosMax = 500

	defaultImageScale = 0.3
	stickerFontSize   = 60.0
	stickerJitter     = 50
)

// DefaultBackground is the booth's blush-paper canvas color (#e8dcd9).
var DefaultBackground = color.NRGBA{R: 0xe8, G: 0xdc, B: 0xd9, A: 0xff}

// Kind distinguishes the two item flavors.
type Kind int

const (
	KindImage Kind = iota
	KindGlyph
)

// Item is one placed element. X, Y locate the unrotated top-left corner;
// rotation pivots around the item center.
type Item struct {
	ID       int            `json:"id"`
	Kind     Kind           `json:"kind"`
	Image    *filter.Buffer `json:"-"`
	Glyph    string         `json:"glyph,omitempty"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Scale    float64        `json:"scale"`
	Rotation float64        `json:"rotation"` // degrees, clockwise
	Z        int            `json:"z"`
	Selected bool           `json:"selected"`
}

// Scene is the collage under construction. Not safe for concurrent use;
// the session service serializes access.
type Scene struct {
	Width      int
	Height     int
	Background color.NRGBA

	items  []*Item
	nextID int
	nextZ  int
	rng    *rand.Rand
}

// NewScene returns an empty default canvas. A nil rng gets a self-seeded
// one; tests pass a fixed seed for repeatable placement.
func NewScene(rng *rand.Rand) *Scene {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Scene{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
		rng:        rng,
	}
}

// Items returns the scene content in z-order, bottom first.
func (s *Scene) Items() []*Item {
	out := make([]*Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the item count.
func (s *Scene) Len() int { return len(s.items) }

// AddImage places a photo at a pseudo-random position and selects it.
func (s *Scene) AddImage(img *filter.Buffer) *Item {
	it := s.add(&Item{
		Kind:  KindImage,
		Image: img,
		X:     float64(randPosMin + s.rng.Intn(randPosMax-randPosMin)),
		Y:     float64(randPosMin + s.rng.Intn(randPosMax-randPosMin)),
		Scale: defaultImageScale,
	})
	return it
}

// AddSticker places a glyph near the canvas center with a small jitter.
func (s *Scene) AddSticker(glyph string) *Item {
	cx := float64(s.Width)/2 + float64(s.rng.Intn(2*stickerJitter+1)-stickerJitter)
	cy := float64(s.Height)/2 + float64(s.rng.Intn(2*stickerJitter+1)-stickerJitter)
	it := s.add(&Item{
		Kind:  KindGlyph,
		Glyph: glyph,
		X:     cx,
		Y:     cy,
		Scale: 1,
	})
	return it
}

func (s *Scene) add(it *Item) *Item {
	it.ID = s.nextID
	it.Z = s.nextZ
	s.nextID++
	s.nextZ++
	s.deselectAll()
	it.Selected = true
	s.items = append(s.items, it)
	return it
}

// Select marks the item with the given id active, deselecting the rest.
// Returns false when the id is unknown.
func (s *Scene) Select(id int) bool {
	var found *Item
	for _, it := range s.items {
		if it.ID == id {
			found = it
			break
		}
	}
	if found == nil {
		return false
	}
	s.deselectAll()
	found.Selected = true
	return true
}

func (s *Scene) deselectAll() {
	for _, it := range s.items {
		it.Selected = false
	}
}

// Active returns the selected item, or nil.
func (s *Scene) Active() *Item {
	for _, it := range s.items {
		if it.Selected {
			return it
		}
	}
	return nil
}

// RotateActive tilts the selected item by 15 degrees clockwise.
// Returns false when nothing is selected.
func (s *Scene) RotateActive() bool {
	it := s.Active()
	if it == nil {
		return false
	}
	it.Rotation += 15
	return true
}

// DeleteActive removes the selected item. Returns false when nothing is
// selected.
func (s *Scene) DeleteActive() bool {
	it := s.Active()
	if it == nil {
		return false
	}
	keep := s.items[:0]
	for _, other := range s.items {
		if other != it {
			keep = append(keep, other)
		}
	}
	s.items = keep
	return true
}

// Clear empties the scene.
func (s *Scene) Clear() {
	s.items = nil
}
