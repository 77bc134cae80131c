package compose

// Layout names are wire-stable; the UI persists the selection.
type Layout string

const (
	Freeform  Layout = "freeform"
	Grid2x2   Layout = "grid2x2"
	Grid3x3   Layout = "grid3x3"
	Scrapbook Layout = "scrapbook"
)

// scrapbookTilts cycles through the original's hand-placed angles.
var scrapbookTilts = []float64{-8, 5, -3, 7, -5, 4, -6, 3}

// scrapbook scatters over a wider band than AddImage uses
const scrapbookPosMax = 600

// grid geometry from the original 800x800 canvas
const (
	grid2Cell  = 350.0
	grid2Pad   = 50.0
	grid2Scale = 0.42
	grid2Cap   = 4

	grid3Cell  = 233.0
	grid3Pad   = 50.0
	grid3Scale = 0.27
	grid3Cap   = 9
)

// ApplyLayout rearranges the scene's photos. Glyph stickers stay where
// they are. Freeform rescatters photos across the placement band at the
// add-time defaults. Grid layouts hold a fixed number of photos; extras
// past the capacity are dropped from the scene without error. Unknown
// layout names behave like Freeform.
func (s *Scene) ApplyLayout(layout Layout) {
	switch layout {
	case Grid2x2:
		s.applyGrid(2, grid2Cell, grid2Pad, grid2Scale, grid2Cap)
	case Grid3x3:
		s.applyGrid(3, grid3Cell, grid3Pad, grid3Scale, grid3Cap)
	case Scrapbook:
		s.applyScrapbook()
	default:
		s.applyFreeform()
	}
}

func (s *Scene) applyFreeform() {
	for _, it := range s.items {
		if it.Kind != KindImage {
			continue
		}
		it.X = float64(randPosMin + s.rng.Intn(randPosMax-randPosMin))
		it.Y = float64(randPosMin + s.rng.Intn(randPosMax-randPosMin))
		it.Scale = defaultImageScale
		it.Rotation = 0
	}
}

func (s *Scene) applyGrid(cols int, cell, pad, scale float64, capacity int) {
	placed := 0
	keep := s.items[:0]
	for _, it := range s.items {
		if it.Kind != KindImage {
			keep = append(keep, it)
			continue
		}
		if placed >= capacity {
			continue // over capacity, dropped
		}
		col := placed % cols
		row := placed / cols
		it.X = pad + float64(col)*cell
		it.Y = pad + float64(row)*cell
		it.Scale = scale
		it.Rotation = 0
		placed++
		keep = append(keep, it)
	}
	s.items = keep
}

func (s *Scene) applyScrapbook() {
	i := 0
	for _, it := range s.items {
		if it.Kind != KindImage {
			continue
		}
		it.X = float64(randPosMin + s.rng.Intn(scrapbookPosMax-randPosMin))
		it.Y = float64(randPosMin + s.rng.Intn(scrapbookPosMax-randPosMin))
		it.Scale = 0.25 + s.rng.Float64()*0.15
		it.Rotation = scrapbookTilts[i%len(scrapbookTilts)]
		i++
	}
}
