// Package signature computes compact color signatures for saved memories.
// A signature is a 4x4x4 RGB histogram (64 dims, L1-normalized): coarse
// enough to be tiny, stable enough that two shots of the same scene land
// near each other in the vec0 index.
package signature

import (
	"fmt"

	"github.com/lumabooth/luma/pkg/filter"
)

// Dim is the signature dimensionality. Must match store.SignatureDim.
const Dim = 64

// bits per channel: 4 buckets -> top 2 bits of each 8-bit channel.
const bucketShift = 6

// FromBuffer computes the color signature of an RGBA buffer.
// Fully transparent pixels are skipped so stickers on empty canvas
// regions don't skew the histogram.
func FromBuffer(buf *filter.Buffer) ([]float32, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	var counts [Dim]float64
	total := 0.0

	pix := buf.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] == 0 {
			continue
		}
		r := int(pix[i]) >> bucketShift
		g := int(pix[i+1]) >> bucketShift
		b := int(pix[i+2]) >> bucketShift
		counts[r<<4|g<<2|b]++
		total++
	}

	sig := make([]float32, Dim)
	if total == 0 {
		return sig, nil
	}
	for i, c := range counts {
		sig[i] = float32(c / total)
	}
	return sig, nil
}
