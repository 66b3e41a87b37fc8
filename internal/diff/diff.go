// Diff builds debug images showing which pixel bytes of two bitmaps differ
package diff

import (
	"errors"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/utils"
)

var errLayoutMismatch = errors.New("diff: images do not share the same layout")

// Returns a copy of b whose pixel bytes are |a - b|. Headers and row padding of b are kept.
func Generate(a, b *bmp.Image) (*bmp.Image, error) {
	if !sameLayout(a.Layout, b.Layout) {
		return nil, errLayoutMismatch
	}

	out := b.Copy()
	rowBytes := b.Layout.Width() * b.Layout.BytesPerPixel

	// Iterate rows
	for row := 0; row < b.Layout.Height(); row++ {
		start := row * b.Layout.Stride
		// Iterate the pixel bytes in row (skip padding)
		for i := start; i < start+rowBytes; i++ {
			out.Pix[i] = utils.AbsDiff(a.Pix[i], b.Pix[i])
		}
	}

	return out, nil
}

// Counts the pixel bytes (excluding row padding) that differ between a and b
func CountChanged(a, b *bmp.Image) (int, error) {
	if !sameLayout(a.Layout, b.Layout) {
		return 0, errLayoutMismatch
	}

	changed := 0
	rowBytes := b.Layout.Width() * b.Layout.BytesPerPixel
	for row := 0; row < b.Layout.Height(); row++ {
		start := row * b.Layout.Stride
		for i := start; i < start+rowBytes; i++ {
			if a.Pix[i] != b.Pix[i] {
				changed++
			}
		}
	}
	return changed, nil
}

func sameLayout(a, b *bmp.Layout) bool {
	return a.Info.Width == b.Info.Width &&
		a.Info.Height == b.Info.Height &&
		a.BytesPerPixel == b.BytesPerPixel &&
		a.Stride == b.Stride
}
