package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
)

func newImage(t *testing.T, width, height int) *bmp.Image {
	t.Helper()
	img, err := bmp.Create(width, height, 24)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = byte(i * 31)
	}
	return img
}

func TestGenerateIdentical(t *testing.T) {
	a := newImage(t, 5, 3) // 15 bytes per row, 1 padding byte
	b := a.Copy()

	out, err := Generate(a, b)
	require.NoError(t, err)

	l := out.Layout
	for row := 0; row < l.Height(); row++ {
		for i := 0; i < l.Width()*l.BytesPerPixel; i++ {
			assert.Zero(t, out.Pix[row*l.Stride+i])
		}
		// padding comes from b
		assert.Equal(t, b.Pix[row*l.Stride+15], out.Pix[row*l.Stride+15])
	}

	n, err := CountChanged(a, b)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateMarksChanges(t *testing.T) {
	a := newImage(t, 4, 2)
	b := a.Copy()
	b.Pix[0] ^= 1
	b.Pix[13] ^= 3

	out, err := Generate(a, b)
	require.NoError(t, err)

	want := make([]byte, len(a.Pix))
	want[0] = 1
	want[13] = 3
	if d := cmp.Diff(want, out.Pix); d != "" {
		t.Errorf("diff image mismatch (-want +got):\n%s", d)
	}

	// headers are untouched
	off := int(b.Layout.File.OffBits)
	assert.Equal(t, b.Bytes()[:off], out.Bytes()[:off])

	n, err := CountChanged(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGenerateLayoutMismatch(t *testing.T) {
	_, err := Generate(newImage(t, 4, 2), newImage(t, 5, 2))
	assert.ErrorIs(t, err, errLayoutMismatch)

	_, err = CountChanged(newImage(t, 4, 2), newImage(t, 4, 3))
	assert.ErrorIs(t, err, errLayoutMismatch)
}
