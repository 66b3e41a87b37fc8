package stego

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/progress"
)

// newCarrier returns a bitmap filled with noise, padding bytes included.
func newCarrier(t *testing.T, width, height, bitDepth int, seed int64) *bmp.Image {
	t.Helper()
	img, err := bmp.Create(width, height, bitDepth)
	require.NoError(t, err)
	rand.New(rand.NewSource(seed)).Read(img.Pix)
	return img
}

// bitmapPayload returns a real bitmap file, as produced by the x/image encoder.
func bitmapPayload(t *testing.T, width, height int) []byte {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, color.RGBA{uint8(17 * x), uint8(29 * y), uint8(x ^ y), 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, xbmp.Encode(&buf, m))
	return buf.Bytes()
}

func roundTrip(t *testing.T, carrier *bmp.Image, payload []byte) ([]byte, Density) {
	t.Helper()
	d, err := PlanDensity(carrier.Layout.PixelArea(), int64(len(payload)))
	require.NoError(t, err)

	merged := carrier.Copy()
	require.NoError(t, Embed(merged.Pix, merged.Layout, payload, d, nil))

	got, err := Extract(merged.Copy().Pix, merged.Layout, nil)
	require.NoError(t, err)
	return got, d
}

func TestRoundTripDensities(t *testing.T) {
	payload := bitmapPayload(t, 4, 4) // 102 bytes

	tests := []struct {
		width, height int
		want          Density
	}{
		{32, 32, Density1},
		{20, 10, Density2},
		{10, 8, Density4},
	}
	for _, test := range tests {
		carrier := newCarrier(t, test.width, test.height, 24, 1)
		got, d := roundTrip(t, carrier, payload)

		assert.Equal(t, test.want, d, "%dx%d", test.width, test.height)
		if diff := cmp.Diff(payload, got); diff != "" {
			t.Errorf("%dx%d: payload mismatch (-want +got):\n%s", test.width, test.height, diff)
		}
	}
}

func TestRoundTripLayouts(t *testing.T) {
	payload := bitmapPayload(t, 3, 2)

	for _, depth := range []int{8, 16, 24, 32} {
		for width := 9; width <= 13; width++ { // every padding for 8 and 24 bits
			carrier := newCarrier(t, width, 40, depth, int64(width))
			got, _ := roundTrip(t, carrier, payload)
			assert.Equal(t, payload, got, "width %d, depth %d", width, depth)
		}
	}
}

func TestRoundTripOddPayloadSizes(t *testing.T) {
	carrier := newCarrier(t, 30, 30, 24, 7)

	for _, extra := range []int{0, 1, 5, 333} {
		payload := bitmapPayload(t, 2, 2)
		payload = append(payload, bytes.Repeat([]byte{0xa5}, extra)...)
		binary.LittleEndian.PutUint32(payload[2:6], uint32(len(payload)))

		got, _ := roundTrip(t, carrier, payload)
		assert.Equal(t, payload, got, "extra %d", extra)
	}
}

func TestEmbedTouchesOnlyLowBitsOfLeadingBytes(t *testing.T) {
	// 10 bytes at one bit each plus the tag: only the first 83 bytes may change
	carrier := newCarrier(t, 64, 64, 24, 3)
	payload := []byte("0123456789")

	d, err := PlanDensity(carrier.Layout.PixelArea(), int64(len(payload)))
	require.NoError(t, err)
	require.Equal(t, Density1, d)

	merged := carrier.Copy()
	require.NoError(t, Embed(merged.Pix, merged.Layout, payload, d, nil))

	n := len(payload)*8 + TagBits
	for i := range merged.Pix {
		if i < n {
			assert.Equal(t, carrier.Pix[i]&0xFE, merged.Pix[i]&0xFE, "byte %d", i)
		} else {
			require.Equal(t, carrier.Pix[i], merged.Pix[i], "byte %d", i)
		}
	}

	// headers are untouched
	off := carrier.Layout.File.OffBits
	assert.Equal(t, carrier.Bytes()[:off], merged.Bytes()[:off])

	// the payload bits read back LSB first
	for i, c := range payload {
		var b byte
		for k := 0; k < 8; k++ {
			b |= (merged.Pix[TagBits+i*8+k] & 1) << k
		}
		assert.Equal(t, c, b)
	}
}

func TestEmbedLeavesPaddingAlone(t *testing.T) {
	payload := bitmapPayload(t, 3, 3)

	for width := 20; width < 24; width++ { // 0, 1, 2, 3 bytes of padding
		carrier := newCarrier(t, width, 20, 24, int64(width))
		l := carrier.Layout
		rowBytes := l.Width() * l.BytesPerPixel

		merged := carrier.Copy()
		require.NoError(t, Embed(merged.Pix, l, payload, Density4, nil))
		restored := merged.Copy()
		_, err := Extract(restored.Pix, l, nil)
		require.NoError(t, err)

		for row := 0; row < l.Height(); row++ {
			for i := row*l.Stride + rowBytes; i < (row+1)*l.Stride; i++ {
				require.Equal(t, carrier.Pix[i], merged.Pix[i], "width %d, padding byte %d", width, i)
				require.Equal(t, carrier.Pix[i], restored.Pix[i], "width %d, padding byte %d", width, i)
			}
		}
	}
}

func TestExtractRestores(t *testing.T) {
	carrier := newCarrier(t, 16, 16, 24, 11)
	payload := bitmapPayload(t, 2, 3)

	merged := carrier.Copy()
	require.NoError(t, Embed(merged.Pix, merged.Layout, payload, Density2, nil))
	restored := merged.Copy()
	got, err := Extract(restored.Pix, restored.Layout, nil)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// bytes that carried the payload have their low bits cleared, everything else is as merged
	visited := map[int]bool{}
	it := NewIterator(carrier.Layout)
	for n := 0; n < len(payload)*4; n++ {
		off, _ := it.Next()
		visited[off] = true
	}
	for i := range restored.Pix {
		if visited[i] {
			assert.Equal(t, carrier.Pix[i]&^3, restored.Pix[i], "byte %d", i)
		} else {
			assert.Equal(t, merged.Pix[i], restored.Pix[i], "byte %d", i)
		}
	}
}

func TestEmbedEmptyPayload(t *testing.T) {
	carrier := newCarrier(t, 4, 4, 24, 5)
	merged := carrier.Copy()
	require.NoError(t, Embed(merged.Pix, merged.Layout, nil, Density1, nil))

	d, err := DecodeTag(merged.Pix)
	require.NoError(t, err)
	assert.Equal(t, Density1, d)
	assert.Equal(t, carrier.Pix[TagBits:], merged.Pix[TagBits:])
}

func TestEmbedRunsOutOfPixels(t *testing.T) {
	// 12 pixel bytes, 9 after the tag: one byte fits at density 1, two do not
	carrier := newCarrier(t, 4, 1, 24, 1)
	require.NoError(t, Embed(carrier.Copy().Pix, carrier.Layout, []byte{0xff}, Density1, nil))

	err := Embed(carrier.Pix, carrier.Layout, []byte{0xff, 0x00}, Density1, nil)
	var cerr *InsufficientCapacityError
	require.ErrorAs(t, err, &cerr)
}

func TestNarrowRowsRejected(t *testing.T) {
	carrier := newCarrier(t, 1, 64, 16, 1) // two bytes per row
	var uerr *bmp.UnsupportedLayoutError

	err := Embed(carrier.Pix, carrier.Layout, []byte{1}, Density1, nil)
	require.ErrorAs(t, err, &uerr)

	_, err = Extract(carrier.Pix, carrier.Layout, nil)
	require.ErrorAs(t, err, &uerr)
}

func TestEmbedInvalidDensity(t *testing.T) {
	carrier := newCarrier(t, 4, 4, 24, 1)
	err := Embed(carrier.Pix, carrier.Layout, []byte{1}, 3, nil)
	var terr *InvalidTagError
	require.ErrorAs(t, err, &terr)
}

func TestExtractInvalidTag(t *testing.T) {
	carrier := newCarrier(t, 8, 8, 24, 1)
	for _, tag := range []byte{0, 3} {
		for i := 0; i < TagBits; i++ {
			carrier.Pix[i] = carrier.Pix[i]&0xFE | tag>>i&1
		}
		_, err := Extract(carrier.Pix, carrier.Layout, nil)
		var terr *InvalidTagError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, tag, terr.Tag)
	}
}

func TestExtractNotABitmap(t *testing.T) {
	carrier := newCarrier(t, 16, 16, 24, 1)
	require.NoError(t, Embed(carrier.Pix, carrier.Layout, []byte("definitely not a bitmap"), Density1, nil))

	_, err := Extract(carrier.Pix, carrier.Layout, nil)
	var perr *CorruptPayloadError
	require.ErrorAs(t, err, &perr)
	var ferr *bmp.FormatError
	assert.ErrorAs(t, err, &ferr)
}

func TestExtractDeclaredSizeTooLarge(t *testing.T) {
	payload := bitmapPayload(t, 2, 2)
	binary.LittleEndian.PutUint32(payload[2:6], 1<<30)

	carrier := newCarrier(t, 16, 16, 24, 1)
	require.NoError(t, Embed(carrier.Pix, carrier.Layout, payload, Density1, nil))

	_, err := Extract(carrier.Pix, carrier.Layout, nil)
	var perr *CorruptPayloadError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "exceeds")
}

func TestExtractDeclaredSizeTooSmall(t *testing.T) {
	payload := bitmapPayload(t, 2, 2)
	binary.LittleEndian.PutUint32(payload[2:6], 5)

	carrier := newCarrier(t, 16, 16, 24, 1)
	require.NoError(t, Embed(carrier.Pix, carrier.Layout, payload, Density1, nil))

	_, err := Extract(carrier.Pix, carrier.Layout, nil)
	var perr *CorruptPayloadError
	require.ErrorAs(t, err, &perr)
}

func TestExtractStopsAtDeclaredSize(t *testing.T) {
	payload := bitmapPayload(t, 2, 2)
	declared := len(payload)
	payload = append(payload, []byte("trailing junk")...)

	carrier := newCarrier(t, 32, 32, 24, 1)
	require.NoError(t, Embed(carrier.Pix, carrier.Layout, payload, Density1, nil))

	got, err := Extract(carrier.Pix, carrier.Layout, nil)
	require.NoError(t, err)
	assert.Equal(t, payload[:declared], got)
}

func TestExtractRunsOutOfPixels(t *testing.T) {
	// 45 pixel bytes, 42 after the tag: five bytes at density 1, not even a header
	carrier := newCarrier(t, 3, 5, 24, 1)
	require.NoError(t, EncodeTag(carrier.Pix, Density1))

	_, err := Extract(carrier.Pix, carrier.Layout, nil)
	var perr *CorruptPayloadError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "past the end")
}

func TestProgressReported(t *testing.T) {
	carrier := newCarrier(t, 32, 32, 24, 1)
	payload := bitmapPayload(t, 4, 4)

	var embedOut, extractOut bytes.Buffer
	require.NoError(t, Embed(carrier.Pix, carrier.Layout, payload, Density1, progress.NewBar(&embedOut, 10)))
	_, err := Extract(carrier.Pix, carrier.Layout, progress.NewBar(&extractOut, 10))
	require.NoError(t, err)

	marks := "## ## ## ## ## ## ## ## ## ## \n"
	assert.Contains(t, embedOut.String(), marks)
	assert.Contains(t, extractOut.String(), marks)
}

func TestRoundTripExactFit(t *testing.T) {
	// 41x1 at 24 bits: 123 pixel bytes, exactly 15*8 + TagBits
	carrier := newCarrier(t, 41, 1, 24, 9)
	payload := make([]byte, 15)
	copy(payload, "BM")
	binary.LittleEndian.PutUint32(payload[2:6], 15)
	payload[14] = 0x81

	got, d := roundTrip(t, carrier, payload)
	assert.Equal(t, Density1, d)
	assert.Equal(t, payload, got)
}
