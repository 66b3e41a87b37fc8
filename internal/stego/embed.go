package stego

import (
	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/progress"
)

// Embed writes the tag for d and then the bits of payload into the low d bits
// of the pixel bytes of pix, which must be the pixel region described by l.
// Bytes past the end of the payload are left untouched.
func Embed(pix []byte, l *bmp.Layout, payload []byte, d Density, rep progress.Reporter) error {
	if !d.Valid() {
		return &InvalidTagError{Tag: byte(d)}
	}
	if len(pix) < l.PixelDataSize() {
		return &bmp.FormatError{Reason: "truncated pixel data"}
	}
	if err := checkRowLength(l); err != nil {
		return err
	}
	if rep == nil {
		rep = progress.Nop
	}

	// Take the first bytes and store the tag, so extraction knows
	// how many bits were changed in each byte
	if err := EncodeTag(pix, d); err != nil {
		return err
	}

	mask := d.mask()
	it := NewIterator(l)

	var current byte // payload byte being hidden
	hidden := 0      // how many bytes we've taken off payload so far
	p := 8           // "pointer" to the current bit within current

	rep.Start(int64(len(payload)))
	defer rep.Finish()

	for {
		// Test if we just finished storing another byte
		if p == 8 {
			rep.Update(int64(hidden))
			if hidden == len(payload) {
				return nil
			}
			current = payload[hidden]
			hidden++
			p = 0
		}

		off, ok := it.Next()
		if !ok {
			return &InsufficientCapacityError{PixelArea: l.PixelArea(), PayloadSize: int64(len(payload))}
		}

		pix[off] = pix[off]&^mask | (current>>p)&mask
		p += int(d)
	}
}
