package stego

import (
	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/progress"
)

// Extract recovers the payload hidden in pix by Embed. The payload bits are
// cleared from pix as they are read, so on success pix holds the carrier
// with its low bits zeroed wherever the payload was.
func Extract(pix []byte, l *bmp.Layout, rep progress.Reporter) ([]byte, error) {
	if len(pix) < l.PixelDataSize() {
		return nil, &bmp.FormatError{Reason: "truncated pixel data"}
	}
	if err := checkRowLength(l); err != nil {
		return nil, err
	}
	if rep == nil {
		rep = progress.Nop
	}

	d, err := DecodeTag(pix)
	if err != nil {
		return nil, err
	}

	mask := d.mask()
	it := NewIterator(l)
	f := newFramer(EligibleBytes(l) * int64(d) / 8)

	var current byte // payload byte being rebuilt
	p := 0           // "pointer" to the current bit within current
	started := false

	defer func() {
		if started {
			rep.Finish()
		}
	}()

	for {
		off, ok := it.Next()
		if !ok {
			return nil, &CorruptPayloadError{Reason: "payload runs past the end of the carrier"}
		}

		current |= (pix[off] & mask) << p
		pix[off] &^= mask
		p += int(d)

		if p < 8 {
			continue
		}

		// Another byte is complete
		done, err := f.push(current)
		if err != nil {
			return nil, err
		}
		current, p = 0, 0

		if f.size() > 0 {
			if !started {
				rep.Start(f.size())
				started = true
			}
			rep.Update(int64(len(f.buf)))
		}
		if done {
			return f.buf, nil
		}
	}
}
