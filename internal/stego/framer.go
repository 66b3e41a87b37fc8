package stego

import (
	"fmt"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
)

// framer collects recovered bytes and decides when the payload is complete.
// The payload starts with a bitmap file header whose Size field is the
// length of the whole payload.
type framer struct {
	buf   []byte
	want  int64 // declared payload size, 0 until the header is complete
	limit int64 // most bytes the carrier can still deliver
}

func newFramer(limit int64) *framer {
	return &framer{limit: limit}
}

// push appends b and reports whether the payload is complete.
func (f *framer) push(b byte) (bool, error) {
	f.buf = append(f.buf, b)

	if len(f.buf) == bmp.FileHeaderSize {
		h, err := bmp.ParseFileHeader(f.buf)
		if err != nil {
			return false, &CorruptPayloadError{Err: err}
		}
		switch size := int64(h.Size); {
		case size < bmp.FileHeaderSize:
			return false, &CorruptPayloadError{Reason: fmt.Sprintf("declared size %d is smaller than a file header", size)}
		case size > f.limit:
			return false, &CorruptPayloadError{Reason: fmt.Sprintf("declared size %d exceeds the %d bytes the carrier can hold", size, f.limit)}
		default:
			f.want = size
		}
	}

	return f.want > 0 && int64(len(f.buf)) == f.want, nil
}

// size returns the declared size, or 0 while it is not known yet.
func (f *framer) size() int64 {
	return f.want
}
