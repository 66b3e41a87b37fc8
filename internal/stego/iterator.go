package stego

import "github.com/anas-shakeel/bmp-steg/internal/bmp"

// Iterator yields the offsets (relative to the start of the pixel data) of
// the bytes that carry payload bits, in the order both Embed and Extract
// visit them: rows in storage order, the pixel bytes of each row left to
// right, row padding never. The first TagBits bytes of row 0 hold the tag
// and are skipped.
type Iterator struct {
	rowBytes int // pixel bytes per row, without padding
	stride   int
	height   int

	row, col int
}

// NewIterator returns an iterator over the payload bytes of l.
func NewIterator(l *bmp.Layout) *Iterator {
	rowBytes := l.Width() * l.BytesPerPixel
	return &Iterator{
		rowBytes: rowBytes,
		stride:   l.Stride,
		height:   l.Height(),
		col:      min(TagBits, rowBytes),
	}
}

// Next returns the next offset, or false once all rows are exhausted.
func (it *Iterator) Next() (int, bool) {
	// Skip the padding, move to the next row
	for it.row < it.height && it.col >= it.rowBytes {
		it.row++
		it.col = 0
	}
	if it.row >= it.height {
		return 0, false
	}

	off := it.row*it.stride + it.col
	it.col++
	return off, true
}

// EligibleBytes returns how many offsets an iterator over l yields.
func EligibleBytes(l *bmp.Layout) int64 {
	rowBytes := int64(l.Width() * l.BytesPerPixel)
	if l.Height() <= 0 {
		return 0
	}
	return rowBytes*int64(l.Height()) - min(TagBits, rowBytes)
}

// A row must be able to hold the whole tag
func checkRowLength(l *bmp.Layout) error {
	if l.Width()*l.BytesPerPixel < TagBits {
		return &bmp.UnsupportedLayoutError{Reason: "pixel rows are shorter than the density tag"}
	}
	return nil
}
