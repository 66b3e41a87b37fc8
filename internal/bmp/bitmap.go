// bmp package reads the layout of bitmap files and keeps them in memory so their
// pixel bytes can be rewritten in place.
package bmp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Layout describes where the pixel bytes of a bitmap live and how its rows are padded.
type Layout struct {
	File          BitmapFileHeader
	Info          BitmapInfoHeader
	BytesPerPixel int // BitCount / 8
	Stride        int // Total bytes in a row (incl. padding)
	Padding       int // Padding bytes at the end of each row
}

// Image is a whole bitmap file held in memory. Pix aliases the pixel region of the
// file, so writes to Pix are part of what Save writes out.
type Image struct {
	Filename string
	Layout   *Layout
	Pix      []byte
	raw      []byte
}

func (l *Layout) Width() int  { return int(l.Info.Width) }
func (l *Layout) Height() int { return int(l.Info.Height) }

// Returns the number of pixel bytes, not counting row padding
func (l *Layout) PixelArea() int64 {
	return int64(l.Info.Width) * int64(l.Info.Height) * int64(l.BytesPerPixel)
}

// Returns the size of the pixel region (incl. padding)
func (l *Layout) PixelDataSize() int {
	return l.Stride * l.Height()
}

// Returns the padding needed to align a row of width pixels to RowAlign bytes
func RowPadding(width, bytesPerPixel int) int {
	n := width * bytesPerPixel
	if n%RowAlign == 0 {
		return 0
	}
	return RowAlign - n%RowAlign
}

// Reads both headers of a bitmap from r and derives its row layout.
// r must be positioned at the start of the file.
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout

	// Read File Header
	if err := binary.Read(r, binary.LittleEndian, &l.File); err != nil {
		return nil, headerError("file header", err)
	}
	if l.File.FileType != Magic {
		return nil, &FormatError{"missing BM signature"}
	}

	// Read Info Header
	if err := binary.Read(r, binary.LittleEndian, &l.Info); err != nil {
		return nil, headerError("info header", err)
	}
	if l.Info.Size < InfoHeaderSize {
		return nil, &UnsupportedLayoutError{"info header of " + strconv.Itoa(int(l.Info.Size)) + " bytes"}
	}

	// Only bottom-up bitmaps have their origin in the bottom left corner
	if l.Info.Height < 0 {
		return nil, &UnsupportedLayoutError{"top-down bitmaps (negative height) are not supported"}
	}
	if l.Info.Width <= 0 {
		return nil, &FormatError{"width must be positive, got " + strconv.Itoa(int(l.Info.Width))}
	}
	if l.Info.BitCount == 0 || l.Info.BitCount%8 != 0 {
		return nil, &UnsupportedLayoutError{"bit depth " + strconv.Itoa(int(l.Info.BitCount)) + " is not a whole number of bytes"}
	}
	if l.Info.Compression != biRGB && l.Info.Compression != biBitFields {
		return nil, &UnsupportedLayoutError{"compressed pixel data (compression " + strconv.Itoa(int(l.Info.Compression)) + ")"}
	}

	// Stride*height has to fit in an int on every platform
	rowBytes := int64(l.Info.Width) * int64(l.Info.BitCount/8)
	stride := (rowBytes + RowAlign - 1) / RowAlign * RowAlign
	if stride > maxPixelData || (l.Info.Height > 0 && stride > maxPixelData/int64(l.Info.Height)) {
		return nil, &FormatError{fmt.Sprintf("pixel data of %dx%d at %d bits is too large", l.Info.Width, l.Info.Height, l.Info.BitCount)}
	}

	l.BytesPerPixel = int(l.Info.BitCount / 8)
	l.Padding = RowPadding(l.Width(), l.BytesPerPixel)
	l.Stride = l.Width()*l.BytesPerPixel + l.Padding

	return &l, nil
}

func headerError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{"truncated " + what}
	}
	return fmt.Errorf("reading %s: %w", what, err)
}

// Reads a Bitmap file
func ReadImage(filename string) (*Image, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	img, err := NewImage(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	img.Filename = filename
	return img, nil
}

// Wraps the bytes of a bitmap file. raw is used in place, not copied.
func NewImage(raw []byte) (*Image, error) {
	layout, err := ReadLayout(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	// The whole pixel region has to be present
	start := int64(layout.File.OffBits)
	end := start + int64(layout.PixelDataSize())
	if start < FileHeaderSize+InfoHeaderSize || end > int64(len(raw)) {
		return nil, &FormatError{fmt.Sprintf("truncated pixel data: need bytes [%d, %d), file has %d", start, end, len(raw))}
	}

	return &Image{
		Layout: layout,
		Pix:    raw[start:end:end],
		raw:    raw,
	}, nil
}

// Creates a blank bitmap image (bottom-up, uncompressed). 8 bit images get a grayscale palette.
func Create(width, height, bitDepth int) (*Image, error) {
	if width <= 0 {
		return nil, errors.New("width must be greater than 0")
	} else if height <= 0 {
		return nil, errors.New("height must be greater than 0")
	} else if bitDepth <= 0 || bitDepth%8 != 0 || bitDepth > 32 {
		return nil, errors.New("bit depth must be one of 8, 16, 24 or 32")
	}

	bytesPerPixel := bitDepth / 8
	stride := width*bytesPerPixel + RowPadding(width, bytesPerPixel)
	sizeImage := uint32(stride * height)

	paletteSize := 0
	if bitDepth == 8 {
		paletteSize = 256 * 4
	}
	offBits := uint32(FileHeaderSize + InfoHeaderSize + paletteSize)

	// NewBitmap Headers
	bfh := BitmapFileHeader{FileType: Magic, OffBits: offBits, Size: offBits + sizeImage}
	bih := BitmapInfoHeader{Size: InfoHeaderSize, Width: int32(width), Height: int32(height), Planes: 1,
		BitCount: uint16(bitDepth), SizeImage: sizeImage}

	var buf bytes.Buffer
	buf.Grow(int(bfh.Size))
	binary.Write(&buf, binary.LittleEndian, bfh)
	binary.Write(&buf, binary.LittleEndian, bih)
	for i := 0; i < paletteSize/4; i++ {
		buf.Write([]byte{byte(i), byte(i), byte(i), 0})
	}
	buf.Write(make([]byte, sizeImage))

	return NewImage(buf.Bytes())
}

// Returns the whole file as bytes (aliases Pix)
func (b *Image) Bytes() []byte {
	return b.raw
}

// Returns a Copy of the bitmap image
func (b *Image) Copy() *Image {
	raw := bytes.Clone(b.raw)
	layout := *b.Layout
	start := int(layout.File.OffBits)
	end := start + layout.PixelDataSize()

	return &Image{
		Filename: b.Filename,
		Layout:   &layout,
		Pix:      raw[start:end:end],
		raw:      raw,
	}
}

// Saves the bitmap image onto local disk. A partially written file is removed.
func (b *Image) Save(filename string) (err error) {
	newBitmap, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := newBitmap.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(filename)
		}
	}()

	// Create a buffer (to reduce syscalls)
	w := bufio.NewWriter(newBitmap)
	if _, err = w.Write(b.raw); err != nil {
		return err
	}
	return w.Flush() // Write buffer to disk
}

// Print the Metadata of the bitmap (in human-readable format)
func (l *Layout) Describe(w io.Writer) {
	fmt.Fprintf(w, "FileType: \t0x%04x\n", l.File.FileType)
	fmt.Fprintf(w, "Filesize: \t%v bytes\n", l.File.Size)
	fmt.Fprintf(w, "Width: \t\t%v px\n", l.Info.Width)
	fmt.Fprintf(w, "Height: \t%v px\n", l.Info.Height)
	fmt.Fprintf(w, "BitCount: \t%vbits\n", l.Info.BitCount)
	fmt.Fprintf(w, "Compression: \t%v\n", l.Info.Compression)
	fmt.Fprintf(w, "SizeImage: \t%v bytes\n", l.Info.SizeImage)
	fmt.Fprintf(w, "PixelOffset: \t%v bytes\n", l.File.OffBits)
	fmt.Fprintf(w, "PixelArea: \t%v bytes\n", l.PixelArea())
	fmt.Fprintf(w, "Stride: \t%v bytes\n", l.Stride)
	fmt.Fprintf(w, "Padding: \t%v bytes\n", l.Padding)
}
