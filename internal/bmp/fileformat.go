// BMP-specific structs, constants and errors
package bmp

import (
	"encoding/binary"
	"math"
	"strconv"
)

const (
	Magic          = 0x4D42 // "BM", read as a little-endian uint16
	FileHeaderSize = 14     // Size of BitmapFileHeader on disk
	InfoHeaderSize = 40     // Size of BitmapInfoHeader on disk
	RowAlign       = 4      // Pixel rows are padded up to this many bytes

	maxPixelData = math.MaxInt32 // Largest pixel region (incl. padding) we accept

	biRGB       = 0
	biBitFields = 3
)

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader

type BitmapFileHeader struct {
	FileType  uint16 // The file type: must be 0x4d42 (ASCII string "BM").
	Size      uint32 // The size, in bytes, of the bitmap file.
	Reserved1 uint16 // Reserved; must be zero.
	Reserved2 uint16 // Reserved; must be zero.
	OffBits   uint32 // Bitmap File Offset (In bytes) to Pixel Arrays
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].

type BitmapInfoHeader struct {
	Size            uint32 // The number of bytes required by the structure.
	Width           int32  // The width of the bitmap, in pixels.
	Height          int32  // The height of the bitmap, in pixels (negative: top-down)
	Planes          uint16 // The number of planes for the target device.
	BitCount        uint16 // The number of bits-per-pixel.
	Compression     uint32 // The type of compression
	SizeImage       uint32 // The size of the image (in bytes).
	XPixelsPerM     int32  // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32  // The vertical resolution, in pixels-per-meter.
	ColorsUsed      uint32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant uint32 // Number of color indexes required for displaying the bitmap.
}

// FormatError reports that the input is not a bitmap, or is a damaged one.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "bmp: invalid format: " + e.Reason }

// UnsupportedLayoutError reports a valid bitmap whose layout cannot carry a payload.
type UnsupportedLayoutError struct {
	Reason string
}

func (e *UnsupportedLayoutError) Error() string { return "bmp: unsupported layout: " + e.Reason }

// Parses a file header out of b by field offset.
// b must hold at least FileHeaderSize bytes, anything after that is ignored.
func ParseFileHeader(b []byte) (*BitmapFileHeader, error) {
	if len(b) < FileHeaderSize {
		return nil, &FormatError{"file header needs " + strconv.Itoa(FileHeaderSize) +
			" bytes, got " + strconv.Itoa(len(b))}
	}

	h := &BitmapFileHeader{
		FileType:  binary.LittleEndian.Uint16(b[0:2]),
		Size:      binary.LittleEndian.Uint32(b[2:6]),
		Reserved1: binary.LittleEndian.Uint16(b[6:8]),
		Reserved2: binary.LittleEndian.Uint16(b[8:10]),
		OffBits:   binary.LittleEndian.Uint32(b[10:14]),
	}
	if h.FileType != Magic {
		return nil, &FormatError{"missing BM signature"}
	}
	return h, nil
}
