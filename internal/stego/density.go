// Package stego hides a payload in the low bits of the pixel bytes of a
// bitmap and recovers it again.
//
// The first TagBits pixel bytes carry the density, the number of low bits
// overwritten in every other pixel byte, one bit per byte. The payload
// follows, least significant bits first, and must itself start with a
// bitmap file header: its declared size is what tells Extract where the
// payload ends.
package stego

import "fmt"

// TagBits is the number of leading pixel bytes holding the density tag.
const TagBits = 3

// Density is the number of low bits modified per carrier byte.
type Density uint8

const (
	Density1 Density = 1
	Density2 Density = 2
	Density4 Density = 4
)

// Valid reports whether d is one of the densities Embed can write.
func (d Density) Valid() bool {
	return d == Density1 || d == Density2 || d == Density4
}

// mask selects the low d bits of a byte.
func (d Density) mask() byte {
	return byte(1)<<d - 1
}

func (d Density) String() string {
	if d == 1 {
		return "1 bit"
	}
	return fmt.Sprintf("%d bits", uint8(d))
}

// PlanDensity picks the density used to hide payloadSize bytes in a carrier
// with pixelArea pixel bytes. The thresholds are checked in order and the
// first that fits wins; the cascade is part of the format and must not be
// changed to a tighter fit.
func PlanDensity(pixelArea, payloadSize int64) (Density, error) {
	switch {
	case pixelArea >= payloadSize*8+TagBits:
		return Density1, nil
	case pixelArea >= payloadSize*4+TagBits:
		return Density2, nil
	case pixelArea >= payloadSize*2+TagBits:
		return Density4, nil
	}
	return 0, &InsufficientCapacityError{PixelArea: pixelArea, PayloadSize: payloadSize}
}

// Capacity returns how many payload bytes PlanDensity accepts at density d.
func Capacity(pixelArea int64, d Density) int64 {
	if pixelArea < TagBits || !d.Valid() {
		return 0
	}
	return (pixelArea - TagBits) * int64(d) / 8
}
