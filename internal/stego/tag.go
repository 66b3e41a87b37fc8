package stego

import "github.com/anas-shakeel/bmp-steg/internal/bmp"

// EncodeTag stores d in the lowest bit of the first TagBits bytes of pix.
func EncodeTag(pix []byte, d Density) error {
	if len(pix) < TagBits {
		return &bmp.FormatError{Reason: "pixel data too short for the tag"}
	}
	for i := 0; i < TagBits; i++ {
		pix[i] = pix[i]&0xFE | byte(d>>i)&1
	}
	return nil
}

// DecodeTag reads back the density stored by EncodeTag.
func DecodeTag(pix []byte) (Density, error) {
	if len(pix) < TagBits {
		return 0, &bmp.FormatError{Reason: "pixel data too short for the tag"}
	}
	var tag byte
	for i := 0; i < TagBits; i++ {
		tag |= (pix[i] & 1) << i
	}
	if d := Density(tag); d.Valid() {
		return d, nil
	}
	return 0, &InvalidTagError{Tag: tag}
}
