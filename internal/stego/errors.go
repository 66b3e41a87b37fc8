package stego

import (
	"fmt"
)

// MissingFileError reports an input path that does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file '%s' not found", e.Path)
}

// InsufficientCapacityError reports a carrier too small to hold the payload
// at any density.
type InsufficientCapacityError struct {
	PixelArea   int64 // pixel bytes of the carrier
	PayloadSize int64 // bytes to hide
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("carrier is too small: %d pixel bytes cannot hold %d payload bytes",
		e.PixelArea, e.PayloadSize)
}

// InvalidTagError reports a density tag that is not 1, 2 or 4. The image was
// most likely never produced by Embed.
type InvalidTagError struct {
	Tag byte
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("invalid tag '%d'", e.Tag)
}

// CorruptPayloadError indicates that there is no hidden payload in the image,
// or that it was damaged.
type CorruptPayloadError struct {
	Reason string
	Err    error
}

func (e *CorruptPayloadError) Error() string {
	msg := "either there is no hidden payload or it was damaged"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptPayloadError) Unwrap() error {
	return e.Err
}
