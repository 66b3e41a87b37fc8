package stego

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/anas-shakeel/bmp-steg/internal/bmp"
	"github.com/anas-shakeel/bmp-steg/internal/diff"
	"github.com/anas-shakeel/bmp-steg/internal/progress"
	"github.com/anas-shakeel/bmp-steg/internal/utils"
)

// Options control where HideFile and ExtractFile write their results.
// Output names are given without extension; the extension of the input image is used.
type Options struct {
	OutputDir     string
	MergedName    string // embedded image
	DiffName      string // debug diff between carrier and merged image
	RecoveredName string // extracted payload
	RestoredName  string // merged image with the payload bits cleared

	GenerateDiff bool
	KeepRestored bool

	Logger   *zerolog.Logger
	Progress progress.Reporter
}

// DefaultOptions returns the standard output names.
func DefaultOptions() Options {
	return Options{
		MergedName:    "merged_image",
		DiffName:      "merged_image_diff",
		RecoveredName: "obr1_separated",
		RestoredName:  "obr2_separated",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MergedName == "" {
		o.MergedName = def.MergedName
	}
	if o.DiffName == "" {
		o.DiffName = def.DiffName
	}
	if o.RecoveredName == "" {
		o.RecoveredName = def.RecoveredName
	}
	if o.RestoredName == "" {
		o.RestoredName = def.RestoredName
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Progress == nil {
		o.Progress = progress.Nop
	}
	return o
}

// HideResult describes a successful HideFile.
type HideResult struct {
	MergedPath  string
	DiffPath    string // empty unless a diff image was written
	Density     Density
	PayloadSize int64
}

// ExtractResult describes a successful ExtractFile.
type ExtractResult struct {
	RecoveredPath string
	RestoredPath  string // empty unless the restored carrier was kept
	Density       Density
	PayloadSize   int64
}

// HideFile embeds the file at payloadPath into a copy of the bitmap at
// carrierPath. The carrier itself is never modified. Nothing is written
// unless the embedding succeeds.
func HideFile(payloadPath, carrierPath string, opts Options) (*HideResult, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	// Check if both files exist
	for _, filename := range []string{payloadPath, carrierPath} {
		if !utils.FileExists(filename) {
			return nil, &MissingFileError{Path: filename}
		}
	}

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return nil, err
	}
	carrier, err := bmp.ReadImage(carrierPath)
	if err != nil {
		return nil, err
	}
	logLayout(log, carrierPath, carrier.Layout)
	checkPayload(log, payloadPath, payload)

	// Check how many bits we'll need to hide the payload
	d, err := PlanDensity(carrier.Layout.PixelArea(), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", carrierPath, err)
	}
	log.Info().Str("carrier", carrierPath).Int("payload_bytes", len(payload)).
		Msgf("Starting merging images, %s per byte will be modified", d)

	// Work on a copy so the carrier does not get overwritten
	merged := carrier.Copy()
	if err := Embed(merged.Pix, merged.Layout, payload, d, opts.Progress); err != nil {
		return nil, fmt.Errorf("%s: %w", carrierPath, err)
	}

	res := &HideResult{
		MergedPath:  utils.OutputPath(opts.OutputDir, opts.MergedName, carrierPath),
		Density:     d,
		PayloadSize: int64(len(payload)),
	}
	if err := merged.Save(res.MergedPath); err != nil {
		return nil, err
	}
	log.Info().Str("output", res.MergedPath).Msg("Done")

	if opts.GenerateDiff {
		res.DiffPath = writeDiff(log, carrier, merged, utils.OutputPath(opts.OutputDir, opts.DiffName, carrierPath))
	}

	return res, nil
}

// ExtractFile recovers the payload hidden in the bitmap at mergedPath.
// Nothing is written unless the whole payload was recovered.
func ExtractFile(mergedPath string, opts Options) (*ExtractResult, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	if !utils.FileExists(mergedPath) {
		return nil, &MissingFileError{Path: mergedPath}
	}

	merged, err := bmp.ReadImage(mergedPath)
	if err != nil {
		return nil, err
	}
	logLayout(log, mergedPath, merged.Layout)

	// Extract from a copy; it ends up as the restored carrier
	restored := merged.Copy()
	d, err := DecodeTag(restored.Pix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mergedPath, err)
	}
	log.Info().Str("image", mergedPath).
		Msgf("Starting extracting the hidden file, %s per byte were used to hide it", d)

	payload, err := Extract(restored.Pix, restored.Layout, opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mergedPath, err)
	}

	res := &ExtractResult{
		RecoveredPath: utils.OutputPath(opts.OutputDir, opts.RecoveredName, mergedPath),
		Density:       d,
		PayloadSize:   int64(len(payload)),
	}
	if err := utils.WriteFile(res.RecoveredPath, payload); err != nil {
		return nil, err
	}

	if opts.KeepRestored {
		res.RestoredPath = utils.OutputPath(opts.OutputDir, opts.RestoredName, mergedPath)
		if err := restored.Save(res.RestoredPath); err != nil {
			os.Remove(res.RecoveredPath)
			return nil, err
		}
	}
	log.Info().Str("output", res.RecoveredPath).Int64("payload_bytes", res.PayloadSize).Msg("Done")

	return res, nil
}

// A diff image is a debugging aid only, failing to write one is not fatal.
func writeDiff(log *zerolog.Logger, carrier, merged *bmp.Image, filename string) string {
	log.Info().Str("output", filename).Msg("Creating a difference between the two images")

	img, err := diff.Generate(carrier, merged)
	if err == nil {
		err = img.Save(filename)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create the diff image")
		return ""
	}
	return filename
}

func logLayout(log *zerolog.Logger, filename string, l *bmp.Layout) {
	log.Debug().
		Str("file", filename).
		Str("file_type", fmt.Sprintf("0x%04x", l.File.FileType)).
		Uint32("file_size", l.File.Size).
		Uint32("data_offset", l.File.OffBits).
		Int32("width", l.Info.Width).
		Int32("height", l.Info.Height).
		Uint16("bit_depth", l.Info.BitCount).
		Uint32("size_image", l.Info.SizeImage).
		Int("padding", l.Padding).
		Msg("Bitmap layout")
}

// Extraction finds the end of the payload through its own file header,
// warn when that header will not lead back to exactly this payload.
func checkPayload(log *zerolog.Logger, filename string, payload []byte) {
	h, err := bmp.ParseFileHeader(payload)
	switch {
	case err != nil:
		log.Warn().Str("payload", filename).Err(err).Msg("Payload is not a bitmap, it cannot be extracted again")
	case int(h.Size) != len(payload):
		log.Warn().Str("payload", filename).Uint32("declared_size", h.Size).Int("actual_size", len(payload)).
			Msg("Payload size does not match its header, extraction will stop at the declared size")
	}
}
