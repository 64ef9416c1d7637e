package security

import (
	"image"
	_ "image/jpeg"
	"os"

	_ "golang.org/x/image/tiff"

	"github.com/rs/zerolog"

	"rinse/pkg/imgutil"
)

var allowedModes = map[string]bool{
	"RGB":   true,
	"RGBA":  true,
	"L":     true,
	"P":     true,
	"CMYK":  true,
	"YCbCr": true,
	"LAB":   true,
	"HSV":   true,
}

// configFn reads just enough of an image to report its dimensions,
// color model, and registered format name. It must not decode pixel
// data; a decompression bomb has to be rejected before that happens.
type configFn func(path string) (image.Config, string, error)

// BoundsChecker validates decoded image properties against safety
// ceilings before any full decode is allowed.
type BoundsChecker struct {
	maxDimension int
	maxPixels    int
	decode       configFn
	log          zerolog.Logger
}

func NewBoundsChecker(limits Limits, log zerolog.Logger) *BoundsChecker {
	return &BoundsChecker{
		maxDimension: limits.MaxDimension,
		maxPixels:    limits.MaxPixels,
		decode:       decodeConfig,
		log:          log,
	}
}

// Check enforces the dimension, pixel-budget, color-mode, and declared
// format ceilings. When no decode hook is available the check degrades
// to a pass with reduced assurance; that trade-off is logged, never
// silent.
func (b *BoundsChecker) Check(path string, kind imgutil.Kind) *ValidationError {
	if b.decode == nil {
		b.log.Warn().Str("path", path).Msg("image decoder unavailable, skipping bounds check (reduced assurance)")
		return nil
	}

	cfg, format, err := b.decode(path)
	if err != nil {
		return newError(KindDecodeFailure, "cannot read image header: %v", err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return newError(KindInvalidDimensions, "invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width > b.maxDimension || cfg.Height > b.maxDimension {
		return newError(KindInvalidDimensions,
			"image too large: %dx%d (max %d per side)", cfg.Width, cfg.Height, b.maxDimension)
	}

	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(b.maxPixels) {
		return newError(KindTooManyPixels, "too many pixels: %d (max %d)", pixels, b.maxPixels)
	}

	if mode := imgutil.ColorMode(cfg.ColorModel); !allowedModes[mode] {
		return newError(KindUnsupportedMode, "unusual color mode %q", mode)
	}

	if format != kind.String() {
		return newError(KindUnsupportedFormat, "unexpected image format %q", format)
	}

	return nil
}

func decodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()

	return image.DecodeConfig(f)
}
