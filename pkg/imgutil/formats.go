package imgutil

import (
	"image/color"
	"path/filepath"
	"strings"
)

// Supported MIME types.
const (
	MIMEJPEG = "image/jpeg"
	MIMETIFF = "image/tiff"
)

var extKinds = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".tiff": KindTIFF,
	".tif":  KindTIFF,
}

var kindMIMEs = map[Kind]string{
	KindJPEG: MIMEJPEG,
	KindTIFF: MIMETIFF,
}

// KindForExtension maps a file extension (case-insensitive) to a Kind.
func KindForExtension(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	return extKinds[ext]
}

// MIMEForKind returns the MIME type for a supported Kind, or "".
func MIMEForKind(k Kind) string {
	return kindMIMEs[k]
}

// IsSupportedExtension reports whether the path carries one of the
// supported extensions. Empty paths are unsupported.
func IsSupportedExtension(path string) bool {
	if path == "" {
		return false
	}
	return KindForExtension(path) != KindUnknown
}

// SupportedExtensions returns the supported extension list as a fresh
// slice, sorted for stable output.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".tif", ".tiff"}
}

// ColorMode names the color model of a decoded image config using the
// conventional short mode names. Unknown models return "".
func ColorMode(m color.Model) string {
	switch m {
	case color.YCbCrModel:
		return "YCbCr"
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return ""
}
