package metadata

import (
	"github.com/rs/zerolog"

	"rinse/internal/security"
	"rinse/pkg/imgutil"
)

// Handler is the only entry point collaborators use. It composes the
// security validator, the extractor, and the stripper; every operation
// gates its input through validation before any decoder runs.
type Handler struct {
	extractor *Extractor
	stripper  *Stripper
}

func NewHandler(validator *security.Validator, log zerolog.Logger) *Handler {
	return &Handler{
		extractor: NewExtractor(validator, log),
		stripper:  NewStripper(validator, log),
	}
}

// Stripper exposes the strip component for option tuning (fallback
// quality, ICC handling) before use.
func (h *Handler) Stripper() *Stripper {
	return h.stripper
}

// IsSupportedFormat reports whether the path carries a supported
// extension. Empty paths are unsupported.
func (h *Handler) IsSupportedFormat(path string) bool {
	return imgutil.IsSupportedExtension(path)
}

// SupportedFormats returns the accepted extensions as a fresh slice.
func (h *Handler) SupportedFormats() []string {
	return imgutil.SupportedExtensions()
}

// ExtractMetadata validates the file and returns its organized
// metadata. Failures are reported inside the document, never raised.
func (h *Handler) ExtractMetadata(path string) *Document {
	return h.extractor.Extract(path)
}

// RemoveMetadata writes a clean copy of input at output. All failures
// collapse to false; reasons go to the log.
func (h *Handler) RemoveMetadata(input, output string) bool {
	return h.stripper.Strip(input, output)
}

// FormatMetadataValue renders a raw tag value for display. Exposed for
// presentation layers that receive decoder-native values.
func (h *Handler) FormatMetadataValue(value any) string {
	return FormatValue(value)
}
