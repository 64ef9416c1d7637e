package metadata

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"rinse/internal/security"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	validator := security.NewValidator(security.DefaultLimits(), zerolog.Nop())
	return NewHandler(validator, zerolog.Nop())
}

func TestHandlerFormatSupport(t *testing.T) {
	h := testHandler(t)

	cases := map[string]bool{
		"photo.jpg":  true,
		"photo.JPEG": true,
		"scan.tif":   true,
		"scan.TIFF":  true,
		"image.png":  false,
		"image.gif":  false,
		"document":   false,
		"":           false,
	}
	for path, want := range cases {
		if got := h.IsSupportedFormat(path); got != want {
			t.Errorf("IsSupportedFormat(%q) = %v, want %v", path, got, want)
		}
	}

	if got := len(h.SupportedFormats()); got != 4 {
		t.Fatalf("expected 4 supported extensions, got %d", got)
	}
}

func TestHandlerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	dst := filepath.Join(dir, "clean.jpg")
	writeJPEGWithExif(t, src)

	h := testHandler(t)

	before := h.ExtractMetadata(src)
	if before.Error != "" {
		t.Fatalf("extract failed: %s", before.Error)
	}
	if before.Section(SectionGPS) == nil {
		t.Fatal("fixture carries no GPS section")
	}

	if !h.RemoveMetadata(src, dst) {
		t.Fatal("remove failed")
	}

	after := h.ExtractMetadata(dst)
	if after.Error != "" {
		t.Fatalf("extract of cleaned file failed: %s", after.Error)
	}
	if after.Section(SectionGPS) != nil || after.Section(SectionEXIF) != nil {
		t.Fatal("metadata survived removal")
	}
}

func TestHandlerFormatMetadataValue(t *testing.T) {
	h := testHandler(t)
	if got := h.FormatMetadataValue([]byte("test\x00")); got != "test" {
		t.Fatalf("got %q", got)
	}
	if got := h.FormatMetadataValue(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}
