package security

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/image/tiff"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(DefaultLimits(), zerolog.Nop())
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func writeTIFF(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode tiff: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestValidateInputAcceptsJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	writeJPEG(t, path)

	if verr := testValidator(t).ValidateInput(path); verr != nil {
		t.Fatalf("expected pass, got %v", verr)
	}
}

func TestValidateInputAcceptsTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.tiff")
	writeTIFF(t, path)

	if verr := testValidator(t).ValidateInput(path); verr != nil {
		t.Fatalf("expected pass, got %v", verr)
	}
}

func TestValidateInputFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, target)

	link := filepath.Join(dir, "link.jpg")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if verr := testValidator(t).ValidateInput(link); verr != nil {
		t.Fatalf("expected pass through symlink, got %v", verr)
	}
}

func TestValidateInputRejections(t *testing.T) {
	dir := t.TempDir()
	v := testValidator(t)

	empty := filepath.Join(dir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tiffAsJPEG := filepath.Join(dir, "renamed.jpg")
	writeTIFF(t, tiffAsJPEG)

	garbage := filepath.Join(dir, "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	truncated := filepath.Join(dir, "truncated.jpg")
	if err := os.WriteFile(truncated, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		path string
		kind Kind
	}{
		{"missing file", filepath.Join(dir, "nope.jpg"), KindNotFound},
		{"empty path", "", KindNotFound},
		{"directory", dir, KindNotAFile},
		{"empty file", empty, KindEmptyFile},
		{"unsupported extension", writePNGNamed(t, dir), KindUnsupportedFormat},
		{"tiff renamed to jpg", tiffAsJPEG, KindFormatMismatch},
		{"garbage content", garbage, KindFormatMismatch},
		{"valid magic undecodable body", truncated, KindDecodeFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verr := v.ValidateInput(tc.path)
			if verr == nil {
				t.Fatal("expected rejection")
			}
			if verr.Kind != tc.kind {
				t.Fatalf("got kind %q (%s), want %q", verr.Kind, verr.Message, tc.kind)
			}
		})
	}
}

func writePNGNamed(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "image.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateInputSizeCeiling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	writeJPEG(t, path)

	limits := DefaultLimits()
	limits.MaxFileSize = 10
	v := NewValidator(limits, zerolog.Nop())

	verr := v.ValidateInput(path)
	if verr == nil || verr.Kind != KindFileTooLarge {
		t.Fatalf("expected KindFileTooLarge, got %v", verr)
	}
}

func TestValidateOutput(t *testing.T) {
	dir := t.TempDir()
	v := testValidator(t)

	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input)

	if verr := v.ValidateOutput(filepath.Join(dir, "clean.jpg"), input); verr != nil {
		t.Fatalf("expected pass, got %v", verr)
	}

	taken := filepath.Join(dir, "taken")
	if err := os.Mkdir(taken, 0o755); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		output string
		kind   Kind
	}{
		{"empty output", "", KindOutputPathInvalid},
		{"missing parent", filepath.Join(dir, "nope", "clean.jpg"), KindOutputDirMissing},
		{"overwrites input", input, KindOutputOverwritesInput},
		{"existing directory", taken, KindOutputPathInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verr := v.ValidateOutput(tc.output, input)
			if verr == nil {
				t.Fatal("expected rejection")
			}
			if verr.Kind != tc.kind {
				t.Fatalf("got kind %q (%s), want %q", verr.Kind, verr.Message, tc.kind)
			}
		})
	}
}

func TestValidateOutputSymlinkToInput(t *testing.T) {
	dir := t.TempDir()
	v := testValidator(t)

	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input)

	link := filepath.Join(dir, "alias.jpg")
	if err := os.Symlink(input, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	verr := v.ValidateOutput(link, input)
	if verr == nil || verr.Kind != KindOutputOverwritesInput {
		t.Fatalf("expected KindOutputOverwritesInput, got %v", verr)
	}
}

func TestValidateOutputExistingFileAccepted(t *testing.T) {
	dir := t.TempDir()
	v := testValidator(t)

	input := filepath.Join(dir, "photo.jpg")
	writeJPEG(t, input)

	existing := filepath.Join(dir, "clean.jpg")
	writeJPEG(t, existing)

	if verr := v.ValidateOutput(existing, input); verr != nil {
		t.Fatalf("overwriting a non-input file must be accepted, got %v", verr)
	}
}

func TestIsKind(t *testing.T) {
	err := newError(KindEmptyFile, "file is empty")
	if !IsKind(err, KindEmptyFile) {
		t.Fatal("IsKind must match the error's kind")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("IsKind must not match a different kind")
	}
	if IsKind(os.ErrNotExist, KindNotFound) {
		t.Fatal("IsKind must reject foreign error types")
	}
}
