package security

import (
	"mime"
	"path/filepath"
	"strings"

	"rinse/pkg/imgutil"
)

// SniffFormat determines the image format of a file and verifies that
// the extension, the magic bytes, and the MIME type registered for the
// extension all agree. A magic-byte check alone is insufficient: a
// crafted TIFF renamed to .jpg must be rejected, so all three signals
// have to concur.
func SniffFormat(path string) (imgutil.Kind, *ValidationError) {
	extKind := imgutil.KindForExtension(path)
	if extKind == imgutil.KindUnknown {
		return imgutil.KindUnknown, newError(KindUnsupportedFormat, "unsupported file format")
	}

	if verr := checkMIME(path, extKind); verr != nil {
		return imgutil.KindUnknown, verr
	}

	sniffed, err := imgutil.SniffFile(path)
	if err != nil {
		return imgutil.KindUnknown, newError(KindFormatMismatch, "file header is unreadable: %v", err)
	}
	if sniffed != extKind {
		return imgutil.KindUnknown, newError(KindFormatMismatch,
			"file content (%s) does not match extension %s", sniffed, filepath.Ext(path))
	}

	return sniffed, nil
}

// checkMIME cross-checks the platform MIME registry against the
// expected type for the sniffed kind. An empty registry answer falls
// back to the built-in table, which always agrees with extKind.
func checkMIME(path string, extKind imgutil.Kind) *ValidationError {
	want := imgutil.MIMEForKind(extKind)

	reported := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if reported == "" {
		return nil
	}
	if i := strings.IndexByte(reported, ';'); i >= 0 {
		reported = strings.TrimSpace(reported[:i])
	}
	if reported != want {
		return newError(KindInvalidMimeType, "invalid MIME type %q for file", reported)
	}
	return nil
}
