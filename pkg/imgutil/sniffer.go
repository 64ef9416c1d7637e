package imgutil

import (
	"errors"
	"io"
	"os"
)

// Kind identifies a supported image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindTIFF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// HeaderLen is how many leading bytes Sniff inspects. Magic numbers for
// both supported formats fit in the first 4 bytes, but reading a longer
// prefix keeps truncated files from masquerading as valid ones.
const HeaderLen = 16

var (
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// DetectHeader inspects leading file bytes for known signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 4 {
		return KindUnknown, errors.New("header too short")
	}

	if hasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if hasPrefix(header, tiffSigLE) || hasPrefix(header, tiffSigBE) {
		return KindTIFF, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the leading bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to HeaderLen bytes from r and determines its type.
// Files shorter than HeaderLen are still sniffed as long as the magic
// number region is present.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
