package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// FormatValue renders a decoder-native EXIF value as a display-safe
// string. It is total and idempotent: every value, however malformed,
// yields some string, and formatting an already-formatted string is a
// no-op. Byte sequences are decoded with a single-byte fallback before
// being declared binary; rationals collapse to the bare numerator when
// the denominator is zero (preserved quirk of the established display
// contract, not an accident).
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return sanitizeText(v)
	case []byte:
		return formatBytes(v)
	case exifcommon.Rational:
		return formatRational(int64(v.Numerator), int64(v.Denominator))
	case exifcommon.SignedRational:
		return formatRational(int64(v.Numerator), int64(v.Denominator))
	case []exifcommon.Rational:
		parts := make([]string, 0, len(v))
		for _, r := range v {
			parts = append(parts, formatRational(int64(r.Numerator), int64(r.Denominator)))
		}
		return joinParts(parts)
	case []exifcommon.SignedRational:
		parts := make([]string, 0, len(v))
		for _, r := range v {
			parts = append(parts, formatRational(int64(r.Numerator), int64(r.Denominator)))
		}
		return joinParts(parts)
	case []uint16:
		parts := make([]string, 0, len(v))
		for _, n := range v {
			parts = append(parts, strconv.FormatUint(uint64(n), 10))
		}
		return joinParts(parts)
	case []uint32:
		parts := make([]string, 0, len(v))
		for _, n := range v {
			parts = append(parts, strconv.FormatUint(uint64(n), 10))
		}
		return joinParts(parts)
	case []int32:
		parts := make([]string, 0, len(v))
		for _, n := range v {
			parts = append(parts, strconv.FormatInt(int64(n), 10))
		}
		return joinParts(parts)
	case []float64:
		parts := make([]string, 0, len(v))
		for _, f := range v {
			parts = append(parts, strconv.FormatFloat(f, 'g', 6, 64))
		}
		return joinParts(parts)
	case []float32:
		parts := make([]string, 0, len(v))
		for _, f := range v {
			parts = append(parts, strconv.FormatFloat(float64(f), 'g', 6, 32))
		}
		return joinParts(parts)
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			parts = append(parts, sanitizeText(s))
		}
		return joinParts(parts)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return joinParts(parts)
	case fmt.Stringer:
		return sanitizeText(v.String())
	default:
		return sanitizeText(fmt.Sprint(v))
	}
}

// formatRational renders numerator/denominator. A zero denominator
// yields the bare numerator rather than an error; the (100, 0) -> "100"
// behavior is part of the display contract.
func formatRational(num, den int64) string {
	if den == 0 {
		return strconv.FormatInt(num, 10)
	}
	if num%den == 0 {
		return strconv.FormatInt(num/den, 10)
	}
	return strconv.FormatFloat(float64(num)/float64(den), 'g', 6, 64)
}

func formatBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	if utf8.Valid(b) {
		if s := sanitizeText(string(b)); isDisplayable(s) {
			return s
		}
		return fmt.Sprintf("<binary data: %d bytes>", len(b))
	}

	// Single-byte fallback: every byte maps to the Latin-1 rune of the
	// same value, so decoding cannot fail; displayability decides.
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	if s := sanitizeText(string(runes)); isDisplayable(s) {
		return s
	}
	return fmt.Sprintf("<binary data: %d bytes>", len(b))
}

// sanitizeText strips NUL bytes anywhere in the string and trims
// surrounding whitespace.
func sanitizeText(s string) string {
	if strings.ContainsRune(s, 0) {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.TrimSpace(s)
}

func isDisplayable(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func joinParts(parts []string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
