package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"rinse/internal/security"
	"rinse/pkg/imgutil"
)

// DefaultJPEGQuality is the re-encode quality used by the
// pixel-reconstruction fallback. The primary strip path never
// re-encodes, so this only applies when that path fails.
const DefaultJPEGQuality = 95

var errNoByteStrip = errors.New("no byte-level strip for this format")

// Stripper produces a metadata-free copy of a validated image. The
// primary method rewrites the file segment-by-segment without touching
// image data; when it cannot (corrupt structure, or a format with no
// byte-level path), the fallback decodes the pixels into a fresh buffer
// and re-encodes, which drops all metadata by construction.
type Stripper struct {
	validator *security.Validator
	log       zerolog.Logger

	// Quality is the JPEG quality used by the reconstruction fallback.
	Quality int
	// StripICC also removes the ICC color profile. Off by default: the
	// profile describes color, not provenance.
	StripICC bool
}

func NewStripper(validator *security.Validator, log zerolog.Logger) *Stripper {
	return &Stripper{
		validator: validator,
		log:       log,
		Quality:   DefaultJPEGQuality,
	}
}

// Strip writes a clean copy of input at output and reports success.
// Every failure is logged and converted to false; nothing propagates
// past this boundary, and no partial output file survives a failed
// write.
func (s *Stripper) Strip(input, output string) (ok bool) {
	// The decode path can panic on pathological files.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("input", input).Interface("panic", r).Msg("metadata strip panicked")
			ok = false
		}
	}()

	if verr := s.validator.ValidateInput(input); verr != nil {
		s.log.Warn().Str("input", input).Str("kind", string(verr.Kind)).Str("reason", verr.Message).Msg("strip input rejected")
		return false
	}
	if verr := s.validator.ValidateOutput(output, input); verr != nil {
		s.log.Warn().Str("output", output).Str("kind", string(verr.Kind)).Str("reason", verr.Message).Msg("strip output rejected")
		return false
	}

	kind, err := imgutil.SniffFile(input)
	if err != nil || kind == imgutil.KindUnknown {
		s.log.Error().Str("input", input).Msg("file format changed after validation")
		return false
	}

	if err := s.stripCopy(input, output, kind); err == nil {
		return true
	} else if !errors.Is(err, errNoByteStrip) {
		s.log.Warn().Err(err).Str("input", input).Msg("byte-level strip failed, reconstructing pixels")
	}

	if err := s.reconstruct(input, output, kind); err != nil {
		s.log.Error().Err(err).Str("input", input).Str("output", output).Msg("both strip methods failed")
		return false
	}
	return true
}

// stripCopy is the primary method: a lossless segment-level rewrite.
// Only JPEG has a byte-level path; a TIFF rewrite would mean relocating
// every IFD offset, which the reconstruction fallback covers instead.
func (s *Stripper) stripCopy(input, output string, kind imgutil.Kind) error {
	if kind != imgutil.KindJPEG {
		return errNoByteStrip
	}

	src, err := os.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	mode := sourceMode(src)
	return writeAtomically(output, mode, func(w io.Writer) error {
		return stripJPEG(src, w, !s.StripICC)
	})
}

// reconstruct is the fallback: decode, clone into a fresh buffer,
// re-encode. The clone carries pixels only, so no metadata structure
// can survive. For JPEG the source ICC profile is spliced back in
// unless StripICC is set.
func (s *Stripper) reconstruct(input, output string, kind imgutil.Kind) error {
	img, err := imaging.Open(input)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	clean := imaging.Clone(img)

	var buf bytes.Buffer
	switch kind {
	case imgutil.KindJPEG:
		if err := imaging.Encode(&buf, clean, imaging.JPEG, imaging.JPEGQuality(s.Quality)); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case imgutil.KindTIFF:
		if err := imaging.Encode(&buf, clean, imaging.TIFF); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %s", kind)
	}

	data := buf.Bytes()
	if kind == imgutil.KindJPEG && !s.StripICC {
		if icc, err := readICCSegments(input); err == nil && len(icc) > 0 {
			data = spliceICCSegments(data, icc)
		}
	}

	var mode fs.FileMode = 0o644
	if info, err := os.Stat(input); err == nil {
		mode = info.Mode()
	}
	return writeAtomically(output, mode, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// writeAtomically writes through a temp file in the destination
// directory and renames on success, so a failed write never leaves a
// partial output in place.
func writeAtomically(dest string, mode fs.FileMode, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".rinse-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return replaceFile(tmp.Name(), dest)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if info, err := os.Lstat(destPath); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("destination %s is not a regular file", destPath)
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

func sourceMode(f *os.File) fs.FileMode {
	if info, err := f.Stat(); err == nil {
		return info.Mode()
	}
	return 0o644
}
