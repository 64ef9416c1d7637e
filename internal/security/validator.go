package security

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Limits are the safety ceilings enforced on input files.
type Limits struct {
	MaxFileSize  int64 // bytes
	MaxDimension int   // pixels per side
	MaxPixels    int   // total pixel budget
}

// DefaultLimits returns the production ceilings: 100 MiB files,
// 50000 px per side, 100 megapixels total.
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:  100 * 1024 * 1024,
		MaxDimension: 50000,
		MaxPixels:    100_000_000,
	}
}

// Validator gates every file before a decoder touches it. It holds no
// state between calls; both checks are pure functions of filesystem
// state at call time.
type Validator struct {
	limits Limits
	bounds *BoundsChecker
	log    zerolog.Logger
}

func NewValidator(limits Limits, log zerolog.Logger) *Validator {
	return &Validator{
		limits: limits,
		bounds: NewBoundsChecker(limits, log),
		log:    log,
	}
}

// ValidateInput runs the full validation chain on an input file:
// path resolution, size ceiling, format sniffing, and image bounds.
// It short-circuits on the first failure and returns nil only when
// every stage passes.
func (v *Validator) ValidateInput(path string) *ValidationError {
	resolved, info, verr := ResolveFile(path)
	if verr != nil {
		return verr
	}

	if info.Size() == 0 {
		return newError(KindEmptyFile, "file is empty")
	}
	if info.Size() > v.limits.MaxFileSize {
		return newError(KindFileTooLarge, "file too large (max %dMB)", v.limits.MaxFileSize/(1024*1024))
	}

	kind, verr := SniffFormat(resolved)
	if verr != nil {
		return verr
	}

	return v.bounds.Check(resolved, kind)
}

// ValidateOutput checks that a proposed output path is safe to write:
// the parent directory must exist and be writable, and the resolved
// output must never be the resolved input. A pre-existing output file
// is an accepted overwrite and is only logged.
func (v *Validator) ValidateOutput(outputPath, inputPath string) *ValidationError {
	if outputPath == "" {
		return newError(KindOutputPathInvalid, "output path is empty")
	}

	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return newError(KindOutputPathInvalid, "invalid output path: %v", err)
	}

	dir, verr := ResolveDir(filepath.Dir(abs))
	if verr != nil {
		return verr
	}

	if verr := checkWritable(dir); verr != nil {
		return verr
	}

	resolvedOutput := filepath.Join(dir, filepath.Base(abs))
	if target, err := filepath.EvalSymlinks(resolvedOutput); err == nil {
		// The output already exists; compare through any symlink.
		resolvedOutput = target
	}
	if resolvedInput, _, verr := ResolveFile(inputPath); verr == nil && resolvedOutput == resolvedInput {
		return newError(KindOutputOverwritesInput, "cannot overwrite the input file")
	}

	if info, err := os.Stat(resolvedOutput); err == nil {
		// Only a regular file may be overwritten. A directory (or any
		// other filesystem object) at the output path is the caller's,
		// not ours to replace.
		if !info.Mode().IsRegular() {
			return newError(KindOutputPathInvalid, "output path exists and is not a regular file")
		}
		v.log.Info().Str("path", resolvedOutput).Msg("output file exists and will be overwritten")
	}

	return nil
}

// checkWritable probes the directory with a short-lived temp file.
// Permission bits alone lie on some filesystems (ACLs, read-only
// mounts), so an actual create is the only reliable answer.
func checkWritable(dir string) *ValidationError {
	probe, err := os.CreateTemp(dir, ".rinse-probe-*")
	if err != nil {
		return newError(KindOutputNotWritable, "output directory is not writable")
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}
