package security

import (
	"errors"
	"fmt"
)

// Kind categorizes a validation failure so callers can branch on it
// without parsing messages. Every kind is recoverable at the call site.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindNotAFile              Kind = "not_a_file"
	KindPermissionDenied      Kind = "permission_denied"
	KindEmptyFile             Kind = "empty_file"
	KindFileTooLarge          Kind = "file_too_large"
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindInvalidMimeType       Kind = "invalid_mime_type"
	KindFormatMismatch        Kind = "format_mismatch"
	KindInvalidDimensions     Kind = "invalid_dimensions"
	KindTooManyPixels         Kind = "too_many_pixels"
	KindUnsupportedMode       Kind = "unsupported_mode"
	KindDecodeFailure         Kind = "decode_failure"
	KindEncodeFailure         Kind = "encode_failure"
	KindOutputPathInvalid     Kind = "output_path_invalid"
	KindOutputDirMissing      Kind = "output_dir_missing"
	KindOutputNotWritable     Kind = "output_not_writable"
	KindOutputOverwritesInput Kind = "output_overwrites_input"
)

// ValidationError is the verdict of a failed security check. It carries
// a machine-checkable Kind and a human-readable message suitable for
// surfacing to the user.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a ValidationError of the given kind.
func IsKind(err error, kind Kind) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Kind == kind
	}
	return false
}
