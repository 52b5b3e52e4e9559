// Package errs holds the error kinds shared by decoders, the project
// processor and the command line. Call sites wrap them with errors.Wrapf,
// callers match with errors.Is.
package errs

import "github.com/pkg/errors"

var (
	// ErrOutOfRange is returned when a computed offset or length leaves the buffer.
	ErrOutOfRange = errors.New("out of range")
	// ErrMalformedConfig is returned for missing or unparsable project fields.
	ErrMalformedConfig       = errors.New("malformed config")
	ErrUnsupportedVersion    = errors.New("unsupported objex version")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	// ErrNoInput is returned when there is no buffer to decode at all.
	ErrNoInput     = errors.New("no input")
	ErrInvalidFace = errors.New("invalid face index")
)

// Skippable reports whether err only invalidates the structure being
// decoded, so the caller can log it and continue with the next one.
func Skippable(err error) bool {
	return errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrInvalidFace)
}
