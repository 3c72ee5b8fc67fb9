package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadCanary indicates a private entry header without the sentinel value.
	ErrBadCanary = errors.New("format: bad canary")
	// ErrVersionMismatch indicates an unsupported structure version.
	ErrVersionMismatch = errors.New("format: unsupported version")
)
