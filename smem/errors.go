package smem

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the heap header has not been populated by
	// firmware yet. Recoverable; the caller should retry init later.
	ErrNotReady = errors.New("smem: not ready")

	// ErrNotFound indicates the requested item has never been allocated,
	// or no backing region matched a lookup.
	ErrNotFound = errors.New("smem: not found")

	// ErrInvalidItem indicates an item id below the firmware-reserved
	// threshold or at/above the heap's item capacity. Caller bug.
	ErrInvalidItem = errors.New("smem: invalid item")

	// ErrAlreadyExists indicates allocate was called twice for one item.
	ErrAlreadyExists = errors.New("smem: item already allocated")

	// ErrOutOfSpace indicates the partition or heap cannot hold the
	// requested allocation. Fatal to the operation, not retried.
	ErrOutOfSpace = errors.New("smem: out of space")

	// ErrCorrupt indicates a structural invariant violation: bad magic,
	// bad canary, size overflow, duplicate host mapping. Unrecoverable for
	// the affected region or partition; traversal stops at the first hit.
	ErrCorrupt = errors.New("smem: corrupt layout")
)

// CorruptError wraps ErrCorrupt with enough context to diagnose a
// firmware/bootloader mismatch: which structure, which hosts, which offset.
type CorruptError struct {
	Struct string // "directory", "partition", "entry", "toc", ...
	Host0  uint16
	Host1  uint16
	Offset int // byte offset within the structure's backing, -1 when n/a
	Detail string
}

func (e *CorruptError) Error() string {
	msg := "smem: corrupt " + e.Struct
	if e.Host0 != 0 || e.Host1 != 0 {
		msg += fmt.Sprintf(" (hosts %d:%d)", e.Host0, e.Host1)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at 0x%X", e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap makes errors.Is(err, ErrCorrupt) hold for every CorruptError.
func (e *CorruptError) Unwrap() error { return ErrCorrupt }

func corruptf(structure string, offset int, format string, args ...interface{}) error {
	return &CorruptError{
		Struct: structure,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
