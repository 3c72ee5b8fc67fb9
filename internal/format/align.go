package format

// Alignment utilities for the SMEM heap layout. Allocation sizes are rounded
// to 8-byte boundaries; cached entry headers are additionally aligned to the
// partition's cacheline value from the directory entry.

const (
	entryAlignment     = 8
	entryAlignmentMask = entryAlignment - 1
)

// Align8 returns n aligned up to the next 8-byte boundary.
// Used for allocation sizes recorded in entry headers.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + entryAlignmentMask) & ^entryAlignmentMask
}

// AlignTo returns n aligned up to the next multiple of align. A zero or
// negative align is treated as 1, since directory entries written by broken
// firmware have been observed with a zero cacheline.
func AlignTo(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}
