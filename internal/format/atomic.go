package format

import (
	"sync/atomic"
	"unsafe"
)

// Ordered accesses for metadata publishes in shared memory.
//
// Remote processors walk the heap structures without taking any lock, so a
// metadata publish (advancing a free offset, flipping an allocated flag)
// must become visible only after the entry header and payload it covers.
// Go has no standalone write barrier; a release store through sync/atomic
// provides the required ordering, and the matching walk-entry reads use the
// acquire load.
//
// The offset must be 4-byte aligned relative to the mapping base. mmap
// returns page-aligned memory and Go heap slices are at least 8-byte
// aligned, so any layout offset that is a multiple of 4 is safe.

// StoreReleaseU32 publishes v at b[off:off+4] (little-endian layout assumed;
// SMEM runs on little-endian SoCs, and the atomic store is byte-order
// neutral only on such hosts) with release ordering.
func StoreReleaseU32(b []byte, off int, v uint32) {
	p := (*uint32)(unsafe.Pointer(&b[off]))
	atomic.StoreUint32(p, v)
}

// LoadAcquireU32 reads the u32 at b[off:off+4] with acquire ordering,
// pairing with StoreReleaseU32 on the writer side.
func LoadAcquireU32(b []byte, off int) uint32 {
	p := (*uint32)(unsafe.Pointer(&b[off]))
	return atomic.LoadUint32(p)
}
