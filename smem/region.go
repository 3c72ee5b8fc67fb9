package smem

import "unsafe"

// Region describes one physically contiguous memory block backing the heap.
// Region 0 is the primary region carrying the global header and, on newer
// firmware, the partition directory. Regions are created once at init and
// never remapped or reclaimed by this package.
type Region struct {
	// AuxBase identifies the block: the physical base address recorded in
	// table-of-contents entries (low two bits reserved).
	AuxBase uint64

	// Data is the mapped bytes of the block.
	Data []byte
}

// contains reports whether p points into the region's mapped bytes.
func (r *Region) contains(p []byte) bool {
	return sliceWithin(r.Data, p)
}

// sliceWithin reports whether the first byte of p lies inside outer's
// backing array. Used by the virt-to-phys probe, which may legitimately be
// handed pointers that are not heap-owned.
func sliceWithin(outer, p []byte) bool {
	if len(outer) == 0 || len(p) == 0 {
		return false
	}
	base := uintptr(unsafe.Pointer(&outer[0]))
	addr := uintptr(unsafe.Pointer(&p[0]))
	return addr >= base && addr < base+uintptr(len(outer))
}

// sliceOffset returns the offset of p's first byte within outer. Caller has
// already established containment via sliceWithin.
func sliceOffset(outer, p []byte) uint64 {
	base := uintptr(unsafe.Pointer(&outer[0]))
	addr := uintptr(unsafe.Pointer(&p[0]))
	return uint64(addr - base)
}
