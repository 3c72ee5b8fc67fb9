package format

import "fmt"

// Header is a zero-copy view of the global heap header at offset 0 of the
// primary region. All accessors read directly from the underlying mapping.
type Header struct {
	raw []byte // len >= HeaderSize
}

// ParseHeader validates that the buffer can hold the fixed header and
// returns a view. It performs no semantic validation; see Initialized and
// Reserved for the firmware-populated state checks.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: region too small for global header (%d < %d)",
			ErrTruncated, len(b), HeaderSize)
	}
	return &Header{raw: b[:HeaderSize]}, nil
}

// Raw returns the raw header bytes.
func (h *Header) Raw() []byte { return h.raw }

// Version returns the version-array slot at index i.
func (h *Header) Version(i int) uint32 {
	return ReadU32(h.raw, HeaderVersionOffset+i*4)
}

// ProtocolVersion extracts the heap scheme selector from the boot loader's
// version slot: VersionGlobalHeap or VersionGlobalPart on a sane image.
func (h *Header) ProtocolVersion() uint32 {
	return h.Version(VersionSlotSBL) >> 16
}

// Initialized reports the firmware initialized flag; must be 1.
func (h *Header) Initialized() uint32 { return ReadU32(h.raw, HeaderInitializedOff) }

// Reserved returns the reserved field; must be 0.
func (h *Header) Reserved() uint32 { return ReadU32(h.raw, HeaderReservedOff) }

// FreeOffset returns the offset of the first unallocated byte in the legacy
// flat heap.
func (h *Header) FreeOffset() uint32 { return ReadU32(h.raw, HeaderFreeOffsetOff) }

// Available returns the number of bytes available for legacy allocation.
func (h *Header) Available() uint32 { return ReadU32(h.raw, HeaderAvailableOff) }

// Entry returns a view of table-of-contents slot i. The caller bounds-checks
// i against the item capacity.
func (h *Header) Entry(i int) GlobalEntry {
	off := HeaderTOCOffset + i*GlobalEntrySize
	return GlobalEntry(h.raw[off : off+GlobalEntrySize])
}

// GlobalEntry is a zero-copy view of one 16-byte table-of-contents record.
type GlobalEntry []byte

// Allocated reports whether the slot is in use. Read with acquire ordering
// so a slot observed allocated has a consistent offset/size.
func (e GlobalEntry) Allocated() bool { return LoadAcquireU32(e, GlobalEntryAllocatedOff) != 0 }

// Offset returns the allocation's offset within its backing region.
func (e GlobalEntry) Offset() uint32 { return ReadU32(e, GlobalEntryOffsetOff) }

// Size returns the allocation's 8-byte-aligned size.
func (e GlobalEntry) Size() uint32 { return ReadU32(e, GlobalEntrySizeOff) }

// AuxBase returns the backing region identifier with the reserved low bits
// stripped; 0 selects the default region.
func (e GlobalEntry) AuxBase() uint32 { return ReadU32(e, GlobalEntryAuxBaseOff) & AuxBaseMask }

// SetOffset records the allocation offset. Write side of the allocate path.
func (e GlobalEntry) SetOffset(v uint32) { PutU32(e, GlobalEntryOffsetOff, v) }

// SetSize records the aligned allocation size.
func (e GlobalEntry) SetSize(v uint32) { PutU32(e, GlobalEntrySizeOff, v) }

// Publish marks the slot allocated with release ordering, so lock-free
// remote readers never observe the flag before the offset and size.
func (e GlobalEntry) Publish() { StoreReleaseU32(e, GlobalEntryAllocatedOff, 1) }
