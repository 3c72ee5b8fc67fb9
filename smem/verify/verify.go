// Package verify provides validation functions for SMEM heap images.
// These helpers walk the raw image without constructing a heap, so tests
// and tooling can check invariants on images too damaged to attach to.
package verify

import (
	"fmt"

	"github.com/joshuapare/smemkit/internal/format"
)

// ValidationError reports one failed invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the whole image in one call: the global header,
// then the scheme-specific structures the header selects. Returns the first
// error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := GlobalHeader(data); err != nil {
		return err
	}
	switch format.ReadU32(data, format.HeaderVersionOffset+format.VersionSlotSBL*4) >> 16 {
	case format.VersionGlobalPart:
		if err := Directory(data); err != nil {
			return err
		}
		return Partitions(data)
	default:
		return TOC(data)
	}
}

// GlobalHeader validates the fixed header: size, firmware-populated state
// flags, and a known protocol version.
func GlobalHeader(data []byte) error {
	if len(data) < format.HeaderSize {
		return &ValidationError{
			Type:    "GlobalHeader",
			Message: fmt.Sprintf("image too small: %d bytes (need %d)", len(data), format.HeaderSize),
			Offset:  -1,
		}
	}

	if v := format.ReadU32(data, format.HeaderInitializedOff); v != 1 {
		return &ValidationError{
			Type:    "GlobalHeader",
			Message: fmt.Sprintf("initialized flag is %d (expected 1)", v),
			Offset:  format.HeaderInitializedOff,
		}
	}
	if v := format.ReadU32(data, format.HeaderReservedOff); v != 0 {
		return &ValidationError{
			Type:    "GlobalHeader",
			Message: fmt.Sprintf("reserved field is 0x%X (expected 0)", v),
			Offset:  format.HeaderReservedOff,
		}
	}

	version := format.ReadU32(data, format.HeaderVersionOffset+format.VersionSlotSBL*4) >> 16
	if version != format.VersionGlobalHeap && version != format.VersionGlobalPart {
		return &ValidationError{
			Type:    "GlobalHeader",
			Message: fmt.Sprintf("unknown protocol version %d", version),
			Offset:  format.HeaderVersionOffset + format.VersionSlotSBL*4,
		}
	}
	return nil
}

// TOC validates the legacy flat heap: the bump-allocator state and every
// allocated table-of-contents slot that points into the primary region.
func TOC(data []byte) error {
	free := int(format.ReadU32(data, format.HeaderFreeOffsetOff))
	avail := int(format.ReadU32(data, format.HeaderAvailableOff))
	if free < format.HeaderSize || avail < 0 || free+avail > len(data) {
		return &ValidationError{
			Type:    "TOC",
			Message: fmt.Sprintf("allocator state out of range: free=0x%X available=0x%X", free, avail),
			Offset:  format.HeaderFreeOffsetOff,
		}
	}

	for i := 0; i < format.ItemCount; i++ {
		off := format.HeaderTOCOffset + i*format.GlobalEntrySize
		if format.ReadU32(data, off+format.GlobalEntryAllocatedOff) == 0 {
			continue
		}
		size := int(format.ReadU32(data, off+format.GlobalEntrySizeOff))
		if size%8 != 0 {
			return &ValidationError{
				Type:    "TOC",
				Message: fmt.Sprintf("item %d size not 8-byte aligned: %d", i, size),
				Offset:  off,
			}
		}
		// Entries on auxiliary regions cannot be bounds-checked against
		// this image.
		if format.ReadU32(data, off+format.GlobalEntryAuxBaseOff)&format.AuxBaseMask != 0 {
			continue
		}
		itemOff := int(format.ReadU32(data, off+format.GlobalEntryOffsetOff))
		if itemOff < format.HeaderSize || itemOff+size > len(data) {
			return &ValidationError{
				Type:    "TOC",
				Message: fmt.Sprintf("item %d exceeds region: offset=0x%X size=0x%X", i, itemOff, size),
				Offset:  off,
				Details: map[string]interface{}{
					"item":   i,
					"offset": itemOff,
					"size":   size,
				},
			}
		}
	}
	return nil
}

// Directory validates the partition directory: magic, version, entry table
// bounds, partition extents, and host-pair uniqueness including exactly one
// global partition.
func Directory(data []byte) error {
	if len(data) < format.PTableSize+format.HeaderSize {
		return &ValidationError{
			Type:    "Directory",
			Message: fmt.Sprintf("image too small for a partition directory: %d bytes", len(data)),
			Offset:  -1,
		}
	}
	ptOff := len(data) - format.PTableSize
	pt := data[ptOff:]

	if _, err := format.ParsePTable(pt); err != nil {
		return &ValidationError{
			Type:    "Directory",
			Message: err.Error(),
			Offset:  ptOff,
		}
	}

	numEntries := int(format.ReadU32(pt, format.PTableNumEntriesOff))
	globals := 0
	seen := map[[2]uint16]int{}
	for i := 0; i < numEntries; i++ {
		off := format.PTableEntriesOffset + i*format.PTableEntrySize
		if off+format.PTableEntrySize > len(pt) {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("entry %d exceeds directory window (count %d)", i, numEntries),
				Offset:  ptOff + off,
			}
		}
		entry := format.PTableEntry(pt[off : off+format.PTableEntrySize])
		if entry.IsHole() {
			continue
		}

		partOff := int(entry.Offset())
		partSize := int(entry.Size())
		if partOff < format.HeaderSize || partOff+partSize > ptOff {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("entry %d partition exceeds region: offset=0x%X size=0x%X", i, partOff, partSize),
				Offset:  ptOff + off,
			}
		}

		host0, host1 := entry.Host0(), entry.Host1()
		pair := [2]uint16{host0, host1}
		if host1 < host0 {
			pair = [2]uint16{host1, host0}
		}
		if prev, dup := seen[pair]; dup {
			return &ValidationError{
				Type:    "Directory",
				Message: fmt.Sprintf("entries %d and %d share host pair %d:%d", prev, i, host0, host1),
				Offset:  ptOff + off,
			}
		}
		seen[pair] = i
		if host0 == format.HostGlobal && host1 == format.HostGlobal {
			globals++
		}
	}

	if globals != 1 {
		return &ValidationError{
			Type:    "Directory",
			Message: fmt.Sprintf("expected exactly one global partition, found %d", globals),
			Offset:  ptOff,
		}
	}
	return nil
}

// Partitions validates every partition the directory lists: header magic,
// agreement with the directory entry, free-offset ordering, and the canary
// of every uncached entry up to the free boundary.
func Partitions(data []byte) error {
	ptOff := len(data) - format.PTableSize
	pt := data[ptOff:]
	numEntries := int(format.ReadU32(pt, format.PTableNumEntriesOff))

	for i := 0; i < numEntries; i++ {
		off := format.PTableEntriesOffset + i*format.PTableEntrySize
		if off+format.PTableEntrySize > len(pt) {
			break // Directory reports this
		}
		entry := format.PTableEntry(pt[off : off+format.PTableEntrySize])
		if entry.IsHole() {
			continue
		}
		if err := validatePartition(data, entry, i); err != nil {
			return err
		}
	}
	return nil
}

func validatePartition(data []byte, entry format.PTableEntry, index int) error {
	partOff := int(entry.Offset())
	partSize := int(entry.Size())
	if partOff < 0 || partOff+partSize > len(data) {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("directory entry %d exceeds image", index),
			Offset:  partOff,
		}
	}
	part := data[partOff : partOff+partSize]

	hdr, err := format.ParsePartHeader(part)
	if err != nil {
		return &ValidationError{
			Type:    "Partition",
			Message: err.Error(),
			Offset:  partOff,
		}
	}
	if hdr.Host0() != entry.Host0() || hdr.Host1() != entry.Host1() {
		return &ValidationError{
			Type: "Partition",
			Message: fmt.Sprintf("host pair mismatch: header %d:%d, directory %d:%d",
				hdr.Host0(), hdr.Host1(), entry.Host0(), entry.Host1()),
			Offset: partOff,
		}
	}
	if int(hdr.Size()) != partSize {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("size mismatch: header 0x%X, directory 0x%X", hdr.Size(), partSize),
			Offset:  partOff,
		}
	}

	uncached := int(hdr.FreeUncached())
	cached := int(hdr.FreeCached())
	if uncached < format.PartHeaderSize || uncached > cached || cached > partSize {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("free offsets out of order: uncached=0x%X cached=0x%X size=0x%X", uncached, cached, partSize),
			Offset:  partOff,
			Details: map[string]interface{}{
				"uncached": uncached,
				"cached":   cached,
			},
		}
	}

	return validateUncachedEntries(part, partOff, uncached)
}

// validateUncachedEntries walks the uncached list and checks that every
// entry carries the canary and lands exactly on the free boundary.
func validateUncachedEntries(part []byte, partOff, end int) error {
	pos := format.PartHeaderSize
	for pos < end {
		e, err := format.EntryAt(part, pos)
		if err != nil {
			return &ValidationError{
				Type:    "Partition",
				Message: err.Error(),
				Offset:  partOff + pos,
			}
		}
		if err := e.CheckCanary(); err != nil {
			return &ValidationError{
				Type:    "Partition",
				Message: err.Error(),
				Offset:  partOff + pos,
			}
		}
		pos += format.EntrySize + int(e.PaddingHdr()) + int(e.Size())
	}
	if pos != end {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("entry list overruns free boundary: 0x%X past 0x%X", pos, end),
			Offset:  partOff + pos,
		}
	}
	return nil
}
