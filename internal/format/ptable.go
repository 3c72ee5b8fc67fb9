package format

import (
	"bytes"
	"fmt"
)

// PTable is a zero-copy view of the partition directory placed 4 KiB before
// the end of the primary region.
type PTable struct {
	raw []byte
}

// isPTable is a fast, zero-alloc check for the "$TOC" magic.
func isPTable(b []byte) bool {
	const off = PTableMagicOffset
	const n = PTableMagicSize
	if len(b) < off+n {
		return false
	}
	return bytes.Equal(b[off:off+n], PTableMagic)
}

// ParsePTable validates the directory magic and version and returns a view.
// The buffer is the trailing PTableSize window of the primary region.
func ParsePTable(b []byte) (*PTable, error) {
	if len(b) < PTableEntriesOffset {
		return nil, fmt.Errorf("%w: directory window too small (%d)", ErrTruncated, len(b))
	}
	if !isPTable(b) {
		return nil, fmt.Errorf("%w: partition directory magic %q", ErrSignatureMismatch,
			b[PTableMagicOffset:PTableMagicOffset+PTableMagicSize])
	}
	if v := ReadU32(b, PTableVersionOffset); v != PTableVersion {
		return nil, fmt.Errorf("%w: partition directory version %d (expected %d)",
			ErrVersionMismatch, v, PTableVersion)
	}
	return &PTable{raw: b}, nil
}

// NumEntries returns the directory's declared entry count.
func (t *PTable) NumEntries() uint32 { return ReadU32(t.raw, PTableNumEntriesOff) }

// Entry returns a view of directory entry i. Returns ErrTruncated when the
// declared count runs past the directory window; the declared count is
// firmware-controlled and must never be trusted.
func (t *PTable) Entry(i int) (PTableEntry, error) {
	off := PTableEntriesOffset + i*PTableEntrySize
	if off+PTableEntrySize > len(t.raw) {
		return nil, fmt.Errorf("%w: directory entry %d at 0x%X", ErrTruncated, i, off)
	}
	return PTableEntry(t.raw[off : off+PTableEntrySize]), nil
}

// Info returns the optional SmemInfo record trailing the last directory
// entry, or nil when the record is absent, truncated, or carries a bad
// magic. Absence is not an error; the caller falls back to ItemCount.
func (t *PTable) Info() Info {
	off := PTableEntriesOffset + int(t.NumEntries())*PTableEntrySize
	if off < 0 || off+InfoSize > len(t.raw) {
		return nil
	}
	rec := t.raw[off : off+InfoSize]
	if !bytes.Equal(rec[InfoMagicOffset:InfoMagicOffset+InfoMagicSize], InfoMagic) {
		return nil
	}
	return Info(rec)
}

// PTableEntry is a zero-copy view of one 20-byte directory entry.
type PTableEntry []byte

// Offset returns the partition's offset within the primary region.
func (e PTableEntry) Offset() uint32 { return ReadU32(e, PTableEntryOffsetOff) }

// Size returns the partition's size in bytes.
func (e PTableEntry) Size() uint32 { return ReadU32(e, PTableEntrySizeOff) }

// Flags returns the entry flags (currently unused by firmware).
func (e PTableEntry) Flags() uint32 { return ReadU32(e, PTableEntryFlagsOff) }

// Host0 returns the first processor/host with access to this partition.
func (e PTableEntry) Host0() uint16 { return ReadU16(e, PTableEntryHost0Off) }

// Host1 returns the second processor/host with access to this partition.
func (e PTableEntry) Host1() uint16 { return ReadU16(e, PTableEntryHost1Off) }

// Cacheline returns the alignment for cached entries in this partition.
func (e PTableEntry) Cacheline() uint32 { return ReadU32(e, PTableEntryCachelineOff) }

// IsHole reports whether the entry is an unused slot to be skipped.
func (e PTableEntry) IsHole() bool { return e.Offset() == 0 || e.Size() == 0 }

// Info is a zero-copy view of the SmemInfo record.
type Info []byte

// RegionSize returns the recorded size of the smem region.
func (n Info) RegionSize() uint32 { return ReadU32(n, InfoRegionSizeOff) }

// BaseAddr returns the recorded base address of the smem region.
func (n Info) BaseAddr() uint32 { return ReadU32(n, InfoBaseAddrOff) }

// NumItems returns the highest accepted item number.
func (n Info) NumItems() uint16 { return ReadU16(n, InfoNumItemsOff) }
