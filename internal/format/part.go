package format

import (
	"bytes"
	"fmt"
)

// PartHeader is a zero-copy view of the header at the start of a partition's
// mapped bytes.
type PartHeader struct {
	raw []byte
}

// isPart is a fast, zero-alloc check for the "$PRT" magic.
func isPart(b []byte) bool {
	const off = PartMagicOffset
	const n = PartMagicSize
	if len(b) < off+n {
		return false
	}
	return bytes.Equal(b[off:off+n], PartMagic)
}

// ParsePartHeader validates the magic and returns a header view over the
// partition's mapped bytes.
func ParsePartHeader(b []byte) (*PartHeader, error) {
	if len(b) < PartHeaderSize {
		return nil, fmt.Errorf("%w: partition too small for header (%d)", ErrTruncated, len(b))
	}
	if !isPart(b) {
		return nil, fmt.Errorf("%w: partition magic %q", ErrSignatureMismatch,
			b[PartMagicOffset:PartMagicOffset+PartMagicSize])
	}
	return &PartHeader{raw: b}, nil
}

// Host0 returns the first host recorded in the partition header.
func (p *PartHeader) Host0() uint16 { return ReadU16(p.raw, PartHost0Offset) }

// Host1 returns the second host recorded in the partition header.
func (p *PartHeader) Host1() uint16 { return ReadU16(p.raw, PartHost1Offset) }

// Size returns the partition size recorded in the header. It must match the
// directory entry; the caller validates the pair.
func (p *PartHeader) Size() uint32 { return ReadU32(p.raw, PartSizeOffset) }

// FreeUncached returns the offset of the first free uncached byte, read with
// acquire ordering since remote writers publish it after their data writes.
func (p *PartHeader) FreeUncached() uint32 { return LoadAcquireU32(p.raw, PartFreeUncachedOff) }

// FreeCached returns the offset of the first free cached byte.
func (p *PartHeader) FreeCached() uint32 { return LoadAcquireU32(p.raw, PartFreeCachedOff) }

// PublishFreeUncached advances the uncached free offset with release
// ordering, so a lock-free remote reader walking up to the new boundary
// always sees the entry bytes the advance covers.
func (p *PartHeader) PublishFreeUncached(v uint32) {
	StoreReleaseU32(p.raw, PartFreeUncachedOff, v)
}

// Entry is a zero-copy view of one 12-byte private entry header inside a
// partition.
type Entry []byte

// EntryAt returns the entry header at off within the partition, or
// ErrTruncated when the header would run past the partition bytes. Every
// traversal step re-validates bounds before dereferencing.
func EntryAt(part []byte, off int) (Entry, error) {
	if off < 0 || off+EntrySize > len(part) {
		return nil, fmt.Errorf("%w: entry header at 0x%X (partition len 0x%X)",
			ErrTruncated, off, len(part))
	}
	return Entry(part[off : off+EntrySize]), nil
}

// Canary returns the sentinel field; PrivateCanary on every intact entry.
func (e Entry) Canary() uint16 { return ReadU16(e, EntryCanaryOffset) }

// Item returns the entry's item id.
func (e Entry) Item() uint16 { return ReadU16(e, EntryItemOffset) }

// Size returns the payload size including padding, always 8-byte aligned.
func (e Entry) Size() uint32 { return ReadU32(e, EntrySizeOffset) }

// PaddingData returns the number of padding bytes at the end of the payload.
func (e Entry) PaddingData() uint16 { return ReadU16(e, EntryPaddingDataOff) }

// PaddingHdr returns the number of padding bytes between header and payload.
func (e Entry) PaddingHdr() uint16 { return ReadU16(e, EntryPaddingHdrOff) }

// CheckCanary returns ErrBadCanary unless the sentinel is intact.
func (e Entry) CheckCanary() error {
	if e.Canary() != PrivateCanary {
		return fmt.Errorf("%w: 0x%04X at item %d", ErrBadCanary, e.Canary(), e.Item())
	}
	return nil
}

// WriteEntry fills in a fresh uncached entry header for item with the given
// logical payload size. The recorded size is 8-byte aligned and the data
// padding records the rounding. The caller publishes the free offset after
// the payload bytes are in place.
func WriteEntry(e Entry, item uint16, size int) {
	aligned := Align8(size)
	PutU16(e, EntryCanaryOffset, PrivateCanary)
	PutU16(e, EntryItemOffset, item)
	PutU32(e, EntrySizeOffset, uint32(aligned))
	PutU16(e, EntryPaddingDataOff, uint16(aligned-size))
	PutU16(e, EntryPaddingHdrOff, 0)
}
