// Package testutil builds synthetic heap images for tests. The builders
// write only the firmware-owned metadata; tests mutate the returned bytes
// directly to model corruption.
package testutil

import (
	"github.com/joshuapare/smemkit/internal/format"
)

// LegacyImage builds a flat-heap image (protocol version 11) of the given
// total size with the given number of allocatable bytes. The free offset
// starts directly after the global header.
func LegacyImage(size int, available uint32) []byte {
	b := make([]byte, size)
	format.PutU32(b, format.HeaderVersionOffset+format.VersionSlotSBL*4,
		format.VersionGlobalHeap<<16)
	format.PutU32(b, format.HeaderInitializedOff, 1)
	format.PutU32(b, format.HeaderFreeOffsetOff, format.HeaderSize)
	format.PutU32(b, format.HeaderAvailableOff, available)
	return b
}

// PartitionSpec describes one partition to carve into a built image.
type PartitionSpec struct {
	Offset    int
	Size      int
	Host0     uint16
	Host1     uint16
	Cacheline uint32

	// Hole leaves the directory slot zeroed, modeling an unused entry.
	Hole bool

	// SkipHeader leaves the partition's own header unwritten, so the
	// directory points at garbage.
	SkipHeader bool
}

// PartitionedImage builds a partitioned-heap image (protocol version 12):
// global header, a directory in the trailing 4 KiB window, and a header in
// each listed partition with both free offsets at their reset positions.
// numItems of zero omits the item-count override record.
func PartitionedImage(size int, numItems uint16, parts []PartitionSpec) []byte {
	b := make([]byte, size)
	format.PutU32(b, format.HeaderVersionOffset+format.VersionSlotSBL*4,
		format.VersionGlobalPart<<16)
	format.PutU32(b, format.HeaderInitializedOff, 1)

	pt := b[size-format.PTableSize:]
	copy(pt[format.PTableMagicOffset:], format.PTableMagic)
	format.PutU32(pt, format.PTableVersionOffset, format.PTableVersion)
	format.PutU32(pt, format.PTableNumEntriesOff, uint32(len(parts)))

	for i, p := range parts {
		entry := pt[format.PTableEntriesOffset+i*format.PTableEntrySize:]
		if p.Hole {
			continue
		}
		format.PutU32(entry, format.PTableEntryOffsetOff, uint32(p.Offset))
		format.PutU32(entry, format.PTableEntrySizeOff, uint32(p.Size))
		format.PutU16(entry, format.PTableEntryHost0Off, p.Host0)
		format.PutU16(entry, format.PTableEntryHost1Off, p.Host1)
		format.PutU32(entry, format.PTableEntryCachelineOff, p.Cacheline)
		if !p.SkipHeader {
			writePartHeader(b[p.Offset:], p)
		}
	}

	if numItems != 0 {
		rec := pt[format.PTableEntriesOffset+len(parts)*format.PTableEntrySize:]
		copy(rec[format.InfoMagicOffset:], format.InfoMagic)
		format.PutU32(rec, format.InfoRegionSizeOff, uint32(size))
		format.PutU16(rec, format.InfoNumItemsOff, numItems)
	}
	return b
}

func writePartHeader(b []byte, p PartitionSpec) {
	copy(b[format.PartMagicOffset:], format.PartMagic)
	format.PutU16(b, format.PartHost0Offset, p.Host0)
	format.PutU16(b, format.PartHost1Offset, p.Host1)
	format.PutU32(b, format.PartSizeOffset, uint32(p.Size))
	format.PutU32(b, format.PartFreeUncachedOff, format.PartHeaderSize)
	format.PutU32(b, format.PartFreeCachedOff, uint32(p.Size))
}
