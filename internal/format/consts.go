// Package format houses low-level decoders for the SMEM shared-memory heap
// layout. The goal is to keep the parsing focused, allocation-free where
// possible, and independent from the public API so higher-level packages can
// orchestrate the data in a more ergonomic form.
//
// Every multi-byte field is little-endian on the wire, independent of the
// host. Structures are accessed through zero-copy views over the mapped
// region; nothing in this package mutates shared memory except the explicit
// Put*/write helpers.
package format

var (
	// PTableMagic is the four-byte magic at the start of the partition
	// directory, found 4 KiB before the end of the primary region.
	// Layout:
	//   0x00  '$' 'T' 'O' 'C'
	PTableMagic = []byte{'$', 'T', 'O', 'C'}

	// PartMagic is the four-byte magic at the start of every partition.
	// Layout:
	//   0x00  '$' 'P' 'R' 'T'
	PartMagic = []byte{'$', 'P', 'R', 'T'}

	// InfoMagic identifies the optional SmemInfo record trailing the
	// partition directory entries.
	// Layout:
	//   0x00  'S' 'I' 'I' 'I'
	InfoMagic = []byte{'S', 'I', 'I', 'I'}
)

const (
	// PrivateCanary is the sentinel stored in every private entry header.
	// Both bytes are identical so no byte swapping is needed on any host.
	PrivateCanary = 0xA5A5

	// ItemCount is the default highest accepted item number, for both the
	// global and the private heaps, unless a SmemInfo record overrides it.
	ItemCount = 512

	// ItemLastFixed is the number of leading item ids reserved for the boot
	// loader while initializing the heap. Caller-facing allocation of these
	// is always rejected.
	ItemLastFixed = 8

	// HostApps is the processor/host identifier for the application
	// processor, the local host from this boot stage's point of view.
	HostApps = 0

	// HostGlobal is the processor/host identifier marking the global
	// partition in the directory (both host fields carry it).
	HostGlobal = 0xFFFE

	// HostAny directs lookup/alloc to the global partition or the legacy
	// flat heap rather than a specific remote host's partition.
	HostAny = 0xFFFF

	// HostCount is the maximum number of processors/hosts in a system.
	HostCount = 20

	// VersionSlotSBL is the version-array slot written by the boot loader;
	// its upper halfword selects the heap scheme.
	VersionSlotSBL = 7

	// VersionGlobalHeap selects the legacy flat table-of-contents heap.
	VersionGlobalHeap = 11

	// VersionGlobalPart selects the partitioned heap with a directory.
	VersionGlobalPart = 12

	// PTableSize is the reserved space for the partition directory at the
	// end of the primary region.
	PTableSize = 4096
)

// Global header field offsets. The header sits at offset 0 of the primary
// region. The first 64 bytes are the legacy proc-comm mailbox area, opaque
// to this implementation.
const (
	HeaderProcCommSize   = 64
	HeaderVersionOffset  = 0x40 // 32 x u32
	HeaderVersionCount   = 32
	HeaderInitializedOff = 0xC0
	HeaderFreeOffsetOff  = 0xC4
	HeaderAvailableOff   = 0xC8
	HeaderReservedOff    = 0xCC
	HeaderTOCOffset      = 0xD0
	HeaderSize           = HeaderTOCOffset + ItemCount*GlobalEntrySize // 8400
)

// GlobalEntry field offsets within one 16-byte table-of-contents record.
const (
	GlobalEntrySize         = 16
	GlobalEntryAllocatedOff = 0x00
	GlobalEntryOffsetOff    = 0x04
	GlobalEntrySizeOff      = 0x08
	GlobalEntryAuxBaseOff   = 0x0C

	// AuxBaseMask strips the two reserved low bits from aux_base.
	AuxBaseMask = 0xFFFFFFFC
)

// Partition directory field offsets.
const (
	PTableMagicOffset   = 0x00
	PTableMagicSize     = 4
	PTableVersionOffset = 0x04
	PTableNumEntriesOff = 0x08
	PTableEntriesOffset = 0x0C

	// PTableVersion is the only directory version this parser accepts.
	PTableVersion = 1
)

// Partition directory entry field offsets within one 20-byte record.
const (
	PTableEntrySize         = 20
	PTableEntryOffsetOff    = 0x00
	PTableEntrySizeOff      = 0x04
	PTableEntryFlagsOff     = 0x08
	PTableEntryHost0Off     = 0x0C
	PTableEntryHost1Off     = 0x0E
	PTableEntryCachelineOff = 0x10
)

// SmemInfo record field offsets. The record trails the last directory entry.
const (
	InfoSize          = 18
	InfoMagicOffset   = 0x00
	InfoMagicSize     = 4
	InfoRegionSizeOff = 0x04
	InfoBaseAddrOff   = 0x08
	InfoReservedOff   = 0x0C
	InfoNumItemsOff   = 0x10
)

// Partition header field offsets, at offset 0 of each partition.
const (
	PartHeaderSize      = 20
	PartMagicOffset     = 0x00
	PartMagicSize       = 4
	PartHost0Offset     = 0x04
	PartHost1Offset     = 0x06
	PartSizeOffset      = 0x08
	PartFreeUncachedOff = 0x0C
	PartFreeCachedOff   = 0x10
)

// Private entry header field offsets within one 12-byte record. Uncached
// entries precede their payload; cached entries trail it.
const (
	EntrySize           = 12
	EntryCanaryOffset   = 0x00
	EntryItemOffset     = 0x02
	EntrySizeOffset     = 0x04
	EntryPaddingDataOff = 0x08
	EntryPaddingHdrOff  = 0x0A
)
