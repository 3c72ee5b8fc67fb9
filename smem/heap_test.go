package smem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smemkit/internal/format"
	"github.com/joshuapare/smemkit/internal/testutil"
	"github.com/joshuapare/smemkit/smem"
)

const legacyBase = 0x8060_0000

func newLegacyHeap(t *testing.T, size int, available uint32) (*smem.Heap, []byte) {
	t.Helper()
	img := testutil.LegacyImage(size, available)
	h, err := smem.New([]smem.Region{{AuxBase: legacyBase, Data: img}}, smem.Options{})
	require.NoError(t, err)
	return h, img
}

func TestLegacyAllocGetRoundTrip(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 4096)
	require.Equal(t, uint32(format.VersionGlobalHeap), h.Version())
	require.Equal(t, 512, h.ItemCount())

	free, err := h.FreeSpace(smem.HostAny)
	require.NoError(t, err)
	require.Equal(t, 4096, free)

	require.NoError(t, h.Alloc(smem.HostAny, 8, 100))

	data, err := h.Get(smem.HostAny, 8)
	require.NoError(t, err)
	require.Len(t, data, 104) // rounded up to 8 bytes

	free, err = h.FreeSpace(smem.HostAny)
	require.NoError(t, err)
	require.Equal(t, 3992, free)

	// The first allocation lands directly after the global header.
	phys, ok := h.VirtToPhys(data)
	require.True(t, ok)
	require.Equal(t, uint64(legacyBase+format.HeaderSize), phys)
}

func TestLegacyAllocTwice(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 4096)
	require.NoError(t, h.Alloc(smem.HostAny, 42, 16))
	err := h.Alloc(smem.HostAny, 42, 16)
	require.ErrorIs(t, err, smem.ErrAlreadyExists)

	// The failed retry must not consume space.
	free, err := h.FreeSpace(smem.HostAny)
	require.NoError(t, err)
	require.Equal(t, 4096-16, free)
}

func TestLegacyReservedAndOutOfRangeItems(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 4096)
	for _, item := range []uint16{0, 3, 7} {
		require.ErrorIs(t, h.Alloc(smem.HostAny, item, 16), smem.ErrInvalidItem)
	}
	require.ErrorIs(t, h.Alloc(smem.HostAny, 512, 16), smem.ErrInvalidItem)
	_, err := h.Get(smem.HostAny, 512)
	require.ErrorIs(t, err, smem.ErrInvalidItem)

	// Firmware-reserved items may be read, just not allocated.
	_, err = h.Get(smem.HostAny, 3)
	require.ErrorIs(t, err, smem.ErrNotFound)
}

func TestLegacyNotFound(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 4096)
	_, err := h.Get(smem.HostAny, 99)
	require.ErrorIs(t, err, smem.ErrNotFound)
}

func TestLegacyOutOfSpace(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 128)
	require.ErrorIs(t, h.Alloc(smem.HostAny, 10, 200), smem.ErrOutOfSpace)
	// A fitting allocation still succeeds afterwards.
	require.NoError(t, h.Alloc(smem.HostAny, 10, 64))
}

func TestNotReady(t *testing.T) {
	img := testutil.LegacyImage(16384, 4096)
	format.PutU32(img, format.HeaderInitializedOff, 0)
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrNotReady)

	format.PutU32(img, format.HeaderInitializedOff, 1)
	format.PutU32(img, format.HeaderReservedOff, 7)
	_, err = smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrNotReady)
}

func TestReadyProbe(t *testing.T) {
	img := testutil.LegacyImage(16384, 4096)
	require.True(t, smem.Ready(img))

	format.PutU32(img, format.HeaderInitializedOff, 0)
	require.False(t, smem.Ready(img))
	require.False(t, smem.Ready(img[:100]))
}

func TestUnsupportedProtocolVersion(t *testing.T) {
	img := testutil.LegacyImage(16384, 4096)
	format.PutU32(img, format.HeaderVersionOffset+format.VersionSlotSBL*4, 9<<16)
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

const (
	partImageSize = 65536
	globalPartOff = 0x4000
	globalPartLen = 1024
)

func globalOnlyImage() []byte {
	return testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
	})
}

func newPartHeap(t *testing.T, img []byte) *smem.Heap {
	t.Helper()
	h, err := smem.New([]smem.Region{{AuxBase: legacyBase, Data: img}}, smem.Options{})
	require.NoError(t, err)
	return h
}

func TestPartitionedAllocGetRoundTrip(t *testing.T) {
	h := newPartHeap(t, globalOnlyImage())
	require.Equal(t, uint32(format.VersionGlobalPart), h.Version())

	require.NoError(t, h.Alloc(smem.HostGlobal, 9, 50))

	data, err := h.Get(smem.HostGlobal, 9)
	require.NoError(t, err)
	require.Len(t, data, 50) // logical size, padding stripped

	free, err := h.FreeSpace(smem.HostGlobal)
	require.NoError(t, err)
	// 1024 total, 20 header, 12 entry header, 56 padded payload.
	require.Equal(t, 936, free)

	require.ErrorIs(t, h.Alloc(smem.HostGlobal, 9, 50), smem.ErrAlreadyExists)

	// HostAny routes to the same global partition.
	same, err := h.Get(smem.HostAny, 9)
	require.NoError(t, err)
	require.Equal(t, &data[0], &same[0])
}

func TestPartitionedFreeSpaceMonotonic(t *testing.T) {
	h := newPartHeap(t, globalOnlyImage())
	prev, err := h.FreeSpace(smem.HostAny)
	require.NoError(t, err)
	for item := uint16(10); item < 15; item++ {
		require.NoError(t, h.Alloc(smem.HostAny, item, 24))
		free, err := h.FreeSpace(smem.HostAny)
		require.NoError(t, err)
		require.Less(t, free, prev)
		prev = free
	}
}

func TestPartitionedOutOfSpace(t *testing.T) {
	h := newPartHeap(t, globalOnlyImage())
	require.ErrorIs(t, h.Alloc(smem.HostAny, 10, globalPartLen), smem.ErrOutOfSpace)
}

func TestPrivatePartitionRouting(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
		{Offset: 0x5000, Size: 2048, Host0: smem.HostApps, Host1: 3},
	})
	h := newPartHeap(t, img)

	globalFree, err := h.FreeSpace(smem.HostAny)
	require.NoError(t, err)

	require.NoError(t, h.Alloc(3, 20, 100))

	// The private allocation must not touch the global partition.
	free, err := h.FreeSpace(smem.HostAny)
	require.NoError(t, err)
	require.Equal(t, globalFree, free)

	free, err = h.FreeSpace(3)
	require.NoError(t, err)
	require.Equal(t, 2048-format.PartHeaderSize-(format.EntrySize+104), free)

	data, err := h.Get(3, 20)
	require.NoError(t, err)
	require.Len(t, data, 100)

	// A host without a private partition falls back to the global one.
	_, err = h.Get(5, 20)
	require.ErrorIs(t, err, smem.ErrNotFound)
}

func TestLocalHostOption(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
		{Offset: 0x5000, Size: 2048, Host0: 3, Host1: 7},
	})

	// As host 3, the pair (3,7) is a private partition for remote 7.
	h, err := smem.New([]smem.Region{{Data: img}}, smem.Options{LocalHost: 3})
	require.NoError(t, err)
	require.Len(t, h.Partitions(), 2)

	// As the default apps host, the pair is someone else's and is skipped.
	h, err = smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.NoError(t, err)
	require.Len(t, h.Partitions(), 1)
}

func TestItemCountOverride(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 300, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
	})
	h := newPartHeap(t, img)
	require.Equal(t, 300, h.ItemCount())
	require.ErrorIs(t, h.Alloc(smem.HostAny, 300, 16), smem.ErrInvalidItem)
	require.NoError(t, h.Alloc(smem.HostAny, 299, 16))
}

func TestBadDirectoryMagicIsCorrupt(t *testing.T) {
	img := globalOnlyImage()
	// A partitioned header with a broken directory must fail hard, never
	// fall back to the legacy scheme.
	copy(img[partImageSize-format.PTableSize:], []byte("$NOT"))
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

func TestDuplicateHostPairIsCorrupt(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
		{Offset: 0x5000, Size: 1024, Host0: smem.HostApps, Host1: 4},
		{Offset: 0x6000, Size: 1024, Host0: smem.HostApps, Host1: 4},
	})
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

func TestRemoteHostOutOfRangeIsCorrupt(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
		{Offset: 0x5000, Size: 1024, Host0: smem.HostApps, Host1: 25},
	})
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

func TestMissingGlobalPartitionIsCorrupt(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: 0x5000, Size: 1024, Host0: smem.HostApps, Host1: 4},
	})
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

func TestDirectoryHoleIsSkipped(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Hole: true},
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal},
	})
	h := newPartHeap(t, img)
	require.Len(t, h.Partitions(), 1)
}

func TestPartitionHeaderMismatchIsCorrupt(t *testing.T) {
	img := testutil.PartitionedImage(partImageSize, 0, []testutil.PartitionSpec{
		{Offset: globalPartOff, Size: globalPartLen, Host0: smem.HostGlobal, Host1: smem.HostGlobal, SkipHeader: true},
	})
	_, err := smem.New([]smem.Region{{Data: img}}, smem.Options{})
	require.ErrorIs(t, err, smem.ErrCorrupt)
}

func TestBadCanaryIsCorrupt(t *testing.T) {
	img := globalOnlyImage()
	h := newPartHeap(t, img)
	require.NoError(t, h.Alloc(smem.HostAny, 10, 32))

	// First entry header sits directly after the partition header.
	img[globalPartOff+format.PartHeaderSize] ^= 0xFF

	_, err := h.Get(smem.HostAny, 10)
	require.ErrorIs(t, err, smem.ErrCorrupt)
	// The corruption also blocks further allocation in this partition.
	require.ErrorIs(t, h.Alloc(smem.HostAny, 11, 32), smem.ErrCorrupt)
}

func TestCachedEntryLookup(t *testing.T) {
	img := globalOnlyImage()

	// Model a remote processor having placed a cached entry: payload grows
	// down from the partition end, header trails the payload.
	const payload = 16
	entryOff := globalPartOff + globalPartLen - format.EntrySize
	e, err := format.EntryAt(img, entryOff)
	require.NoError(t, err)
	format.WriteEntry(e, 30, payload)
	start := entryOff - payload
	copy(img[start:], []byte("cached-item-data"))
	format.PutU32(img, globalPartOff+format.PartFreeCachedOff,
		uint32(globalPartLen-format.EntrySize-payload))

	h := newPartHeap(t, img)
	data, err := h.Get(smem.HostAny, 30)
	require.NoError(t, err)
	require.Equal(t, []byte("cached-item-data"), data)

	// Uncached allocations still work alongside cached entries.
	require.NoError(t, h.Alloc(smem.HostAny, 31, 8))
}

func TestVirtToPhysPartitioned(t *testing.T) {
	h := newPartHeap(t, globalOnlyImage())
	require.NoError(t, h.Alloc(smem.HostAny, 12, 40))
	data, err := h.Get(smem.HostAny, 12)
	require.NoError(t, err)

	phys, ok := h.VirtToPhys(data)
	require.True(t, ok)
	require.Equal(t, uint64(legacyBase+globalPartOff+format.PartHeaderSize+format.EntrySize), phys)

	_, ok = h.VirtToPhys(make([]byte, 8))
	require.False(t, ok)
}

func TestItemsEnumeration(t *testing.T) {
	h := newPartHeap(t, globalOnlyImage())
	require.NoError(t, h.Alloc(smem.HostAny, 10, 50))
	require.NoError(t, h.Alloc(smem.HostAny, 11, 8))

	items, err := h.Items()
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, uint16(10), items[0].Item)
	require.Equal(t, 50, items[0].Size)
	require.Equal(t, uint16(11), items[1].Item)

	hLegacy, _ := newLegacyHeap(t, 16384, 4096)
	require.NoError(t, hLegacy.Alloc(smem.HostAny, 20, 100))
	items, err = hLegacy.Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint16(20), items[0].Item)
	require.Equal(t, 104, items[0].Size) // legacy reports the aligned size
}

func TestSocInfo(t *testing.T) {
	h, _ := newLegacyHeap(t, 16384, 4096)
	require.NoError(t, h.Alloc(smem.HostAny, smem.SocInfoItem, 128))
	data, err := h.Get(smem.HostAny, smem.SocInfoItem)
	require.NoError(t, err)

	format.PutU32(data, 0, 16)         // record format
	format.PutU32(data, 4, 425)        // soc id
	format.PutU32(data, 8, 0x0001_0002)
	copy(data[12:], "TEST.BUILD\x00")
	format.PutU32(data, 96, 0xDEADBEEF)

	info, err := h.ReadSocInfo()
	require.NoError(t, err)
	require.Equal(t, uint32(425), info.ID)
	require.Equal(t, "TEST.BUILD", info.BuildID)
	require.Equal(t, "1.2", info.VersionString())
	require.Equal(t, uint32(0xDEADBEEF), info.Serial)

	h2, _ := newLegacyHeap(t, 16384, 4096)
	_, err = h2.ReadSocInfo()
	require.ErrorIs(t, err, smem.ErrNotFound)
}
