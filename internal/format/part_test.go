package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildPartition(t *testing.T, host0, host1 uint16, size int) []byte {
	t.Helper()
	buf := make([]byte, size)
	copy(buf[PartMagicOffset:], PartMagic)
	PutU16(buf, PartHost0Offset, host0)
	PutU16(buf, PartHost1Offset, host1)
	PutU32(buf, PartSizeOffset, uint32(size))
	PutU32(buf, PartFreeUncachedOff, PartHeaderSize)
	PutU32(buf, PartFreeCachedOff, uint32(size))
	return buf
}

func TestParsePartHeader_BadMagic(t *testing.T) {
	buf := buildPartition(t, 0, 5, 1024)
	buf[1] = 'X'
	_, err := ParsePartHeader(buf)
	require.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestPartHeader_Fields(t *testing.T) {
	buf := buildPartition(t, HostApps, HostGlobal, 2048)
	p, err := ParsePartHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(HostApps), p.Host0())
	require.Equal(t, uint16(HostGlobal), p.Host1())
	require.Equal(t, uint32(2048), p.Size())
	require.Equal(t, uint32(PartHeaderSize), p.FreeUncached())
	require.Equal(t, uint32(2048), p.FreeCached())
}

func TestPartHeader_PublishFreeUncached(t *testing.T) {
	buf := buildPartition(t, 0, 5, 1024)
	p, err := ParsePartHeader(buf)
	require.NoError(t, err)

	p.PublishFreeUncached(PartHeaderSize + EntrySize + 56)
	require.Equal(t, uint32(PartHeaderSize+EntrySize+56), p.FreeUncached())
}

func TestEntryAt_Bounds(t *testing.T) {
	buf := buildPartition(t, 0, 5, 64)
	_, err := EntryAt(buf, 60)
	require.ErrorIs(t, err, ErrTruncated)
	_, err = EntryAt(buf, -4)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestWriteEntry_RecordsPadding(t *testing.T) {
	buf := buildPartition(t, 0, 5, 1024)
	e, err := EntryAt(buf, PartHeaderSize)
	require.NoError(t, err)

	WriteEntry(e, 42, 50)
	require.NoError(t, e.CheckCanary())
	require.Equal(t, uint16(42), e.Item())
	require.Equal(t, uint32(56), e.Size())
	require.Equal(t, uint16(6), e.PaddingData())
	require.Equal(t, uint16(0), e.PaddingHdr())
}

func TestEntry_CheckCanary(t *testing.T) {
	buf := buildPartition(t, 0, 5, 1024)
	e, err := EntryAt(buf, PartHeaderSize)
	require.NoError(t, err)
	WriteEntry(e, 9, 8)

	buf[PartHeaderSize] ^= 0xFF
	require.ErrorIs(t, e.CheckCanary(), ErrBadCanary)
}

func TestAlign(t *testing.T) {
	require.Equal(t, 8, Align8(1))
	require.Equal(t, 8, Align8(8))
	require.Equal(t, 16, Align8(9))
	require.Equal(t, 64, AlignTo(12, 64))
	require.Equal(t, 12, AlignTo(12, 0))
	require.Equal(t, 128, AlignTo(65, 64))
}
