package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeader_TooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestHeader_Fields(t *testing.T) {
	buf := make([]byte, HeaderSize)
	PutU32(buf, HeaderInitializedOff, 1)
	PutU32(buf, HeaderFreeOffsetOff, 0x2000)
	PutU32(buf, HeaderAvailableOff, 0x1000)
	PutU32(buf, HeaderVersionOffset+VersionSlotSBL*4, VersionGlobalPart<<16)

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(1), h.Initialized())
	require.Equal(t, uint32(0), h.Reserved())
	require.Equal(t, uint32(0x2000), h.FreeOffset())
	require.Equal(t, uint32(0x1000), h.Available())
	require.Equal(t, uint32(VersionGlobalPart), h.ProtocolVersion())
}

func TestGlobalEntry_PublishOrdering(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h, err := ParseHeader(buf)
	require.NoError(t, err)

	e := h.Entry(8)
	require.False(t, e.Allocated())

	e.SetOffset(0x3000)
	e.SetSize(104)
	e.Publish()

	e2 := h.Entry(8)
	require.True(t, e2.Allocated())
	require.Equal(t, uint32(0x3000), e2.Offset())
	require.Equal(t, uint32(104), e2.Size())
}

func TestGlobalEntry_AuxBaseMasksReservedBits(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h, err := ParseHeader(buf)
	require.NoError(t, err)

	e := h.Entry(10)
	PutU32(e, GlobalEntryAuxBaseOff, 0x86000003)
	require.Equal(t, uint32(0x86000000), e.AuxBase())
}
