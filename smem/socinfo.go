package smem

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/smemkit/internal/format"
)

// SocInfoItem is the well-known item carrying the SoC identification
// record, written by boot firmware on every supported platform.
const SocInfoItem = 137

const (
	socInfoFmtOff     = 0
	socInfoIDOff      = 4
	socInfoVersionOff = 8
	socInfoBuildIDOff = 12
	socInfoBuildIDLen = 32
	socInfoSerialOff  = 96

	socInfoMinSize = socInfoBuildIDOff + socInfoBuildIDLen
)

// SocInfo is the decoded SoC identification record. Fields past the build
// id were added over successive record formats; Serial is zero when the
// record predates it.
type SocInfo struct {
	Format  uint32
	ID      uint32
	Version uint32
	BuildID string
	Serial  uint32
}

// VersionString renders the packed platform version as major.minor.
func (s *SocInfo) VersionString() string {
	return fmt.Sprintf("%d.%d", s.Version>>16, s.Version&0xFFFF)
}

// ReadSocInfo fetches and decodes the SoC identification item. It returns
// ErrNotFound when firmware has not written the record.
func (h *Heap) ReadSocInfo() (*SocInfo, error) {
	data, err := h.Get(HostAny, SocInfoItem)
	if err != nil {
		return nil, err
	}
	if len(data) < socInfoMinSize {
		return nil, corruptf("socinfo", 0, "record too small (%d bytes)", len(data))
	}

	info := &SocInfo{
		Format:  format.ReadU32(data, socInfoFmtOff),
		ID:      format.ReadU32(data, socInfoIDOff),
		Version: format.ReadU32(data, socInfoVersionOff),
	}
	raw := data[socInfoBuildIDOff : socInfoBuildIDOff+socInfoBuildIDLen]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	info.BuildID = string(raw)

	if len(data) >= socInfoSerialOff+4 {
		info.Serial = format.ReadU32(data, socInfoSerialOff)
	}
	return info, nil
}
