package smem

import (
	"github.com/joshuapare/smemkit/internal/buf"
	"github.com/joshuapare/smemkit/internal/format"
)

// partitionSet holds the partitions visible to the local host under the
// partitioned scheme: the mandatory global partition plus at most one
// private partition per remote host.
type partitionSet struct {
	global *Partition
	byHost [format.HostCount]*Partition
}

// forHost returns the partition serving allocations for host: the private
// partition when the pair exists, the global partition otherwise.
func (s *partitionSet) forHost(host uint16) *Partition {
	if host < format.HostCount {
		if p := s.byHost[host]; p != nil {
			return p
		}
	}
	return s.global
}

// openPartitions locates the partition directory in the trailing window of
// the primary region and opens every partition relevant to localHost. The
// directory is written by the boot loader; a missing or malformed directory
// under the partitioned protocol is corruption, never a legacy fallback.
func openPartitions(region0 *Region, localHost uint16) (*partitionSet, int, error) {
	if len(region0.Data) < format.PTableSize {
		return nil, 0, corruptf("directory", -1,
			"primary region too small for partition directory (%d bytes)", len(region0.Data))
	}
	ptOff := len(region0.Data) - format.PTableSize
	pt, err := format.ParsePTable(region0.Data[ptOff:])
	if err != nil {
		return nil, 0, corruptf("directory", ptOff, "%v", err)
	}

	itemCount := format.ItemCount
	if info := pt.Info(); info != nil && info.NumItems() != 0 {
		itemCount = int(info.NumItems())
	}

	// The declared entry count is firmware-controlled; reject it before
	// walking rather than bounds-checking our way into a huge loop.
	if _, err := buf.CheckListBounds(format.PTableSize, format.PTableEntriesOffset,
		int(pt.NumEntries()), format.PTableEntrySize); err != nil {
		return nil, 0, corruptf("directory", ptOff, "entry table: %v", err)
	}

	set := &partitionSet{}
	for i := 0; i < int(pt.NumEntries()); i++ {
		entry, err := pt.Entry(i)
		if err != nil {
			return nil, 0, corruptf("directory", ptOff, "%v", err)
		}
		if entry.IsHole() {
			continue
		}

		host0, host1 := entry.Host0(), entry.Host1()
		if host0 == format.HostGlobal && host1 == format.HostGlobal {
			if set.global != nil {
				return nil, 0, corruptf("directory", ptOff, "duplicate global partition")
			}
			p, err := openPartition(region0, entry, host0, host1)
			if err != nil {
				return nil, 0, err
			}
			set.global = p
			continue
		}

		var remote uint16
		switch localHost {
		case host0:
			remote = host1
		case host1:
			remote = host0
		default:
			continue
		}
		if remote >= format.HostCount {
			return nil, 0, &CorruptError{
				Struct: "directory", Host0: host0, Host1: host1, Offset: ptOff,
				Detail: "remote host out of range",
			}
		}
		if set.byHost[remote] != nil {
			return nil, 0, &CorruptError{
				Struct: "directory", Host0: host0, Host1: host1, Offset: ptOff,
				Detail: "duplicate partition for host pair",
			}
		}
		p, err := openPartition(region0, entry, host0, host1)
		if err != nil {
			return nil, 0, err
		}
		set.byHost[remote] = p
	}

	if set.global == nil {
		return nil, 0, corruptf("directory", ptOff, "missing global partition")
	}
	return set, itemCount, nil
}
