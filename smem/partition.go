package smem

import (
	"github.com/joshuapare/smemkit/internal/buf"
	"github.com/joshuapare/smemkit/internal/format"
)

// Partition is one two-party sub-range of the primary region, reserved for
// exchange between the two hosts named in its directory entry. Its free
// space is the gap between the uncached offset (growing up from the header)
// and the cached offset (growing down from the end).
type Partition struct {
	data      []byte // zero-copy view over the primary region, len == size
	hdr       *format.PartHeader
	physBase  uint64
	size      int
	cacheline int
	host0     uint16
	host1     uint16
}

// Host0 returns the first host of the partition's pair.
func (p *Partition) Host0() uint16 { return p.host0 }

// Host1 returns the second host of the partition's pair.
func (p *Partition) Host1() uint16 { return p.host1 }

// Size returns the partition size in bytes.
func (p *Partition) Size() int { return p.size }

// openPartition validates the partition referenced by a directory entry
// against the expected host pair and returns the live view. Any mismatch
// between directory and partition header means the processors disagree
// about the heap's shape, which is unrecoverable for this partition.
func openPartition(region0 *Region, entry format.PTableEntry, host0, host1 uint16) (*Partition, error) {
	off := int(entry.Offset())
	size := int(entry.Size())

	data, ok := buf.Slice(region0.Data, off, size)
	if !ok {
		return nil, &CorruptError{
			Struct: "partition", Host0: host0, Host1: host1, Offset: off,
			Detail: "directory entry exceeds primary region",
		}
	}

	hdr, err := format.ParsePartHeader(data)
	if err != nil {
		return nil, &CorruptError{
			Struct: "partition", Host0: host0, Host1: host1, Offset: off,
			Detail: err.Error(),
		}
	}

	if hdr.Host0() != host0 || hdr.Host1() != host1 {
		return nil, &CorruptError{
			Struct: "partition", Host0: host0, Host1: host1, Offset: off,
			Detail: "header host pair does not match directory entry",
		}
	}
	if int(hdr.Size()) != size {
		return nil, &CorruptError{
			Struct: "partition", Host0: host0, Host1: host1, Offset: off,
			Detail: "header size does not match directory entry",
		}
	}
	if int(hdr.FreeUncached()) > size {
		return nil, &CorruptError{
			Struct: "partition", Host0: host0, Host1: host1, Offset: off,
			Detail: "free uncached offset beyond partition",
		}
	}

	return &Partition{
		data:      data,
		hdr:       hdr,
		physBase:  region0.AuxBase + uint64(off),
		size:      size,
		cacheline: int(entry.Cacheline()),
		host0:     host0,
		host1:     host1,
	}, nil
}

// freeSpace returns the size of the gap between the two growth directions.
// A value exceeding the partition size means the offsets have crossed or
// escaped the partition; both are corruption, not free space.
func (p *Partition) freeSpace() (int, error) {
	uncached := int(p.hdr.FreeUncached())
	cached := int(p.hdr.FreeCached())
	free := cached - uncached
	if free < 0 || free > p.size {
		return 0, &CorruptError{
			Struct: "partition", Host0: p.host0, Host1: p.host1, Offset: -1,
			Detail: "free offsets out of range",
		}
	}
	return free, nil
}
