package smem

import (
	"fmt"

	"github.com/joshuapare/smemkit/internal/format"
)

// Well-known host identities, as recorded in partition directory entries.
const (
	// HostApps is the application processor, the default local identity.
	HostApps uint16 = format.HostApps

	// HostGlobal marks the global partition's host pair.
	HostGlobal uint16 = format.HostGlobal

	// HostAny requests routing without a specific remote host; under the
	// partitioned scheme it resolves to the global partition.
	HostAny uint16 = format.HostAny

	// HostCount is the number of addressable hosts.
	HostCount uint16 = format.HostCount
)

// ItemCount is the default item capacity when the directory carries no
// item-count override.
const ItemCount = format.ItemCount

// Options configures heap construction.
type Options struct {
	// LocalHost is the identity of this processor in partition host pairs.
	// Zero means HostApps.
	LocalHost uint16
}

// Heap is one attached shared-memory heap. It is an explicit value; callers
// construct it from mapped regions and pass it wherever heap access is
// needed. The backing scheme, flat or partitioned, is resolved once at
// construction from the header's protocol version and never re-detected.
type Heap struct {
	regions   []Region
	hdr       *format.Header
	version   uint32
	itemCount int
	localHost uint16

	// Exactly one of the two is set, matching the protocol version.
	flat  *flatHeap
	parts *partitionSet
}

// Ready reports whether firmware has populated the heap header in the
// primary region's bytes. Callers polling for boot progress can probe this
// before paying for a full New.
func Ready(primary []byte) bool {
	hdr, err := format.ParseHeader(primary)
	if err != nil {
		return false
	}
	return hdr.Initialized() == 1 && hdr.Reserved() == 0
}

// New attaches to the heap described by the mapped regions. regions[0] must
// be the primary region carrying the global header.
//
// New returns ErrNotReady when firmware has not finished populating the
// header; that is the only retryable failure. Structural problems, bad
// directory magic, unknown protocol versions, and mismatched partitions all
// return errors matching ErrCorrupt.
func New(regions []Region, opts Options) (*Heap, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("smem: no backing regions")
	}

	hdr, err := format.ParseHeader(regions[0].Data)
	if err != nil {
		return nil, corruptf("header", 0, "%v", err)
	}
	if hdr.Initialized() != 1 || hdr.Reserved() != 0 {
		return nil, ErrNotReady
	}

	h := &Heap{
		regions:   regions,
		hdr:       hdr,
		version:   hdr.ProtocolVersion(),
		localHost: opts.LocalHost,
	}

	switch h.version {
	case format.VersionGlobalPart:
		parts, itemCount, err := openPartitions(&h.regions[0], h.localHost)
		if err != nil {
			return nil, err
		}
		h.parts = parts
		h.itemCount = itemCount
	case format.VersionGlobalHeap:
		flat, err := openFlatHeap(hdr, h.regions)
		if err != nil {
			return nil, err
		}
		h.flat = flat
		h.itemCount = format.ItemCount
	default:
		return nil, corruptf("header", 0, "unsupported protocol version %d", h.version)
	}
	return h, nil
}

// Version returns the heap's protocol version from the boot loader slot.
func (h *Heap) Version() uint32 { return h.version }

// ItemCount returns the heap's item capacity: the directory override when
// present, the fixed table size otherwise.
func (h *Heap) ItemCount() int { return h.itemCount }

// Partitions returns the opened partitions, global first, or nil on a
// legacy heap. The slice is freshly built; the partitions are live views.
func (h *Heap) Partitions() []*Partition {
	if h.parts == nil {
		return nil
	}
	out := []*Partition{h.parts.global}
	for _, p := range h.parts.byHost {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (h *Heap) checkItem(item uint16, allocating bool) error {
	if allocating && item < format.ItemLastFixed {
		return fmt.Errorf("%w: item %d is firmware-reserved", ErrInvalidItem, item)
	}
	if int(item) >= h.itemCount {
		return fmt.Errorf("%w: item %d beyond capacity %d", ErrInvalidItem, item, h.itemCount)
	}
	return nil
}

// Alloc reserves size bytes for item in the space shared with host. The
// allocation is permanent; a second Alloc for the same item fails with
// ErrAlreadyExists regardless of host or size.
//
// Alloc must be externally serialized against other allocators of the same
// heap; see the package documentation.
func (h *Heap) Alloc(host, item uint16, size int) error {
	if err := h.checkItem(item, true); err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("%w: non-positive size %d", ErrInvalidItem, size)
	}
	if h.parts != nil {
		return h.parts.forHost(host).alloc(item, size)
	}
	return h.flat.alloc(item, size)
}

// Get returns the bytes of an allocated item, without trailing padding on
// partitioned heaps. The slice aliases the shared mapping; remote
// processors may mutate its contents at any time.
func (h *Heap) Get(host, item uint16) ([]byte, error) {
	if err := h.checkItem(item, false); err != nil {
		return nil, err
	}
	if h.parts != nil {
		return h.parts.forHost(host).lookup(item)
	}
	return h.flat.lookup(item)
}

// FreeSpace returns the bytes still allocatable in the space shared with
// host. On partitioned heaps this is the gap between the two growth
// directions of the routed partition; on legacy heaps it is the header's
// available count.
func (h *Heap) FreeSpace(host uint16) (int, error) {
	if h.parts != nil {
		return h.parts.forHost(host).freeSpace()
	}
	return h.flat.freeSpace()
}

// VirtToPhys translates a slice previously returned by Get into the
// physical address remote processors use for it. The second return is false
// when p does not point into any backing region.
func (h *Heap) VirtToPhys(p []byte) (uint64, bool) {
	if h.parts != nil {
		for _, part := range h.Partitions() {
			if sliceWithin(part.data, p) {
				return part.physBase + sliceOffset(part.data, p), true
			}
		}
	}
	for i := range h.regions {
		r := &h.regions[i]
		if r.contains(p) {
			return r.AuxBase + sliceOffset(r.Data, p), true
		}
	}
	return 0, false
}
