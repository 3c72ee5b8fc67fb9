package smem

import (
	"github.com/joshuapare/smemkit/internal/buf"
	"github.com/joshuapare/smemkit/internal/format"
)

// flatHeap is the legacy global allocation scheme: one bump allocator over
// the primary region, with every item recorded in the fixed 512-slot table
// of contents inside the global header.
type flatHeap struct {
	hdr     *format.Header
	regions []Region

	// size is the usable extent of the legacy heap, reconstructed at init
	// as free offset plus available bytes. The header does not record it
	// directly.
	size int
}

func openFlatHeap(hdr *format.Header, regions []Region) (*flatHeap, error) {
	free := int(hdr.FreeOffset())
	avail := int(hdr.Available())
	size, ok := buf.AddOverflowSafe(free, avail)
	if !ok || size > len(regions[0].Data) {
		return nil, corruptf("toc", -1,
			"free offset 0x%X + available 0x%X exceeds primary region", free, avail)
	}
	if free < format.HeaderSize {
		return nil, corruptf("toc", -1, "free offset 0x%X inside global header", free)
	}
	return &flatHeap{hdr: hdr, regions: regions, size: size}, nil
}

// alloc reserves size bytes for item from the bump cursor. The slot is
// published with release ordering before the cursor advances, so a remote
// processor that observes the allocated flag also observes offset and size.
func (f *flatHeap) alloc(item uint16, size int) error {
	e := f.hdr.Entry(int(item))
	if e.Allocated() {
		return ErrAlreadyExists
	}

	aligned := format.Align8(size)
	if aligned > int(f.hdr.Available()) {
		return ErrOutOfSpace
	}

	off := f.hdr.FreeOffset()
	e.SetOffset(off)
	e.SetSize(uint32(aligned))
	e.Publish()

	raw := f.hdr.Raw()
	format.PutU32(raw, format.HeaderFreeOffsetOff, off+uint32(aligned))
	format.PutU32(raw, format.HeaderAvailableOff, f.hdr.Available()-uint32(aligned))
	return nil
}

// lookup resolves an allocated slot to its bytes, selecting the backing
// region by the slot's aux base. Aux base zero selects the primary region.
func (f *flatHeap) lookup(item uint16) ([]byte, error) {
	e := f.hdr.Entry(int(item))
	if !e.Allocated() {
		return nil, ErrNotFound
	}

	aux := e.AuxBase()
	off := int(e.Offset())
	size := int(e.Size())

	for i := range f.regions {
		r := &f.regions[i]
		if aux != 0 && aux != uint32(r.AuxBase)&format.AuxBaseMask {
			continue
		}
		data, ok := buf.Slice(r.Data, off, size)
		if !ok {
			return nil, corruptf("toc", off,
				"item %d (%d bytes) exceeds region 0x%X", item, size, r.AuxBase)
		}
		return data, nil
	}
	return nil, ErrNotFound
}

// freeSpace returns the remaining bytes of the bump allocator.
func (f *flatHeap) freeSpace() (int, error) {
	avail := int(f.hdr.Available())
	if avail < 0 || avail > f.size {
		return 0, corruptf("toc", -1, "available 0x%X exceeds heap size 0x%X", avail, f.size)
	}
	return avail, nil
}
