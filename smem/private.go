package smem

import (
	"io"

	"github.com/joshuapare/smemkit/internal/buf"
	"github.com/joshuapare/smemkit/internal/format"
)

// Uncached entries sit just after the partition header, each header followed
// by its padding and payload, and are walked forward up to the uncached free
// offset. Cached entries hang from the end of the partition, each header
// trailing its own payload, and are walked backward down to the cached free
// offset. Both walks stop at the first structural violation; a corrupted
// list is never skipped over.

// uncachedIter walks the uncached entry list of one partition.
type uncachedIter struct {
	p    *Partition
	off  int // offset of the next entry header
	end  int // uncached free boundary, exclusive
	done bool
}

func (p *Partition) uncachedEntries() (*uncachedIter, error) {
	end := int(p.hdr.FreeUncached())
	if end < format.PartHeaderSize || end > p.size {
		return nil, &CorruptError{
			Struct: "partition", Host0: p.host0, Host1: p.host1, Offset: -1,
			Detail: "uncached free boundary out of range",
		}
	}
	return &uncachedIter{p: p, off: format.PartHeaderSize, end: end}, nil
}

// next returns the entry header at the cursor, or io.EOF at the free
// boundary. The cursor lands exactly on the boundary for an intact list;
// overshooting it means an entry size lied.
func (it *uncachedIter) next() (format.Entry, int, error) {
	if it.done || it.off >= it.end {
		it.done = true
		if it.off > it.end {
			return nil, 0, &CorruptError{
				Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: it.off,
				Detail: "uncached entry overruns free boundary",
			}
		}
		return nil, 0, io.EOF
	}

	e, err := format.EntryAt(it.p.data, it.off)
	if err != nil {
		it.done = true
		return nil, 0, &CorruptError{
			Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: it.off,
			Detail: err.Error(),
		}
	}
	if err := e.CheckCanary(); err != nil {
		it.done = true
		return nil, 0, &CorruptError{
			Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: it.off,
			Detail: err.Error(),
		}
	}

	off := it.off
	it.off += format.EntrySize + int(e.PaddingHdr()) + int(e.Size())
	return e, off, nil
}

// cachedIter walks the cached entry list backward from the partition end.
type cachedIter struct {
	p    *Partition
	off  int // offset of the next entry header
	end  int // cached free boundary; headers at or below it are free space
	done bool
}

func (p *Partition) cachedEntries() (*cachedIter, error) {
	end := int(p.hdr.FreeCached())
	uncached := int(p.hdr.FreeUncached())
	if end > p.size || end < uncached {
		return nil, &CorruptError{
			Struct: "partition", Host0: p.host0, Host1: p.host1, Offset: -1,
			Detail: "cached free boundary out of range",
		}
	}
	first := p.size - format.AlignTo(format.EntrySize, p.cacheline)
	if first < format.PartHeaderSize {
		return nil, &CorruptError{
			Struct: "partition", Host0: p.host0, Host1: p.host1, Offset: first,
			Detail: "cacheline alignment exceeds partition",
		}
	}
	return &cachedIter{p: p, off: first, end: end}, nil
}

func (it *cachedIter) next() (format.Entry, int, error) {
	if it.done || it.off <= it.end {
		it.done = true
		return nil, 0, io.EOF
	}

	e, err := format.EntryAt(it.p.data, it.off)
	if err != nil {
		it.done = true
		return nil, 0, &CorruptError{
			Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: it.off,
			Detail: err.Error(),
		}
	}
	if err := e.CheckCanary(); err != nil {
		it.done = true
		return nil, 0, &CorruptError{
			Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: it.off,
			Detail: err.Error(),
		}
	}

	off := it.off
	next := it.off - int(e.Size()) - format.AlignTo(format.EntrySize, it.p.cacheline)
	// The walk must never cross the uncached boundary; a size field large
	// enough to do that is corruption, not an older entry.
	if next < 0 || off-int(e.Size()) < it.end {
		it.done = true
		return nil, 0, &CorruptError{
			Struct: "entry", Host0: it.p.host0, Host1: it.p.host1, Offset: off,
			Detail: "cached entry walks past free boundary",
		}
	}
	it.off = next
	return e, off, nil
}

// alloc reserves size bytes for item in the uncached region. The entry
// header is written before the free offset is published, so lock-free
// remote readers never see a half-written entry.
func (p *Partition) alloc(item uint16, size int) error {
	it, err := p.uncachedEntries()
	if err != nil {
		return err
	}
	cached := int(p.hdr.FreeCached())
	if cached > p.size {
		return &CorruptError{
			Struct: "partition", Host0: p.host0, Host1: p.host1, Offset: -1,
			Detail: "cached free boundary beyond partition",
		}
	}

	for {
		e, _, err := it.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if e.Item() == item {
			return ErrAlreadyExists
		}
	}

	off := it.end
	allocSize := format.EntrySize + format.Align8(size)
	if off+allocSize > cached {
		return ErrOutOfSpace
	}

	e, err := format.EntryAt(p.data, off)
	if err != nil {
		return &CorruptError{
			Struct: "entry", Host0: p.host0, Host1: p.host1, Offset: off,
			Detail: err.Error(),
		}
	}
	format.WriteEntry(e, item, size)
	p.hdr.PublishFreeUncached(uint32(off + allocSize))
	return nil
}

// lookup scans the uncached list, then the cached list, for item and
// returns the payload without its padding.
func (p *Partition) lookup(item uint16) ([]byte, error) {
	it, err := p.uncachedEntries()
	if err != nil {
		return nil, err
	}
	for {
		e, off, err := it.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if e.Item() != item {
			continue
		}
		payloadOff := off + format.EntrySize + int(e.PaddingHdr())
		return p.entryPayload(e, payloadOff)
	}

	cit, err := p.cachedEntries()
	if err != nil {
		return nil, err
	}
	for {
		e, off, err := cit.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if e.Item() != item {
			continue
		}
		return p.entryPayload(e, off-int(e.Size()))
	}

	return nil, ErrNotFound
}

// entryPayload bounds-checks an entry's recorded sizes against the
// partition and returns the logical payload slice.
func (p *Partition) entryPayload(e format.Entry, payloadOff int) ([]byte, error) {
	size := int(e.Size())
	padding := int(e.PaddingData())
	if size > p.size || padding > size {
		return nil, &CorruptError{
			Struct: "entry", Host0: p.host0, Host1: p.host1, Offset: payloadOff,
			Detail: "entry size fields out of range",
		}
	}
	payload, ok := buf.Slice(p.data, payloadOff, size-padding)
	if !ok {
		return nil, &CorruptError{
			Struct: "entry", Host0: p.host0, Host1: p.host1, Offset: payloadOff,
			Detail: "payload exceeds partition",
		}
	}
	return payload, nil
}
