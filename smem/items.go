package smem

import "io"

// ItemInfo describes one allocated item for enumeration.
type ItemInfo struct {
	Item   uint16 `json:"item"`
	Size   int    `json:"size"`
	Host0  uint16 `json:"host0"`
	Host1  uint16 `json:"host1"`
	Cached bool   `json:"cached,omitempty"`
}

// Items enumerates every allocated item visible to the local host, in
// partition order for partitioned heaps and table order for legacy heaps.
// Legacy items report the HostAny pair since the flat heap has no host
// routing.
func (h *Heap) Items() ([]ItemInfo, error) {
	if h.parts == nil {
		return h.flat.items(h.itemCount)
	}
	var out []ItemInfo
	for _, p := range h.Partitions() {
		items, err := p.items()
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (f *flatHeap) items(itemCount int) ([]ItemInfo, error) {
	var out []ItemInfo
	for i := 0; i < itemCount; i++ {
		e := f.hdr.Entry(i)
		if !e.Allocated() {
			continue
		}
		out = append(out, ItemInfo{
			Item:  uint16(i),
			Size:  int(e.Size()),
			Host0: HostAny,
			Host1: HostAny,
		})
	}
	return out, nil
}

func (p *Partition) items() ([]ItemInfo, error) {
	var out []ItemInfo

	it, err := p.uncachedEntries()
	if err != nil {
		return nil, err
	}
	for {
		e, _, err := it.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ItemInfo{
			Item:  e.Item(),
			Size:  int(e.Size()) - int(e.PaddingData()),
			Host0: p.host0,
			Host1: p.host1,
		})
	}

	cit, err := p.cachedEntries()
	if err != nil {
		return nil, err
	}
	for {
		e, _, err := cit.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ItemInfo{
			Item:   e.Item(),
			Size:   int(e.Size()) - int(e.PaddingData()),
			Host0:  p.host0,
			Host1:  p.host1,
			Cached: true,
		})
	}
	return out, nil
}
