package smem

import (
	"fmt"

	"github.com/joshuapare/smemkit/internal/mmfile"
)

// MappedHeap couples a heap with the mapping backing it. Close releases the
// mapping; the heap and every slice obtained from it are invalid afterwards.
type MappedHeap struct {
	*Heap
	cleanup func() error
}

// Close unmaps the backing file.
func (m *MappedHeap) Close() error {
	if m.cleanup == nil {
		return nil
	}
	err := m.cleanup()
	m.cleanup = nil
	return err
}

// Open maps the heap image at path read-write and attaches to it. base is
// recorded as the primary region's physical base for address translation;
// pass zero when translation is not needed.
func Open(path string, base uint64, opts Options) (*MappedHeap, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("smem: map %s: %w", path, err)
	}
	h, err := New([]Region{{AuxBase: base, Data: data}}, opts)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &MappedHeap{Heap: h, cleanup: cleanup}, nil
}
