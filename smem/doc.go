// Package smem manages the Qualcomm-style shared-memory (SMEM) heap: an
// allocate-only structure that the application processor and the auxiliary
// processors in a SoC use to exchange fixed-purpose items without copying
// through a message channel.
//
// The heap is self-describing. A global header at the start of the primary
// region carries a version array and a legacy 512-slot table of contents;
// newer firmware additionally writes a partition directory 4 KiB before the
// end of the region, carving out two-party partitions that grow from both
// ends toward a shared free gap. Nothing about the allocator's bookkeeping
// is persisted separately — all free-space state is reconstructed from the
// on-memory metadata, which is written by firmware this package does not
// control and therefore never trusted: every magic, canary, count, and
// offset is validated before use.
//
// # Usage
//
// A Heap is an explicit value, constructed once per backing region set:
//
//	h, err := smem.New([]smem.Region{{AuxBase: base, Data: mapped}}, smem.Options{})
//	if err != nil { ... }
//	if err := h.Alloc(smem.HostAny, 84, 256); err != nil { ... }
//	data, err := h.Get(smem.HostAny, 84)
//
// Items, once allocated, live for the remaining lifetime of the region;
// there is no free, resize, or garbage collection.
//
// # Concurrency
//
// Allocation from this process must be single-writer: the hardware protocol
// synchronizes allocating processors with a remote spinlock that this
// package does not take. What this package does guarantee is publication
// order — every metadata publish (an allocated flag, a free-offset advance)
// is a release store issued after the entry bytes, so remote processors
// walking the heap lock-free never observe a header without its payload.
package smem
