package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smemkit/smem"
)

var allocHost uint16

func init() {
	cmd := newAllocCmd()
	cmd.Flags().Uint16Var(&allocHost, "host", uint16(smem.HostAny), "Remote host to route the allocation to")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <image> <item> <size>",
		Short: "Allocate an item in the heap image",
		Long: `The alloc command reserves space for an item, mutating the image in
place the way the live allocator would. Allocations are permanent; there is
no way to free an item afterwards.

Example:
  smemctl alloc smem.bin 100 256
  smemctl alloc smem.bin 100 256 --host 3`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	return cmd
}

func runAlloc(args []string) error {
	item, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid item number %q: %w", args[1], err)
	}
	size, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[2], err)
	}

	h, err := openHeap(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.Alloc(allocHost, uint16(item), size); err != nil {
		return fmt.Errorf("failed to allocate item %d: %w", item, err)
	}

	free, err := h.FreeSpace(allocHost)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"item": item,
			"size": size,
			"free": free,
		})
	}

	printInfo("Allocated item %d (%d bytes), %d bytes free\n", item, size, free)
	return nil
}
