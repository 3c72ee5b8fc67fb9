package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Attach to a heap image and report basic metadata",
		Long: `The info command attaches to an SMEM heap image and displays the
protocol version, item capacity, partitions, and free space.

Example:
  smemctl info smem.bin
  smemctl info smem.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	path := args[0]

	h, err := openHeap(path)
	if err != nil {
		return err
	}
	defer h.Close()

	items, err := h.Items()
	if err != nil {
		return err
	}

	scheme := "legacy flat heap"
	if h.Version() == 12 {
		scheme = "partitioned heap"
	}

	if jsonOut {
		result := map[string]interface{}{
			"file":       path,
			"version":    h.Version(),
			"scheme":     scheme,
			"item_count": h.ItemCount(),
			"items":      len(items),
			"partitions": len(h.Partitions()),
		}
		if free, err := h.FreeSpace(0xFFFF); err == nil {
			result["free"] = free
		}
		return printJSON(result)
	}

	printInfo("\nHeap Information:\n")
	printInfo("  File: %s\n", path)
	if stat, err := os.Stat(path); err == nil {
		printInfo("  Size: %d bytes\n", stat.Size())
	}
	printInfo("  Protocol version: %d (%s)\n", h.Version(), scheme)
	printInfo("  Item capacity: %d\n", h.ItemCount())
	printInfo("  Allocated items: %d\n", len(items))

	if parts := h.Partitions(); parts != nil {
		printInfo("  Partitions: %d\n", len(parts))
	}
	if free, err := h.FreeSpace(0xFFFF); err == nil {
		printInfo("  Free space: %d bytes\n", free)
	}

	if info, err := h.ReadSocInfo(); err == nil {
		printInfo("\nSoC:\n")
		printInfo("  ID: %d\n", info.ID)
		printInfo("  Platform version: %s\n", info.VersionString())
		printInfo("  Build: %s\n", info.BuildID)
		if info.Serial != 0 {
			printInfo("  Serial: 0x%08X\n", info.Serial)
		}
	}

	return nil
}
