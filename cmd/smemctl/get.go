package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smemkit/smem"
)

var (
	getHost uint16
	getOut  string
)

func init() {
	cmd := newGetCmd()
	cmd.Flags().Uint16Var(&getHost, "host", uint16(smem.HostAny), "Remote host to route the lookup through")
	cmd.Flags().StringVarP(&getOut, "output", "o", "", "Write raw item bytes to a file instead of hex dumping")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <image> <item>",
		Short: "Dump the bytes of an allocated item",
		Long: `The get command looks up one allocated item and dumps its bytes,
as a hex dump by default or raw to a file with --output.

Example:
  smemctl get smem.bin 137
  smemctl get smem.bin 425 --host 3 -o item.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	item, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return fmt.Errorf("invalid item number %q: %w", args[1], err)
	}

	h, err := openHeap(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	data, err := h.Get(getHost, uint16(item))
	if err != nil {
		return fmt.Errorf("failed to get item %d: %w", item, err)
	}

	if getOut != "" {
		if err := os.WriteFile(getOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		printInfo("Wrote %d bytes to %s\n", len(data), getOut)
		return nil
	}

	if jsonOut {
		result := map[string]interface{}{
			"item": item,
			"size": len(data),
			"data": hex.EncodeToString(data),
		}
		if phys, ok := h.VirtToPhys(data); ok {
			result["phys"] = fmt.Sprintf("0x%X", phys)
		}
		return printJSON(result)
	}

	printInfo("Item %d: %d bytes", item, len(data))
	if phys, ok := h.VirtToPhys(data); ok {
		printInfo(" at 0x%X", phys)
	}
	printInfo("\n\n%s", hex.Dump(data))
	return nil
}
