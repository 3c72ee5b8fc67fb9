package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newItemsCmd())
}

func newItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items <image>",
		Short: "List the allocated items",
		Long: `The items command lists every allocated item visible to the local
host, with its logical size and owning partition.

Example:
  smemctl items smem.bin
  smemctl items smem.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(args)
		},
	}
	return cmd
}

func runItems(args []string) error {
	h, err := openHeap(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	items, err := h.Items()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(items)
	}

	printInfo("\n%-6s %10s %-10s %-10s %s\n", "ITEM", "SIZE", "HOST0", "HOST1", "KIND")
	for _, it := range items {
		kind := "uncached"
		if it.Cached {
			kind = "cached"
		}
		printInfo("%-6d %10d %-10s %-10s %s\n",
			it.Item, it.Size, hostName(it.Host0), hostName(it.Host1), kind)
	}
	printInfo("\n%d item(s)\n", len(items))
	return nil
}
