package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/smemkit/smem"
)

var freeHost uint16

func init() {
	cmd := newFreeSpaceCmd()
	cmd.Flags().Uint16Var(&freeHost, "host", uint16(smem.HostAny), "Remote host whose partition to query")
	rootCmd.AddCommand(cmd)
}

func newFreeSpaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freespace <image>",
		Short: "Report the remaining allocatable bytes",
		Long: `The freespace command reports the bytes still allocatable in the
space shared with the given host: the routed partition's free gap on a
partitioned heap, the global available count on a legacy heap.

Example:
  smemctl freespace smem.bin
  smemctl freespace smem.bin --host 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFreeSpace(args)
		},
	}
	return cmd
}

func runFreeSpace(args []string) error {
	h, err := openHeap(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	free, err := h.FreeSpace(freeHost)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"host": hostName(freeHost),
			"free": free,
		})
	}

	printInfo("%d bytes free (host %s)\n", free, hostName(freeHost))
	return nil
}
