package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPartitionsCmd())
}

func newPartitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partitions <image>",
		Short: "List the partitions visible to the local host",
		Long: `The partitions command lists the partitions of a partitioned heap:
the global partition and every private partition whose host pair includes
the local host.

Example:
  smemctl partitions smem.bin
  smemctl partitions smem.bin --local-host 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartitions(args)
		},
	}
	return cmd
}

func runPartitions(args []string) error {
	h, err := openHeap(args[0])
	if err != nil {
		return err
	}
	defer h.Close()

	parts := h.Partitions()
	if parts == nil {
		printInfo("Legacy flat heap: no partitions\n")
		return nil
	}

	if jsonOut {
		type partJSON struct {
			Host0 string `json:"host0"`
			Host1 string `json:"host1"`
			Size  int    `json:"size"`
		}
		out := make([]partJSON, 0, len(parts))
		for _, p := range parts {
			out = append(out, partJSON{
				Host0: hostName(p.Host0()),
				Host1: hostName(p.Host1()),
				Size:  p.Size(),
			})
		}
		return printJSON(out)
	}

	printInfo("\n%-10s %-10s %10s\n", "HOST0", "HOST1", "SIZE")
	for _, p := range parts {
		printInfo("%-10s %-10s %10d\n", hostName(p.Host0()), hostName(p.Host1()), p.Size())
	}
	return nil
}
