package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smemkit/smem"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	physBase  uint64
	localHost uint16
)

var rootCmd = &cobra.Command{
	Use:   "smemctl",
	Short: "Inspect and manipulate SMEM shared-memory heap images",
	Long: `smemctl is a tool for inspecting and manipulating Qualcomm-style SMEM
shared-memory heap images. It understands both the legacy flat heap and the
partitioned heap, and validates the firmware-written metadata before use.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		Uint64Var(&physBase, "base", 0, "Physical base address of the primary region")
	rootCmd.PersistentFlags().
		Uint16Var(&localHost, "local-host", uint16(smem.HostApps), "Local host identity for partition routing")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openHeap maps the image at path and attaches to it with the global flags.
func openHeap(path string) (*smem.MappedHeap, error) {
	printVerbose("Opening heap image: %s\n", path)
	h, err := smem.Open(path, physBase, smem.Options{LocalHost: localHost})
	if err != nil {
		return nil, fmt.Errorf("failed to open heap image: %w", err)
	}
	return h, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// hostName renders the well-known host identifiers symbolically.
func hostName(h uint16) string {
	switch h {
	case smem.HostGlobal:
		return "global"
	case smem.HostAny:
		return "any"
	default:
		return fmt.Sprintf("%d", h)
	}
}
