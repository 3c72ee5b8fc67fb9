package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smemkit/smem/verify"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <image>",
		Short: "Validate heap structure invariants",
		Long: `The validate command checks an SMEM heap image for structural
integrity: the global header, the partition directory, every partition
header, and the canary of every allocated entry. It works on raw bytes, so
images too damaged to attach to can still be diagnosed.

Example:
  smemctl validate smem.bin
  smemctl validate smem.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(args []string) error {
	path := args[0]

	printVerbose("Validating heap image: %s\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	verr := verify.AllInvariants(data)

	result := map[string]interface{}{
		"file":  path,
		"valid": verr == nil,
	}
	if verr != nil {
		result["error"] = verr.Error()
	}

	if jsonOut {
		return printJSON(result)
	}

	printInfo("\nValidating %s...\n\n", path)

	if verr != nil {
		printInfo("  ✗ %v\n", verr)
		printInfo("\nResult: ✗ INVALID\n")
		return verr
	}

	printInfo("  ✓ Global header valid\n")
	printInfo("  ✓ Directory and partitions valid\n")
	printInfo("  ✓ All entry canaries intact\n")
	printInfo("\nResult: ✓ VALID\n")

	return nil
}
