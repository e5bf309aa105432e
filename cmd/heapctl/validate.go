package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/trace"
)

func init() {
	cmd := newValidateCmd()
	addHeapFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <trace>",
		Short: "Replay a trace checking heap invariants after every request",
		Long: `The validate command replays a trace and runs the full heap check
(block layout, boundary tags, coalescing, free list and quick list
bookkeeping) after every request. It stops at the first violation.

Example:
  heapctl validate workload.trace
  heapctl validate workload.trace --weak-magic --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
	return cmd
}

func runValidate(args []string) error {
	tracePath := args[0]

	printVerbose("Validating trace: %s\n", tracePath)

	s, err := openSession(tracePath)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := trace.Replay(s.alloc, s.ops, trace.Options{Check: true})

	// Prepare result
	result := map[string]any{
		"trace":    tracePath,
		"requests": res.Ops,
		"valid":    err == nil,
	}
	if err != nil {
		result["error"] = err.Error()
	}

	// Output as JSON if requested
	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	printInfo("\nValidating %s...\n\n", tracePath)
	printInfo("  Requests checked: %d\n", res.Ops)

	if err != nil {
		printError("%v\n", err)
		printInfo("\nResult: ✗ INVALID\n")
		return err
	}

	printInfo("  ✓ Heap invariants held after every request\n")
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
