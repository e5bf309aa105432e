package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/trace"
)

var (
	runShowHeap bool
	runPayload  bool
	runCheck    bool
)

func init() {
	cmd := newRunCmd()
	addHeapFlags(cmd)
	cmd.Flags().BoolVar(&runShowHeap, "show-heap", false, "Print the heap after the trace")
	cmd.Flags().BoolVar(&runPayload, "payload", false, "Include payload previews in the heap dump")
	cmd.Flags().BoolVar(&runCheck, "check", false, "Check heap invariants after every request")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>",
		Short: "Replay an allocation trace",
		Long: `The run command replays an allocation trace and reports how many
requests succeeded, how many blocks remain live, and how large the heap grew.

Example:
  heapctl run workload.trace
  heapctl run workload.trace --show-heap --pages 16
  heapctl run workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

type runResult struct {
	Trace       string  `json:"trace"`
	Requests    int     `json:"requests"`
	Failures    int     `json:"failures"`
	Live        int     `json:"live"`
	HeapSize    int     `json:"heap_size"`
	Utilization float64 `json:"utilization"`
}

func runRun(args []string) error {
	tracePath := args[0]

	s, err := openSession(tracePath)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := trace.Replay(s.alloc, s.ops, trace.Options{Check: runCheck})
	if err != nil {
		return err
	}

	result := runResult{
		Trace:       tracePath,
		Requests:    res.Ops,
		Failures:    res.Failures,
		Live:        res.Live,
		HeapSize:    s.alloc.HeapSize(),
		Utilization: s.alloc.Utilization(),
	}

	if jsonOut && !runShowHeap {
		return printJSON(result)
	}

	if !jsonOut {
		printInfo("Replayed %s\n", tracePath)
		printInfo("  Requests:    %d\n", result.Requests)
		printInfo("  Failures:    %d\n", result.Failures)
		printInfo("  Live blocks: %d\n", result.Live)
		printInfo("  Heap size:   %d bytes\n", result.HeapSize)
		printInfo("  Utilization: %.2f%%\n", result.Utilization*100)
	}

	if runShowHeap && !quiet {
		opts := printer.DefaultOptions()
		opts.ShowPayload = runPayload
		if jsonOut {
			opts.Format = printer.FormatJSON
		} else {
			printInfo("\n")
		}
		return printer.New(s.alloc, os.Stdout, opts).PrintHeap()
	}
	return nil
}
