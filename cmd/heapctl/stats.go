package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

func init() {
	cmd := newStatsCmd()
	addHeapFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <trace>",
		Short: "Show allocator statistics for a trace",
		Long: `The stats command replays a trace and prints allocator counters
(calls, fast/slow paths, splits, coalesces, quick list flushes) and a heap
breakdown with utilization and fragmentation.

Example:
  heapctl stats workload.trace
  heapctl stats workload.trace --no-quick-lists
  heapctl stats workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

type statsResult struct {
	Trace    string          `json:"trace"`
	Config   string          `json:"config"`
	Counters alloc.Stats     `json:"counters"`
	Heap     alloc.HeapStats `json:"heap"`
}

func runStats(args []string) error {
	tracePath := args[0]

	s, err := openSession(tracePath)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := trace.Replay(s.alloc, s.ops, trace.Options{}); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(statsResult{
			Trace:    tracePath,
			Config:   s.alloc.Config().Name,
			Counters: s.alloc.GetStats(),
			Heap:     s.alloc.HeapStats(),
		})
	}

	if !quiet {
		s.alloc.PrintStats(os.Stdout)
	}
	return nil
}
