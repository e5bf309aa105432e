package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/pages"
)

var (
	heapPages      int
	heapWeakMagic  bool
	heapNoQuick    bool
	heapFreeLists  int
	heapQuickLists int
	heapQuickMax   int
)

// addHeapFlags registers the allocator configuration flags on cmd.
func addHeapFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&heapPages, "pages", pages.DefaultMaxPages, "Maximum heap size in 4KB pages")
	cmd.Flags().BoolVar(&heapWeakMagic, "weak-magic", false, "Store block headers without obfuscation")
	cmd.Flags().BoolVar(&heapNoQuick, "no-quick-lists", false, "Disable quick lists")
	cmd.Flags().IntVar(&heapFreeLists, "free-lists", alloc.DefaultConfig.NumFreeLists, "Number of segregated free lists")
	cmd.Flags().IntVar(&heapQuickLists, "quick-lists", alloc.DefaultConfig.NumQuickLists, "Number of quick lists")
	cmd.Flags().IntVar(&heapQuickMax, "quick-max", alloc.DefaultConfig.QuickListMax, "Capacity of each quick list")
}

// resetHeapFlags restores flag defaults (tests share package globals).
func resetHeapFlags() {
	heapPages = pages.DefaultMaxPages
	heapWeakMagic = false
	heapNoQuick = false
	heapFreeLists = alloc.DefaultConfig.NumFreeLists
	heapQuickLists = alloc.DefaultConfig.NumQuickLists
	heapQuickMax = alloc.DefaultConfig.QuickListMax
}

// heapConfig builds the allocator configuration from flags.
func heapConfig() alloc.Config {
	cfg := alloc.DefaultConfig
	cfg.Name = "heapctl"
	cfg.NumFreeLists = heapFreeLists
	cfg.NumQuickLists = heapQuickLists
	cfg.QuickListMax = heapQuickMax
	if heapNoQuick {
		cfg.NumQuickLists = 0
		cfg.QuickListMax = 0
	}
	if heapWeakMagic {
		cfg.Magic = 0
	}
	return cfg
}

// session is an allocator plus the region backing it.
type session struct {
	region *pages.Region
	alloc  *alloc.Allocator
	ops    []trace.Op
}

func (s *session) Close() error {
	return s.region.Close()
}

// openSession parses the trace at path and builds a fresh allocator for it.
func openSession(path string) (*session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return nil, err
	}
	printVerbose("Parsed %d requests from %s\n", len(ops), path)

	region, err := pages.New(heapPages)
	if err != nil {
		return nil, err
	}

	cfg := heapConfig()
	a, err := alloc.New(region, &cfg)
	if err != nil {
		region.Close()
		return nil, err
	}
	return &session{region: region, alloc: a, ops: ops}, nil
}
