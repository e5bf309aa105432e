package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// DefaultMagic is the header obfuscation pattern used by DefaultConfig.
const DefaultMagic uint64 = 0x9e3779b97f4a7c15

// maxFreeLists keeps 32<<i inside an int.
const maxFreeLists = 58

// Config defines the allocator's size class layout and header encoding.
// Different configurations can be tested to compare reuse and fragmentation.
type Config struct {
	// Name for this configuration (for reports)
	Name string

	// NumFreeLists is the number of segregated free lists. List i holds
	// sizes up to 32<<i; the last list is unbounded.
	NumFreeLists int

	// NumQuickLists is the number of exact-size quick lists (32, 48, ...).
	// Zero disables quick lists.
	NumQuickLists int

	// QuickListMax is the capacity of each quick list before it is flushed.
	QuickListMax int

	// Magic is XORed into every stored header word. Zero stores headers in
	// the clear, which is handy when reading hex dumps.
	Magic uint64
}

// Predefined configurations.
var (
	// DefaultConfig matches the classic layout: 10 free lists, 10 quick lists of 5.
	DefaultConfig = Config{
		Name:          "Default",
		NumFreeLists:  10,
		NumQuickLists: 10,
		QuickListMax:  5,
		Magic:         DefaultMagic,
	}

	// ConfigWeakMagic is DefaultConfig without header obfuscation.
	ConfigWeakMagic = Config{
		Name:          "WeakMagic",
		NumFreeLists:  10,
		NumQuickLists: 10,
		QuickListMax:  5,
		Magic:         0,
	}

	// ConfigNoQuickLists sends every freed block straight to the free lists.
	ConfigNoQuickLists = Config{
		Name:          "NoQuickLists",
		NumFreeLists:  10,
		NumQuickLists: 0,
		QuickListMax:  0,
		Magic:         DefaultMagic,
	}
)

func (c Config) validate() error {
	if c.NumFreeLists < 1 || c.NumFreeLists > maxFreeLists {
		return fmt.Errorf("%w: NumFreeLists %d outside [1, %d]", ErrBadConfig, c.NumFreeLists, maxFreeLists)
	}
	if c.NumQuickLists < 0 {
		return fmt.Errorf("%w: NumQuickLists %d is negative", ErrBadConfig, c.NumQuickLists)
	}
	if c.NumQuickLists > 0 && c.QuickListMax < 1 {
		return fmt.Errorf("%w: QuickListMax must be positive when quick lists are enabled", ErrBadConfig)
	}
	return nil
}

// sizeClassTable holds the computed size class boundaries.
type sizeClassTable struct {
	config     Config
	boundaries []int // Inclusive upper bound for every class but the last
	numClasses int
}

// newSizeClassTable computes size class boundaries from config.
// Boundaries double from the minimum block size: 32, 64, 128, ...
func newSizeClassTable(config Config) *sizeClassTable {
	table := &sizeClassTable{
		config:     config,
		boundaries: make([]int, 0, config.NumFreeLists),
		numClasses: config.NumFreeLists,
	}
	bound := format.MinBlockSize
	for range config.NumFreeLists - 1 {
		table.boundaries = append(table.boundaries, bound)
		bound *= 2
	}
	return table
}

// getSizeClass returns the free list index for a block size: the smallest i
// with size <= 32<<i, clamped to the last list.
func (t *sizeClassTable) getSizeClass(size int) int {
	// Binary search for the appropriate size class
	lo, hi := 0, len(t.boundaries)-1

	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= t.boundaries[mid] {
			// Check if this is the smallest boundary that fits
			if mid == 0 || size > t.boundaries[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	// Size is larger than all boundaries → last list
	return t.numClasses - 1
}

// quickClass returns the quick list index for an exact block size.
func (t *sizeClassTable) quickClass(size int) (int, bool) {
	if t.config.NumQuickLists == 0 || size < format.MinBlockSize || size%format.Alignment != 0 {
		return 0, false
	}
	idx := (size - format.MinBlockSize) / format.Alignment
	if idx >= t.config.NumQuickLists {
		return 0, false
	}
	return idx, true
}

// quickSize returns the exact block size held by quick list idx.
func (t *sizeClassTable) quickSize(idx int) int {
	return format.MinBlockSize + idx*format.Alignment
}

// String returns a human-readable description of the size class table.
func (t *sizeClassTable) String() string {
	return t.config.Name
}

// NumClasses returns the number of free lists.
func (t *sizeClassTable) NumClasses() int {
	return t.numClasses
}
