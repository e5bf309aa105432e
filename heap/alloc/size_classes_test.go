package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeClass_Boundaries(t *testing.T) {
	table := newSizeClassTable(DefaultConfig)

	tests := []struct {
		size int
		want int
	}{
		{32, 0},
		{48, 1},
		{64, 1},
		{80, 2},
		{128, 2},
		{208, 3},
		{1904, 6},
		{2048, 6},
		{4048, 7},
		{4096, 7},
		{8192, 8},
		{8208, 9},
		{1 << 30, 9},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.getSizeClass(tt.size), "getSizeClass(%d)", tt.size)
	}
}

func TestSizeClass_SingleList(t *testing.T) {
	table := newSizeClassTable(Config{Name: "one", NumFreeLists: 1})

	assert.Equal(t, 0, table.getSizeClass(32))
	assert.Equal(t, 0, table.getSizeClass(1<<20))
	assert.Equal(t, 1, table.NumClasses())
}

func TestSizeClass_Monotonic(t *testing.T) {
	table := newSizeClassTable(DefaultConfig)

	prev := 0
	for size := 32; size <= 1<<16; size += 16 {
		sc := table.getSizeClass(size)
		assert.GreaterOrEqual(t, sc, prev, "class must not decrease at size %d", size)
		if sc < table.NumClasses()-1 {
			assert.LessOrEqual(t, size, 32<<sc)
		}
		prev = sc
	}
}

func TestQuickClass(t *testing.T) {
	table := newSizeClassTable(DefaultConfig)

	for i := range DefaultConfig.NumQuickLists {
		size := table.quickSize(i)
		qi, ok := table.quickClass(size)
		assert.True(t, ok, "size %d", size)
		assert.Equal(t, i, qi)
	}

	for _, size := range []int{0, 16, 40, 192, 4096} {
		_, ok := table.quickClass(size)
		assert.False(t, ok, "size %d must not map to a quick list", size)
	}

	disabled := newSizeClassTable(ConfigNoQuickLists)
	_, ok := disabled.quickClass(32)
	assert.False(t, ok)
}

func TestSizeClass_String(t *testing.T) {
	assert.Equal(t, "Default", newSizeClassTable(DefaultConfig).String())
}
