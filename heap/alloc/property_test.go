package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

type liveBlock struct {
	size int
	fill byte
}

func fillPayload(buf []byte, fill byte) {
	for i := range buf {
		buf[i] = fill
	}
}

func requirePayload(t *testing.T, a *Allocator, p Ptr, lb liveBlock) {
	t.Helper()
	buf := a.Bytes(p)
	require.NotNil(t, buf, "live pointer 0x%X no longer validates", p)
	for i := range lb.size {
		if buf[i] != lb.fill {
			require.Failf(t, "payload corrupted", "ptr 0x%X byte %d = 0x%02X, want 0x%02X", p, i, buf[i], lb.fill)
		}
	}
}

// Test_Property_RandomOps runs a seeded mix of Malloc, Free and Realloc and
// checks payload integrity and every heap invariant after each step.
func Test_Property_RandomOps(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig, ConfigWeakMagic, ConfigNoQuickLists} {
		t.Run(cfg.Name, func(t *testing.T) {
			a := newTestAllocatorWithConfig(t, 64, cfg)
			rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
			live := make(map[Ptr]liveBlock)
			var order []Ptr

			for step := range 2000 {
				op := rng.Intn(10)
				switch {
				case op < 5 || len(order) == 0:
					n := 1 + rng.Intn(600)
					if rng.Intn(20) == 0 {
						n = 2000 + rng.Intn(6000)
					}
					p, buf, err := a.Malloc(n)
					if err != nil {
						require.ErrorIs(t, err, ErrNoMem, "step %d", step)
						continue
					}
					lb := liveBlock{size: n, fill: byte(step)}
					fillPayload(buf, lb.fill)
					live[p] = lb
					order = append(order, p)

				case op < 8:
					i := rng.Intn(len(order))
					p := order[i]
					requirePayload(t, a, p, live[p])
					a.Free(p)
					delete(live, p)
					order[i] = order[len(order)-1]
					order = order[:len(order)-1]

				default:
					i := rng.Intn(len(order))
					p := order[i]
					lb := live[p]
					n := 1 + rng.Intn(1200)
					np, buf, err := a.Realloc(p, n)
					if err != nil {
						require.ErrorIs(t, err, ErrNoMem, "step %d", step)
						requirePayload(t, a, p, lb)
						continue
					}
					keep := min(n, lb.size)
					for j := range keep {
						require.Equal(t, lb.fill, buf[j], "step %d: realloc lost byte %d", step, j)
					}
					lb = liveBlock{size: n, fill: byte(step)}
					fillPayload(buf, lb.fill)
					delete(live, p)
					live[np] = lb
					order[i] = np
				}

				require.NoError(t, a.Check(), "step %d", step)
			}

			for p, lb := range live {
				requirePayload(t, a, p, lb)
			}

			// Payloads never overlap
			type span struct{ lo, hi int }
			var spans []span
			for _, b := range a.Blocks() {
				if b.Allocated && !b.InQuickList {
					spans = append(spans, span{b.Offset, b.Offset + b.Size})
				}
			}
			require.Len(t, spans, len(live))
			for i := 1; i < len(spans); i++ {
				require.LessOrEqual(t, spans[i-1].hi, spans[i].lo)
			}

			for _, p := range order {
				a.Free(p)
			}
			require.NoError(t, a.Check())
			require.Equal(t, a.HeapSize()%format.PageSize, 0)
		})
	}
}

// Test_Property_FreeAllLeavesOneBlock frees in random order without quick
// lists and expects the whole heap to coalesce back into one free block.
func Test_Property_FreeAllLeavesOneBlock(t *testing.T) {
	a := newTestAllocatorWithConfig(t, 32, ConfigNoQuickLists)
	rng := rand.New(rand.NewSource(7))

	var ptrs []Ptr
	for range 300 {
		p, _, err := a.Malloc(1 + rng.Intn(300))
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
	for _, p := range ptrs {
		a.Free(p)
	}

	require.NoError(t, a.Check())
	require.Equal(t, 1, freeBlockCount(a, 0))
	require.Equal(t, 1, freeBlockCount(a, a.HeapSize()-format.HeapOverhead))
}
