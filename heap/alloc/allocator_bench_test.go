package alloc

import (
	"math/rand"
	"testing"
)

func benchmarkAllocator(b *testing.B, cfg Config) *Allocator {
	b.Helper()
	return newTestAllocatorWithConfig(b, 1024, cfg)
}

func BenchmarkMallocFree_Small(b *testing.B) {
	a := benchmarkAllocator(b, DefaultConfig)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		p, _, err := a.Malloc(40)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

func BenchmarkMallocFree_SmallNoQuick(b *testing.B) {
	a := benchmarkAllocator(b, ConfigNoQuickLists)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		p, _, err := a.Malloc(40)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

func BenchmarkMixedWorkload(b *testing.B) {
	a := benchmarkAllocator(b, DefaultConfig)
	rng := rand.New(rand.NewSource(1))
	ring := make([]Ptr, 256)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		slot := i % len(ring)
		if ring[slot] != Nil {
			a.Free(ring[slot])
		}
		p, _, err := a.Malloc(1 + rng.Intn(1024))
		if err != nil {
			b.Fatal(err)
		}
		ring[slot] = p
	}
}

func BenchmarkRealloc_Grow(b *testing.B) {
	a := benchmarkAllocator(b, DefaultConfig)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		p, _, err := a.Malloc(16)
		if err != nil {
			b.Fatal(err)
		}
		for n := 32; n <= 1024; n *= 2 {
			if p, _, err = a.Realloc(p, n); err != nil {
				b.Fatal(err)
			}
		}
		a.Free(p)
	}
}
