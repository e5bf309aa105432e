package format

import (
	"math"
	"testing"
)

func TestAlign16(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 15: 16, 16: 16, 17: 32, 4095: 4096}
	for in, want := range cases {
		if got := Align16(in); got != want {
			t.Fatalf("Align16(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAlignPage(t *testing.T) {
	cases := map[int]int{1: 4096, 4096: 4096, 4097: 8192}
	for in, want := range cases {
		if got := AlignPage(in); got != want {
			t.Fatalf("AlignPage(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPaddedSize(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{1, 32},
		{4, 32},
		{24, 32},
		{25, 48},
		{32, 48},
		{80, 96},
		{200, 208},
		{300, 320},
		{4096, 4112},
	}
	for _, tc := range cases {
		got, ok := PaddedSize(tc.in)
		if !ok || got != tc.want {
			t.Fatalf("PaddedSize(%d) = %d,%v want %d", tc.in, got, ok, tc.want)
		}
	}
}

func TestPaddedSizeOverflow(t *testing.T) {
	for _, n := range []int{-1, math.MaxInt, math.MaxInt - 7, math.MaxInt - 20} {
		if _, ok := PaddedSize(n); ok {
			t.Fatalf("PaddedSize(%d) should fail", n)
		}
	}
}
