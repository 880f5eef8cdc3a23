package utils

import "testing"

func TestQuantityOr(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"4", 4},
		{" 12 ", 12},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"", 1},
	}
	for _, c := range cases {
		if got := QuantityOr(c.in, 1); got != c.want {
			t.Errorf("QuantityOr(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPriceOr(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"120.5", 120.5},
		{" 7 ", 7},
		{"-1", 0},
		{"n/a", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := PriceOr(c.in, 0); got != c.want {
			t.Errorf("PriceOr(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFilter(t *testing.T) {
	evens := Filter([]int{1, 2, 3, 4, 5}, func(n int) bool { return n%2 == 0 })
	if len(evens) != 2 || evens[0] != 2 || evens[1] != 4 {
		t.Errorf("Filter = %v, want [2 4]", evens)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := NormalizeNewlines("a\r\nb\nc"); got != "a\nb\nc" {
		t.Errorf("NormalizeNewlines = %q", got)
	}
}
