package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-3", 0, -3},
		{"7.5", 1, 1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		n, def, max, want int
	}{
		{0, 50, 200, 50},
		{-1, 50, 200, 50},
		{25, 50, 200, 25},
		{999, 50, 200, 200},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.n, tc.def, tc.max); got != tc.want {
			t.Fatalf("ClampLimit(%d, %d, %d) = %d, want %d", tc.n, tc.def, tc.max, got, tc.want)
		}
	}
}
