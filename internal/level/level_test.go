package level

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n    int
		want Config
	}{
		{1, Config{Number: 1, GridSize: 8, WordCount: 5, TimeLimitSeconds: 180}},
		{2, Config{Number: 2, GridSize: 10, WordCount: 7, TimeLimitSeconds: 240, AllowDiagonal: true}},
		{3, Config{Number: 3, GridSize: 12, WordCount: 9, TimeLimitSeconds: 300, AllowDiagonal: true, AllowReverse: true}},
		{4, Config{Number: 4, GridSize: 14, WordCount: 11, TimeLimitSeconds: 360, AllowDiagonal: true, AllowReverse: true}},
		{5, Config{Number: 5, GridSize: 16, WordCount: 14, TimeLimitSeconds: 480, AllowDiagonal: true, AllowReverse: true}},
		{6, Config{Number: 6, GridSize: 16, WordCount: 15, TimeLimitSeconds: 510, AllowDiagonal: true, AllowReverse: true}},
		{8, Config{Number: 8, GridSize: 18, WordCount: 17, TimeLimitSeconds: 570, AllowDiagonal: true, AllowReverse: true}},
		{100, Config{Number: 100, GridSize: 24, WordCount: 25, TimeLimitSeconds: 3330, AllowDiagonal: true, AllowReverse: true}},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.n)
		if err != nil {
			t.Fatalf("resolve %d: %v", tc.n, err)
		}
		if got != tc.want {
			t.Errorf("level %d: expected %#v got %#v", tc.n, tc.want, got)
		}
	}
}

func TestResolveMonotonic(t *testing.T) {
	t.Parallel()

	prev, _ := Resolve(1)
	for n := 2; n <= 60; n++ {
		cur, err := Resolve(n)
		if err != nil {
			t.Fatal(err)
		}
		if cur.GridSize < prev.GridSize || cur.WordCount < prev.WordCount || cur.TimeLimitSeconds < prev.TimeLimitSeconds {
			t.Fatalf("level %d regresses: %#v after %#v", n, cur, prev)
		}
		prev = cur
	}
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1} {
		if _, err := Resolve(n); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("level %d: expected %v got %v", n, ErrInvalidLevel, err)
		}
	}
}
