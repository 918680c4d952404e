package seis

import (
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
)

// testStream builds the canonical six-trace stream: Z, N, E components of one
// station recorded twice with different onsets.
func testStream() Stream {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var st Stream
	for rec := 0; rec < 2; rec++ {
		onset := base.Add(time.Duration(rec) * time.Hour)
		for _, comp := range []string{"Z", "N", "E"} {
			st = append(st, &Trace{
				Stats: Stats{
					Network: "NET", Station: "STA", Location: "LOC",
					Channel:      "BH" + comp,
					StartTime:    onset.Add(-30 * time.Second),
					SamplingRate: 10,
					Onset:        onset,
				},
				Data: make([]float64, 100),
			})
		}
	}
	return st
}

func TestGroupComponentsByOnset(t *testing.T) {
	g, err := GroupComponents(testStream(), "onset")
	if err != nil {
		t.Fatalf("GroupComponents: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("groups = %d, want 2", g.Len())
	}
	for sub := range g.All() {
		if len(sub) != 3 {
			t.Errorf("group size = %d, want 3", len(sub))
		}
	}
}

func TestGroupComponentsSizeFilter(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		want  int
	}{
		{"NoFilter", nil, 2},
		{"ExactThree", []int{3}, 2},
		{"ExactTwo", []int{2}, 0},
		{"SizeSet", []int{2, 3}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := GroupComponents(testStream(), "onset", tt.sizes...)
			if err != nil {
				t.Fatalf("GroupComponents: %v", err)
			}
			if g.Len() != tt.want {
				t.Errorf("groups = %d, want %d", g.Len(), tt.want)
			}
			for sub := range g.All() {
				if len(tt.sizes) > 0 {
					found := false
					for _, s := range tt.sizes {
						if len(sub) == s {
							found = true
						}
					}
					if !found {
						t.Errorf("group of size %d passed filter %v", len(sub), tt.sizes)
					}
				}
			}
		})
	}
}

func TestGroupComponentsNoKey(t *testing.T) {
	// Without a secondary key both recordings land in a single group.
	g, err := GroupComponents(testStream(), "")
	if err != nil {
		t.Fatalf("GroupComponents: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("groups = %d, want 1", g.Len())
	}
	for sub := range g.All() {
		if len(sub) != 6 {
			t.Errorf("group size = %d, want 6", len(sub))
		}
	}
}

func TestGroupComponentsRestartable(t *testing.T) {
	g, err := GroupComponents(testStream(), "onset")
	if err != nil {
		t.Fatalf("GroupComponents: %v", err)
	}

	collect := func() [][]string {
		var out [][]string
		for sub := range g.All() {
			out = append(out, sub.IDs())
		}
		return out
	}

	first, second := collect(), collect()
	if len(first) != len(second) {
		t.Fatalf("iteration lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("group %d sizes differ", i)
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Errorf("group %d trace %d: %s vs %s", i, j, first[i][j], second[i][j])
			}
		}
	}
}

func TestGroupComponentsSortedKeys(t *testing.T) {
	g, err := GroupComponents(testStream(), "onset")
	if err != nil {
		t.Fatalf("GroupComponents: %v", err)
	}
	keys := g.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys not in ascending order: %q >= %q", keys[i-1], keys[i])
		}
	}
}

func TestGroupComponentsSecondaryKeySplits(t *testing.T) {
	st := testStream()
	// Identical stripped IDs, differing onsets: must land in different groups.
	g, err := GroupComponents(st[:1], "onset")
	if err != nil {
		t.Fatal(err)
	}
	g2, err := GroupComponents(Stream{st[0], st[3]}, "onset")
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 1 || g2.Len() != 2 {
		t.Errorf("expected onset to split groups: got %d and %d", g.Len(), g2.Len())
	}
}

func TestGroupComponentsMissingKey(t *testing.T) {
	_, err := GroupComponents(testStream(), "no_such_attribute")
	if err == nil {
		t.Fatal("expected error for missing key attribute")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestGroupComponentsEarlyBreak(t *testing.T) {
	g, err := GroupComponents(testStream(), "onset")
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range g.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("early break consumed %d groups", n)
	}
	// Iterator stays restartable after an early break.
	n = 0
	for range g.All() {
		n++
	}
	if n != 2 {
		t.Errorf("restart yielded %d groups, want 2", n)
	}
}
