package selector

import (
	"errors"
	"testing"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]uint64
		want   []string
	}{
		{
			name:   "empty set",
			counts: map[string]uint64{},
			want:   nil,
		},
		{
			name:   "strictly below max",
			counts: map[string]uint64{"A": 0, "B": 0, "C": 1},
			want:   []string{"A", "B"},
		},
		{
			name:   "all tied falls back to all",
			counts: map[string]uint64{"A": 3, "B": 3, "C": 3},
			want:   []string{"A", "B", "C"},
		},
		{
			name:   "all zero falls back to all",
			counts: map[string]uint64{"A": 0, "B": 0},
			want:   []string{"A", "B"},
		},
		{
			name:   "single candidate",
			counts: map[string]uint64{"only": 7},
			want:   []string{"only"},
		},
		{
			name:   "one behind",
			counts: map[string]uint64{"A": 5, "B": 5, "C": 4},
			want:   []string{"C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Eligible(tt.counts)
			if len(got) != len(tt.want) {
				t.Fatalf("Eligible() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Eligible()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPickEmptySet(t *testing.T) {
	if _, err := Pick("test", nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Pick(nil) error = %v, want ErrNoCandidates", err)
	}
}

func TestPickOnlyReturnsEligible(t *testing.T) {
	counts := map[string]uint64{"A": 0, "B": 0, "C": 1}

	for i := 0; i < 100; i++ {
		chosen, err := Pick("test", counts)
		if err != nil {
			t.Fatalf("Pick() error = %v", err)
		}
		if chosen == "C" {
			t.Fatal("Pick() returned candidate with maximum play count while others were behind")
		}
	}
}

// TestPickFairRotation simulates repeated selection with count updates and
// verifies no candidate is ever picked while another sits at a lower count.
func TestPickFairRotation(t *testing.T) {
	counts := map[string]uint64{"A": 0, "B": 2, "C": 1, "D": 0}

	for i := 0; i < 200; i++ {
		chosen, err := Pick("test", counts)
		if err != nil {
			t.Fatalf("Pick() error = %v", err)
		}

		var minCount uint64 = counts[chosen]
		for _, count := range counts {
			if count < minCount {
				minCount = count
			}
		}
		// The chosen candidate must never exceed the maximum when a
		// strictly lower-count candidate exists.
		var maxCount uint64
		for _, count := range counts {
			if count > maxCount {
				maxCount = count
			}
		}
		if counts[chosen] >= maxCount && minCount < maxCount {
			t.Fatalf("iteration %d: picked %q with count %d while min is %d",
				i, chosen, counts[chosen], minCount)
		}

		counts[chosen]++
	}
}

func TestPickSingleCandidateRepeats(t *testing.T) {
	// A single-item pool may legitimately be re-selected immediately.
	counts := map[string]uint64{"only": 0}
	for i := 0; i < 3; i++ {
		chosen, err := Pick("test", counts)
		if err != nil {
			t.Fatalf("Pick() error = %v", err)
		}
		if chosen != "only" {
			t.Fatalf("Pick() = %q, want %q", chosen, "only")
		}
		counts[chosen]++
	}
}

func TestPickFrom(t *testing.T) {
	if _, err := PickFrom(nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("PickFrom(nil) error = %v, want ErrNoCandidates", err)
	}

	candidates := []string{"x", "y", "z"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		chosen, err := PickFrom(candidates)
		if err != nil {
			t.Fatalf("PickFrom() error = %v", err)
		}
		seen[chosen] = true
	}
	if len(seen) != 3 {
		t.Errorf("PickFrom() over 200 draws hit %d of 3 candidates", len(seen))
	}
}
