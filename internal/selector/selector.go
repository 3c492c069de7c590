package selector

import (
	"errors"
	"math/rand/v2"
	"sort"

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
)

// ErrNoCandidates is returned when a selection is attempted over an empty
// candidate set.
var ErrNoCandidates = errors.New("selector: no candidates")

// Eligible returns the candidates whose play count is strictly below the
// maximum count in the set. When every candidate is tied (including a
// single-candidate set), all candidates are eligible: the pool effectively
// resets instead of starving. The result is sorted for determinism.
func Eligible(counts map[string]uint64) []string {
	if len(counts) == 0 {
		return nil
	}

	var maxCount uint64
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}

	eligible := make([]string, 0, len(counts))
	for candidate, count := range counts {
		if count < maxCount {
			eligible = append(eligible, candidate)
		}
	}

	// All tied: fall back to the full set so selection always progresses.
	if len(eligible) == 0 {
		for candidate := range counts {
			eligible = append(eligible, candidate)
		}
	}

	sort.Strings(eligible)
	return eligible
}

// Pick selects one candidate from the least-played subset of counts,
// uniformly at random. The tier label is used for logging and metrics only.
func Pick(tier string, counts map[string]uint64) (string, error) {
	eligible := Eligible(counts)
	if len(eligible) == 0 {
		metrics.SelectionsTotal.WithLabelValues(tier, "empty").Inc()
		return "", ErrNoCandidates
	}

	metrics.SelectionEligible.WithLabelValues(tier).Observe(float64(len(eligible)))

	chosen := eligible[rand.IntN(len(eligible))]
	logging.Debug("selector: %s tier picked %q from %d eligible of %d candidates",
		tier, chosen, len(eligible), len(counts))
	metrics.SelectionsTotal.WithLabelValues(tier, "success").Inc()
	return chosen, nil
}

// PickFrom draws uniformly from an explicit candidate slice. The picture
// tier uses this for the in-session remaining set, where fairness has
// already been applied.
func PickFrom(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return candidates[rand.IntN(len(candidates))], nil
}
