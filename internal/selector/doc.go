// Package selector implements least-played-first fairness selection.
//
// Candidates whose play count is strictly below the maximum in the set are
// eligible; when all counts are tied the whole set becomes eligible again,
// so selection always progresses and tolerates candidate sets that change
// between runs. The random draw is uniform but not cryptographic —
// selection is not security-sensitive.
package selector
