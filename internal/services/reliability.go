package services

import (
	"gonum.org/v1/gonum/stat"

	"github.com/soaringjerry/Rasch/internal/rasch"
)

// KR20 computes the Kuder-Richardson 20 reliability of a dichotomous
// response matrix. It equals Cronbach's alpha on 0/1 data and uses
// population variances throughout. Degenerate inputs (no persons, fewer
// than two items, zero total-score variance) yield 0; the value is clamped
// to [0, 1].
func KR20(m *rasch.ResponseMatrix) float64 {
	n, k := m.Dims()
	if n == 0 || k < 2 {
		return 0
	}

	var sumPQ float64
	for _, correct := range m.ItemScores() {
		p := correct / float64(n)
		sumPQ += p * (1 - p)
	}
	totalVar := stat.PopVariance(m.PersonScores(), nil)
	if totalVar == 0 {
		return 0
	}

	kf := float64(k)
	r := (kf / (kf - 1.0)) * (1.0 - sumPQ/totalVar)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
