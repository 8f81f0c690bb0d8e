package rasch

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// guttmanRows rounds model probabilities at 0.5, so it carries no noise.
func guttmanRows(abilities, difficulties []float64) [][]float64 {
	rows := make([][]float64, len(abilities))
	for p, a := range abilities {
		rows[p] = make([]float64, len(difficulties))
		for i, b := range difficulties {
			if 1/(1+math.Exp(-(a-b))) >= 0.5 {
				rows[p][i] = 1
			}
		}
	}
	return rows
}

// sampledRows draws Bernoulli responses from the model.
func sampledRows(seed int64, abilities, difficulties []float64) [][]float64 {
	rnd := rand.New(rand.NewSource(seed))
	rows := make([][]float64, len(abilities))
	for p, a := range abilities {
		rows[p] = make([]float64, len(difficulties))
		for i, b := range difficulties {
			if rnd.Float64() < Probability(a, b) {
				rows[p][i] = 1
			}
		}
	}
	return rows
}

// ranks assigns 1-based ranks, averaging ties.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = r
		}
		i = j + 1
	}
	return out
}

func spearman(a, b []float64) float64 {
	return stat.Correlation(ranks(a), ranks(b), nil)
}

func mean(v []float64) float64 {
	return stat.Mean(v, nil)
}
