package rasch

import (
	"fmt"
	"math"
)

const (
	// minVariance excludes near-certain responses from fit accumulation.
	minVariance = 1e-6
	// kurtosisProxy is the fixed per-observation kurtosis weight.
	kurtosisProxy = -2.0
)

// PopulationFit holds index-aligned fit statistics for one population.
type PopulationFit struct {
	InfitMNSQ  []float64 `json:"infit_mnsq"`
	OutfitMNSQ []float64 `json:"outfit_mnsq"`
	InfitZ     []float64 `json:"infit_z"`
	OutfitZ    []float64 `json:"outfit_z"`
}

func newPopulationFit(n int) PopulationFit {
	return PopulationFit{
		InfitMNSQ:  make([]float64, n),
		OutfitMNSQ: make([]float64, n),
		InfitZ:     make([]float64, n),
		OutfitZ:    make([]float64, n),
	}
}

// Len returns the population size.
func (f PopulationFit) Len() int { return len(f.InfitMNSQ) }

func (f PopulationFit) clone() PopulationFit {
	return PopulationFit{
		InfitMNSQ:  cloneFloats(f.InfitMNSQ),
		OutfitMNSQ: cloneFloats(f.OutfitMNSQ),
		InfitZ:     cloneFloats(f.InfitZ),
		OutfitZ:    cloneFloats(f.OutfitZ),
	}
}

// FitStatistics carries person and item fit.
type FitStatistics struct {
	Persons PopulationFit
	Items   PopulationFit
}

// Analyze computes infit/outfit mean-squares and their Wilson–Hilferty
// standardizations for every person and item. Observations with
// variance below 1e-6 are skipped; an element with no usable observation
// keeps all four statistics at 0.
//
// Outfit Z uses sd = sqrt(2/count). Infit Z uses sd = sqrt(|Σkurtosis/Σvariance|),
// and since kurtosis is accumulated as -2·variance that sd is always √2:
// infit Z does not narrow as the number of observations grows, so for the
// same mean-square it is larger in magnitude than outfit Z whenever count > 1.
func Analyze(m *ResponseMatrix, abilities, difficulties []float64) (FitStatistics, error) {
	persons, items := m.Dims()
	if len(abilities) != persons || len(difficulties) != items {
		return FitStatistics{}, fmt.Errorf("%d abilities/%d difficulties for %dx%d matrix: %w",
			len(abilities), len(difficulties), persons, items, ErrDimensionMismatch)
	}

	stats := FitStatistics{Persons: newPopulationFit(persons), Items: newPopulationFit(items)}
	for p := 0; p < persons; p++ {
		var acc fitAccumulator
		for i := 0; i < items; i++ {
			acc.add(m.At(p, i), abilities[p], difficulties[i])
		}
		acc.store(&stats.Persons, p)
	}
	for i := 0; i < items; i++ {
		var acc fitAccumulator
		for p := 0; p < persons; p++ {
			acc.add(m.At(p, i), abilities[p], difficulties[i])
		}
		acc.store(&stats.Items, i)
	}
	return stats, nil
}

type fitAccumulator struct {
	residualSq    float64
	stdResidualSq float64
	variance      float64
	kurtosis      float64
	count         int
}

func (a *fitAccumulator) add(observed, ability, difficulty float64) {
	prob := 1.0 / (1.0 + math.Exp(-(ability - difficulty)))
	variance := prob * (1.0 - prob)
	if variance < minVariance {
		return
	}
	residual := observed - prob
	std := residual / math.Sqrt(variance)
	a.residualSq += residual * residual
	a.stdResidualSq += std * std
	a.variance += variance
	a.kurtosis += variance * kurtosisProxy
	a.count++
}

func (a *fitAccumulator) store(f *PopulationFit, idx int) {
	if a.count == 0 {
		return
	}
	outfit := a.stdResidualSq / float64(a.count)
	infit := a.residualSq / a.variance
	f.OutfitMNSQ[idx] = outfit
	f.InfitMNSQ[idx] = infit
	if outfit > 0 {
		f.OutfitZ[idx] = wilsonHilferty(outfit, math.Sqrt(2.0/float64(a.count)))
	}
	if infit > 0 {
		// Always √2; independent of count.
		f.InfitZ[idx] = wilsonHilferty(infit, math.Sqrt(math.Abs(a.kurtosis/a.variance)))
	}
}

// wilsonHilferty standardizes a mean-square via its cube root.
func wilsonHilferty(mnsq, sd float64) float64 {
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	z := (math.Cbrt(mnsq)-1.0)*(3.0/sd) + sd/3.0
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0
	}
	return z
}

func cloneFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
