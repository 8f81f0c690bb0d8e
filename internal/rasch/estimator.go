package rasch

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultMaxIterations        = 100
	DefaultConvergenceCriterion = 0.001

	// logitClamp bounds θ-b before exponentiation.
	logitClamp = 30.0
	// maxStep bounds a single Newton step in logits.
	maxStep = 1.0
	// minInformation freezes a parameter whose expected variance collapsed.
	minInformation = 1e-4
)

// Options tunes the estimator. Zero fields fall back to the defaults.
type Options struct {
	MaxIterations        int
	ConvergenceCriterion float64
}

// Estimation is the outcome of one joint maximum-likelihood run.
type Estimation struct {
	Abilities    []float64
	Difficulties []float64
	Iterations   int
	Converged    bool
	// MaxChange is the largest absolute parameter change of the last iteration.
	MaxChange float64
}

// Estimator runs JMLE with alternating one-step Newton updates
// (proportional curve fitting). It holds only configuration.
type Estimator struct {
	maxIterations int
	criterion     float64
}

func NewEstimator(opts Options) *Estimator {
	e := &Estimator{maxIterations: opts.MaxIterations, criterion: opts.ConvergenceCriterion}
	if e.maxIterations <= 0 {
		e.maxIterations = DefaultMaxIterations
	}
	if e.criterion <= 0 || math.IsNaN(e.criterion) {
		e.criterion = DefaultConvergenceCriterion
	}
	return e
}

// Estimate runs the default estimator and returns abilities and
// difficulties. An empty matrix yields two empty vectors.
func Estimate(m *ResponseMatrix) (abilities, difficulties []float64) {
	est := NewEstimator(Options{}).Run(m)
	return est.Abilities, est.Difficulties
}

// Run estimates all parameters. Hitting the iteration cap is not an
// error: the current estimates are returned with Converged=false.
func (e *Estimator) Run(m *ResponseMatrix) Estimation {
	persons, items := m.Dims()
	if persons == 0 || items == 0 {
		return Estimation{Abilities: []float64{}, Difficulties: []float64{}}
	}

	abilities := make([]float64, persons)
	difficulties := make([]float64, items)
	out := Estimation{}
	for iter := 1; iter <= e.maxIterations; iter++ {
		var itemChange, personChange float64
		difficulties, itemChange = itemStep(m, abilities, difficulties)
		abilities, personChange = personStep(m, abilities, difficulties)

		out.Iterations = iter
		out.MaxChange = math.Max(itemChange, personChange)
		if out.MaxChange < e.criterion {
			out.Converged = true
			break
		}
	}
	out.Abilities = sanitize(abilities)
	out.Difficulties = sanitize(difficulties)
	return out
}

// Probability is the Rasch probability of a correct response, with the
// logit difference clamped to ±30.
func Probability(ability, difficulty float64) float64 {
	x := clamp(ability-difficulty, -logitClamp, logitClamp)
	return 1.0 / (1.0 + math.Exp(-x))
}

// itemStep returns re-centered difficulties and the largest change
// against the previous (centered) difficulties.
func itemStep(m *ResponseMatrix, abilities, difficulties []float64) ([]float64, float64) {
	persons, items := m.Dims()
	n := float64(persons)
	next := make([]float64, items)
	for i := 0; i < items; i++ {
		var expected, observed float64
		for p := 0; p < persons; p++ {
			observed += m.At(p, i)
			expected += Probability(abilities[p], difficulties[i])
		}
		next[i] = difficulties[i] - newtonStep(observed, expected, expected*(1-expected/n))
	}
	floats.AddConst(-stat.Mean(next, nil), next)
	return next, maxAbsDiff(next, difficulties)
}

// personStep mirrors itemStep across items. Abilities are not centered;
// the item centering anchors the scale.
func personStep(m *ResponseMatrix, abilities, difficulties []float64) ([]float64, float64) {
	persons, items := m.Dims()
	n := float64(items)
	next := make([]float64, persons)
	for p := 0; p < persons; p++ {
		var expected, observed float64
		for i := 0; i < items; i++ {
			observed += m.At(p, i)
			expected += Probability(abilities[p], difficulties[i])
		}
		next[p] = abilities[p] + newtonStep(observed, expected, expected*(1-expected/n))
	}
	return next, maxAbsDiff(next, abilities)
}

// newtonStep is (observed-expected)/information bounded to ±1 logit.
// Below the information floor the parameter is frozen; no extreme-score
// correction is applied.
func newtonStep(observed, expected, information float64) float64 {
	if !(information > minInformation) {
		return 0
	}
	return clamp((observed-expected)/information, -maxStep, maxStep)
}

func maxAbsDiff(a, b []float64) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func sanitize(v []float64) []float64 {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			v[i] = 0
		}
	}
	return v
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
