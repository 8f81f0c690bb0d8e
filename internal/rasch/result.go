package rasch

// Result is the immutable outcome of one analysis run. Accessors return
// copies so callers can never alias internal state.
type Result struct {
	abilities    []float64
	difficulties []float64
	persons      PopulationFit
	items        PopulationFit
	iterations   int
	converged    bool
}

// EmptyResult is the "no result" sentinel for degenerate input.
func EmptyResult() *Result {
	return &Result{
		abilities:    []float64{},
		difficulties: []float64{},
		persons:      newPopulationFit(0),
		items:        newPopulationFit(0),
	}
}

// NewResult assembles a result from completed vectors.
func NewResult(est Estimation, fit FitStatistics) *Result {
	return &Result{
		abilities:    cloneFloats(est.Abilities),
		difficulties: cloneFloats(est.Difficulties),
		persons:      fit.Persons.clone(),
		items:        fit.Items.clone(),
		iterations:   est.Iterations,
		converged:    est.Converged,
	}
}

// Calculate runs the whole pipeline with default options.
func Calculate(rows [][]float64) (*Result, error) {
	return CalculateWith(rows, Options{})
}

// CalculateWith binarizes rows, estimates parameters and analyzes fit.
func CalculateWith(rows [][]float64, opts Options) (*Result, error) {
	m, err := NewResponseMatrix(rows)
	if err != nil {
		return nil, err
	}
	return Run(m, opts)
}

// Run estimates and analyzes an already built matrix.
func Run(m *ResponseMatrix, opts Options) (*Result, error) {
	if m.IsEmpty() {
		return EmptyResult(), nil
	}
	est := NewEstimator(opts).Run(m)
	fit, err := Analyze(m, est.Abilities, est.Difficulties)
	if err != nil {
		return nil, err
	}
	return NewResult(est, fit), nil
}

// IsEmpty reports whether either parameter vector has zero length.
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.abilities) == 0 || len(r.difficulties) == 0
}

func (r *Result) Abilities() []float64     { return cloneFloats(r.abilities) }
func (r *Result) Difficulties() []float64  { return cloneFloats(r.difficulties) }
func (r *Result) PersonFit() PopulationFit { return r.persons.clone() }
func (r *Result) ItemFit() PopulationFit   { return r.items.clone() }

// Iterations is the number of JMLE iterations performed.
func (r *Result) Iterations() int { return r.iterations }

// Converged is false when the iteration cap was reached first.
func (r *Result) Converged() bool { return r.converged }
