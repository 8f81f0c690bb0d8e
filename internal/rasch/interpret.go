package rasch

import "math"

// Conventional interpretation bounds. The analyzer never applies them;
// they exist for presentation layers.
const (
	IdealMNSQ          = 1.0
	MinAcceptableMNSQ  = 0.5
	MaxAcceptableMNSQ  = 1.5
	IdealZ             = 0.0
	MinAcceptableZ     = -2.0
	MaxAcceptableZ     = 2.0
	DefaultDisplayMNSQ = 1.0
)

type FitStatus string

const (
	FitProductive   FitStatus = "productive"
	FitUnderfit     FitStatus = "underfit"
	FitOverfit      FitStatus = "overfit"
	FitUndetermined FitStatus = "undetermined"
)

// ClassifyFit labels a mean-square/Z pair. A zero mean-square means no
// usable observation and is undetermined. Underfit wins over overfit when
// both the MNSQ and the Z are out of range in opposite directions.
func ClassifyFit(mnsq, z float64) FitStatus {
	switch {
	case mnsq == 0 || math.IsNaN(mnsq):
		return FitUndetermined
	case mnsq > MaxAcceptableMNSQ || z > MaxAcceptableZ:
		return FitUnderfit
	case mnsq < MinAcceptableMNSQ || z < MinAcceptableZ:
		return FitOverfit
	default:
		return FitProductive
	}
}

// DisplayMNSQ substitutes the display default for an uncomputed mean-square.
func DisplayMNSQ(v float64) float64 {
	if v == 0 {
		return DefaultDisplayMNSQ
	}
	return v
}
