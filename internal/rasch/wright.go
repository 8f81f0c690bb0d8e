package rasch

const (
	WrightMapMin  = -3.0
	WrightMapMax  = 3.0
	WrightMapBins = 12
)

// WrightMap is a dual histogram of abilities and difficulties on the
// shared logit scale.
type WrightMap struct {
	BinEdges []float64 `json:"bin_edges" yaml:"bin_edges"`
	Persons  []int     `json:"persons" yaml:"persons"`
	Items    []int     `json:"items" yaml:"items"`
}

// NewWrightMap buckets values into WrightMapBins fixed-width bins over
// [WrightMapMin, WrightMapMax). Values outside the range are dropped.
func NewWrightMap(abilities, difficulties []float64) WrightMap {
	width := (WrightMapMax - WrightMapMin) / WrightMapBins
	edges := make([]float64, WrightMapBins+1)
	for i := range edges {
		edges[i] = WrightMapMin + float64(i)*width
	}
	return WrightMap{
		BinEdges: edges,
		Persons:  histogram(abilities, width),
		Items:    histogram(difficulties, width),
	}
}

func histogram(values []float64, width float64) []int {
	bins := make([]int, WrightMapBins)
	for _, v := range values {
		if v < WrightMapMin {
			continue
		}
		b := int((v - WrightMapMin) / width)
		if b >= 0 && b < WrightMapBins {
			bins[b]++
		}
	}
	return bins
}
