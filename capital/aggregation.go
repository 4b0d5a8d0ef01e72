package capital

import "sort"

// WeightedPortfolioSamples combines per-currency samples index by index
// with the given weights. Series are truncated to the shortest one;
// currencies without a weight contribute nothing.
func WeightedPortfolioSamples(samplesByCcy map[string][]float64, weights map[string]float64) []float64 {
	if len(samplesByCcy) == 0 {
		return nil
	}

	ccys := make([]string, 0, len(samplesByCcy))
	n := -1
	for c, s := range samplesByCcy {
		ccys = append(ccys, c)
		if n < 0 || len(s) < n {
			n = len(s)
		}
	}
	// fixed summation order keeps results bit-identical between runs
	sort.Strings(ccys)

	acc := make([]float64, n)
	for _, c := range ccys {
		w := weights[c]
		s := samplesByCcy[c]
		for i := range acc {
			acc[i] += w * s[i]
		}
	}
	return acc
}
