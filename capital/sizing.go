// Package capital sizes tail-risk capital for the guarantee vehicle and
// allocates its economics across the equity / mezzanine / counter-guarantee
// stack.
package capital

import (
	"fmt"

	"github.com/rustyeddy/guarantee/stats"
)

// Method selects the tail measure.
type Method string

const (
	VaR Method = "VaR"
	ES  Method = "ES"
)

// ParseMethod accepts "VaR" or "ES".
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case VaR, ES:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown tail method %q (want VaR or ES)", s)
}

// SeverityCapital is the q-quantile of an exposure or loss distribution
// grossed up by a management addon. Units follow the samples, so exposure
// fractions give a percent-of-notional capital figure.
func SeverityCapital(samples []float64, quantile, addonPct float64) float64 {
	return stats.Quantile(samples, quantile) * (1 + addonPct)
}

// VaROrES returns the empirical quantile at confidence for VaR, or the mean
// of all losses at or above it for ES. ES falls back to the VaR value when
// the tail is empty.
func VaROrES(losses []float64, confidence float64, method Method) float64 {
	sorted := stats.Sorted(losses)
	v := stats.QuantileSorted(sorted, confidence)
	if method == VaR {
		return v
	}
	es, n := stats.TailMean(sorted, v)
	if n == 0 {
		return v
	}
	return es
}

// ImpliedLeverage is notional per unit of capital. Non-positive capital
// yields 0, meaning undefined.
func ImpliedLeverage(capitalPct float64) float64 {
	if capitalPct <= 0 {
		return 0
	}
	return 1 / capitalPct
}
