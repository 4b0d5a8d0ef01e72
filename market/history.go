package market

import (
	"fmt"
	"sort"
	"strings"
)

// History is the loaded market data: one spot series per currency and the
// optional short-rate series keyed by currency.
type History struct {
	FX    map[string]Series
	Rates map[string]Series
}

// Currencies returns the currencies with FX history, sorted.
func (h History) Currencies() []string {
	out := make([]string, 0, len(h.FX))
	for c := range h.FX {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ContractError lists every currency that breaks the data contract.
type ContractError struct {
	MissingFX    []string
	MissingRates []string

	// InvalidFX holds one message per FX series that fails Series.Validate.
	InvalidFX []string
}

func (e *ContractError) Error() string {
	var parts []string
	if len(e.MissingFX) > 0 {
		parts = append(parts, fmt.Sprintf("missing FX series for currencies: %s", strings.Join(e.MissingFX, ", ")))
	}
	if len(e.MissingRates) > 0 {
		parts = append(parts, fmt.Sprintf("missing rate rows for mapped currencies: %s", strings.Join(e.MissingRates, ", ")))
	}
	if len(e.InvalidFX) > 0 {
		parts = append(parts, "invalid FX series: "+strings.Join(e.InvalidFX, "; "))
	}
	return "market data contract: " + strings.Join(parts, "; ")
}

// ValidateHistory must pass before a simulation starts. Every configured
// currency needs an FX series and, when rates are enabled, every mapped
// currency needs a rate series. Configured FX series must also pass
// Series.Validate. All offenders are reported at once.
func ValidateHistory(h History, currencies []string, rateMapping map[string]string, ratesEnabled bool) error {
	e := &ContractError{}
	for _, c := range currencies {
		s, ok := h.FX[c]
		if !ok {
			e.MissingFX = append(e.MissingFX, c)
			continue
		}
		if err := s.Validate(); err != nil {
			e.InvalidFX = append(e.InvalidFX, err.Error())
		}
	}
	if ratesEnabled {
		for c := range rateMapping {
			if _, ok := h.Rates[c]; !ok {
				e.MissingRates = append(e.MissingRates, c)
			}
		}
		sort.Strings(e.MissingRates)
	}
	if len(e.MissingFX) == 0 && len(e.MissingRates) == 0 && len(e.InvalidFX) == 0 {
		return nil
	}
	return e
}
