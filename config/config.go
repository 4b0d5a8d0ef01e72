package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/guarantee/capital"
)

// mixTolerance bounds the rounding allowed when weights must sum to 1.
const mixTolerance = 1e-8

// Config is the complete vehicle configuration
type Config struct {
	Run           RunConfig           `json:"run" yaml:"run"`
	Universe      UniverseConfig      `json:"universe" yaml:"universe"`
	Data          DataConfig          `json:"data" yaml:"data"`
	Portfolio     PortfolioConfig     `json:"portfolio" yaml:"portfolio"`
	Credit        CreditConfig        `json:"credit" yaml:"credit"`
	Guarantee     GuaranteeConfig     `json:"guarantee" yaml:"guarantee"`
	Economics     EconomicsConfig     `json:"economics" yaml:"economics"`
	Curves        CurvesConfig        `json:"curves" yaml:"curves"`
	CapitalTarget CapitalTargetConfig `json:"capital_target" yaml:"capital_target"`
	CapitalStack  []StackLayer        `json:"capital_stack" yaml:"capital_stack" validate:"required,min=1,dive"`
	Journal       JournalConfig       `json:"journal" yaml:"journal"`
}

// RunConfig controls the simulation run
type RunConfig struct {
	Phase     int    `json:"phase" yaml:"phase" validate:"gte=0,lte=4"`
	Seed      uint64 `json:"seed" yaml:"seed"`
	TimeStep  string `json:"time_step" yaml:"time_step" validate:"eq=monthly"`
	Trials    int    `json:"trials" yaml:"trials" validate:"gt=0"`
	Workers   int    `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0"`
	BatchSize int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty" validate:"gte=0"`
}

// UniverseConfig lists the currencies in the portfolio
type UniverseConfig struct {
	Currencies      []string `json:"currencies" yaml:"currencies" validate:"required,min=1,unique,dive,required,len=3,uppercase"`
	QuoteConvention string   `json:"quote_convention" yaml:"quote_convention" validate:"eq=LCY_per_USD"`
}

// DataConfig points at the market data files
type DataConfig struct {
	FXFile string      `json:"fx_file,omitempty" yaml:"fx_file,omitempty"`
	Rates  RatesConfig `json:"rates" yaml:"rates"`
}

// RatesConfig maps currencies to short-rate columns. When enabled, the
// latest observation of each mapped series replaces curves.lcy_rate for
// that currency.
type RatesConfig struct {
	Enabled   bool              `json:"enabled" yaml:"enabled"`
	File      string            `json:"file,omitempty" yaml:"file,omitempty"`
	Mapping   map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	InPercent bool              `json:"in_percent,omitempty" yaml:"in_percent,omitempty"`
}

// MixConfig weights the hedge instruments
type MixConfig struct {
	CCS float64 `json:"CCS" yaml:"CCS" validate:"gte=0,lte=1"`
	NDF float64 `json:"NDF" yaml:"NDF" validate:"gte=0,lte=1"`
}

// PortfolioConfig describes the guaranteed book
type PortfolioConfig struct {
	TenorYears       int                `json:"tenor_years" yaml:"tenor_years" validate:"gt=0"`
	Mix              MixConfig          `json:"mix" yaml:"mix"`
	Weighting        string             `json:"weighting" yaml:"weighting" validate:"oneof=equal custom"`
	CustomWeights    map[string]float64 `json:"custom_weights,omitempty" yaml:"custom_weights,omitempty"`
	NotionalUSDTotal float64            `json:"notional_usd_total" yaml:"notional_usd_total" validate:"gt=0"`
}

// FXDefaultDependenceConfig is parsed and validated but not used by the
// loss engine.
type FXDefaultDependenceConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Method   string  `json:"method" yaml:"method"`
	Strength float64 `json:"strength" yaml:"strength" validate:"gte=-1,lte=1"`
}

// CreditConfig holds the default assumptions
type CreditConfig struct {
	PDScenariosAnnual   []float64                 `json:"pd_scenarios_annual" yaml:"pd_scenarios_annual" validate:"required,min=1,dive,gt=0,lt=1"`
	LGD                 float64                   `json:"lgd" yaml:"lgd" validate:"gt=0,lte=1"`
	DefaultTiming       string                    `json:"default_timing" yaml:"default_timing" validate:"eq=constant_hazard"`
	FXDefaultDependence FXDefaultDependenceConfig `json:"fx_default_dependence" yaml:"fx_default_dependence"`
}

// GuaranteeConfig holds the guarantee contract terms
type GuaranteeConfig struct {
	Trigger               string  `json:"trigger" yaml:"trigger" validate:"eq=default_only"`
	CoveragePct           float64 `json:"coverage_pct" yaml:"coverage_pct" validate:"gt=0,lte=1"`
	Payout                string  `json:"payout" yaml:"payout"`
	Collateralisation     string  `json:"collateralisation" yaml:"collateralisation"`
	AttachmentPctNotional float64 `json:"attachment_pct_notional" yaml:"attachment_pct_notional" validate:"gte=0,lte=1"`
	DetachmentPctNotional float64 `json:"detachment_pct_notional" yaml:"detachment_pct_notional" validate:"gt=0,lte=1"`
}

// EconomicsConfig holds the running rates in bps of notional per year
type EconomicsConfig struct {
	ClientFeeBpsPA    float64 `json:"client_fee_bps_pa" yaml:"client_fee_bps_pa" validate:"gte=0"`
	OpexBpsPA         float64 `json:"opex_bps_pa" yaml:"opex_bps_pa" validate:"gte=0"`
	NDFCostAddonBpsPA float64 `json:"ndf_cost_addon_bps_pa" yaml:"ndf_cost_addon_bps_pa" validate:"gte=0"`
	ReserveBuildBpsPA float64 `json:"reserve_build_bps_pa" yaml:"reserve_build_bps_pa" validate:"gte=0"`
}

// CurvesConfig holds the flat rates used to value the hedges
type CurvesConfig struct {
	USDRate         float64 `json:"usd_rate" yaml:"usd_rate" validate:"gte=-0.05,lte=1"`
	LCYRate         float64 `json:"lcy_rate" yaml:"lcy_rate" validate:"gte=-0.05,lte=1"`
	CCSFixedUSDRate float64 `json:"ccs_fixed_usd_rate" yaml:"ccs_fixed_usd_rate" validate:"gte=0,lte=1"`
	CCSFixedLCYRate float64 `json:"ccs_fixed_lcy_rate" yaml:"ccs_fixed_lcy_rate" validate:"gte=0,lte=1"`
}

// ConcentrationLimitsConfig caps single exposures
type ConcentrationLimitsConfig struct {
	MaxCurrencyWeight           float64 `json:"max_currency_weight" yaml:"max_currency_weight" validate:"gt=0,lte=1"`
	MaxSingleCounterpartyWeight float64 `json:"max_single_counterparty_weight" yaml:"max_single_counterparty_weight" validate:"gt=0,lte=1"`
}

// CapitalTargetConfig controls capital sizing
type CapitalTargetConfig struct {
	Label               string                    `json:"label" yaml:"label"`
	Method              string                    `json:"method" yaml:"method" validate:"oneof=VaR ES"`
	Confidence          float64                   `json:"confidence" yaml:"confidence" validate:"gt=0,lt=1"`
	SeverityQuantile    float64                   `json:"severity_quantile" yaml:"severity_quantile" validate:"gt=0,lt=1"`
	HorizonYears        int                       `json:"horizon_years" yaml:"horizon_years" validate:"gt=0"`
	AddonPct            float64                   `json:"addon_pct" yaml:"addon_pct" validate:"gte=0"`
	TargetROE           float64                   `json:"target_roe" yaml:"target_roe" validate:"gt=0"`
	ConcentrationLimits ConcentrationLimitsConfig `json:"concentration_limits" yaml:"concentration_limits"`
}

// StackLayer is one configured tranche. The pointer fields are only
// allowed on the layer type they belong to.
type StackLayer struct {
	Name                     string   `json:"name" yaml:"name" validate:"required"`
	Type                     string   `json:"type" yaml:"type" validate:"oneof=equity mezz counter_guarantee"`
	AttachPct                float64  `json:"attach_pct" yaml:"attach_pct" validate:"gte=0,lte=1"`
	DetachPct                float64  `json:"detach_pct" yaml:"detach_pct" validate:"gt=0,lte=1"`
	CouponPct                *float64 `json:"coupon_pct,omitempty" yaml:"coupon_pct,omitempty" validate:"omitnil,gte=0"`
	FeeBpsOnGuaranteedAmount *float64 `json:"fee_bps_on_guaranteed_amount,omitempty" yaml:"fee_bps_on_guaranteed_amount,omitempty" validate:"omitnil,gte=0"`
	GuarantorCapitalFactor   *float64 `json:"guarantor_capital_factor,omitempty" yaml:"guarantor_capital_factor,omitempty" validate:"omitnil,gte=0"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=csv sqlite"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	LossesFile string `json:"losses_file,omitempty" yaml:"losses_file,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadFromFile loads configuration from a YAML or JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML or JSON based on the extension
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate runs the field rules and then the cross-field checks
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrors(verrs)
		}
		return err
	}

	if total := c.Portfolio.Mix.CCS + c.Portfolio.Mix.NDF; math.Abs(total-1) > mixTolerance {
		return fmt.Errorf("portfolio.mix must sum to 1.0, got %v", total)
	}
	if c.Guarantee.AttachmentPctNotional >= c.Guarantee.DetachmentPctNotional {
		return fmt.Errorf("guarantee.attachment_pct_notional must be less than detachment_pct_notional")
	}
	if c.Run.Phase >= 2 && len(c.Credit.PDScenariosAnnual) < 2 {
		return fmt.Errorf("credit.pd_scenarios_annual needs a stress scenario (index 1) when run.phase >= 2")
	}
	if c.Portfolio.Weighting == "custom" {
		if err := c.validateCustomWeights(); err != nil {
			return err
		}
	}
	if c.Data.Rates.Enabled {
		var unmapped []string
		for _, ccy := range c.Universe.Currencies {
			if c.Data.Rates.Mapping[ccy] == "" {
				unmapped = append(unmapped, ccy)
			}
		}
		if len(unmapped) > 0 {
			return fmt.Errorf("data.rates.mapping missing currencies: %s", strings.Join(unmapped, ", "))
		}
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if c.Journal.Type == "csv" && (c.Journal.RunsFile == "" || c.Journal.LossesFile == "") {
		return fmt.Errorf("journal runs_file and losses_file required for CSV type")
	}

	if _, err := c.Stack(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCustomWeights() error {
	var missing []string
	sum := 0.0
	for _, ccy := range c.Universe.Currencies {
		w, ok := c.Portfolio.CustomWeights[ccy]
		if !ok {
			missing = append(missing, ccy)
			continue
		}
		if w < 0 {
			return fmt.Errorf("portfolio.custom_weights[%s] must be non-negative", ccy)
		}
		sum += w
	}
	if len(missing) > 0 {
		return fmt.Errorf("portfolio.custom_weights missing currencies: %s", strings.Join(missing, ", "))
	}
	for ccy := range c.Portfolio.CustomWeights {
		if !c.inUniverse(ccy) {
			return fmt.Errorf("portfolio.custom_weights has %s outside universe.currencies", ccy)
		}
	}
	if math.Abs(sum-1) > mixTolerance {
		return fmt.Errorf("portfolio.custom_weights must sum to 1.0, got %v", sum)
	}
	return nil
}

func (c *Config) inUniverse(ccy string) bool {
	for _, u := range c.Universe.Currencies {
		if u == ccy {
			return true
		}
	}
	return false
}

// Weights returns the portfolio weight of every currency in the universe.
func (c *Config) Weights() map[string]float64 {
	out := make(map[string]float64, len(c.Universe.Currencies))
	if c.Portfolio.Weighting == "custom" {
		for _, ccy := range c.Universe.Currencies {
			out[ccy] = c.Portfolio.CustomWeights[ccy]
		}
		return out
	}
	w := 1.0 / float64(len(c.Universe.Currencies))
	for _, ccy := range c.Universe.Currencies {
		out[ccy] = w
	}
	return out
}

// StressPD is the scenario that drives the Monte Carlo default draws.
func (c *Config) StressPD() float64 {
	if len(c.Credit.PDScenariosAnnual) > 1 {
		return c.Credit.PDScenariosAnnual[1]
	}
	return c.Credit.PDScenariosAnnual[0]
}

// CapitalEconomics converts the economics block.
func (c *Config) CapitalEconomics() capital.Economics {
	return capital.Economics{
		ClientFeeBps:    c.Economics.ClientFeeBpsPA,
		OpexBps:         c.Economics.OpexBpsPA,
		NDFCostAddonBps: c.Economics.NDFCostAddonBpsPA,
		ReserveBuildBps: c.Economics.ReserveBuildBpsPA,
	}
}

// Layer converts the configured layer, rejecting fields that do not belong
// to its type.
func (l StackLayer) Layer() (capital.Layer, error) {
	out := capital.Layer{Name: l.Name, AttachPct: l.AttachPct, DetachPct: l.DetachPct}

	var stray []string
	switch l.Type {
	case string(capital.Equity):
		if l.CouponPct != nil {
			stray = append(stray, "coupon_pct")
		}
		if l.FeeBpsOnGuaranteedAmount != nil {
			stray = append(stray, "fee_bps_on_guaranteed_amount")
		}
		if l.GuarantorCapitalFactor != nil {
			stray = append(stray, "guarantor_capital_factor")
		}
		out.Terms = capital.EquityTerms{}
	case string(capital.Mezz):
		if l.FeeBpsOnGuaranteedAmount != nil {
			stray = append(stray, "fee_bps_on_guaranteed_amount")
		}
		if l.GuarantorCapitalFactor != nil {
			stray = append(stray, "guarantor_capital_factor")
		}
		out.Terms = capital.MezzTerms{CouponPct: deref(l.CouponPct)}
	case string(capital.CounterGuarantee):
		if l.CouponPct != nil {
			stray = append(stray, "coupon_pct")
		}
		out.Terms = capital.CounterGuaranteeTerms{
			FeeBps:        deref(l.FeeBpsOnGuaranteedAmount),
			CapitalFactor: deref(l.GuarantorCapitalFactor),
		}
	default:
		return capital.Layer{}, fmt.Errorf("layer %q: unknown type %q", l.Name, l.Type)
	}
	if len(stray) > 0 {
		return capital.Layer{}, fmt.Errorf("layer %q: %s not allowed on %s layer", l.Name, strings.Join(stray, ", "), l.Type)
	}
	if err := out.Validate(); err != nil {
		return capital.Layer{}, err
	}
	return out, nil
}

// Stack converts capital_stack and checks that it has a positive-width
// equity layer.
func (c *Config) Stack() (capital.Stack, error) {
	if len(c.CapitalStack) == 0 {
		return nil, fmt.Errorf("capital_stack cannot be empty")
	}
	stack := make(capital.Stack, 0, len(c.CapitalStack))
	for _, sl := range c.CapitalStack {
		l, err := sl.Layer()
		if err != nil {
			return nil, fmt.Errorf("capital_stack: %w", err)
		}
		stack = append(stack, l)
	}
	if !(stack.Widths()[capital.Equity] > 0) {
		return nil, capital.ErrNoEquity
	}
	return stack, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func fieldErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the root type name.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
		}
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func ptr(v float64) *float64 { return &v }

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Phase:    2,
			Seed:     42,
			TimeStep: "monthly",
			Trials:   5000,
		},
		Universe: UniverseConfig{
			Currencies:      []string{"KES", "NGN", "GHS", "UGX", "ZMW"},
			QuoteConvention: "LCY_per_USD",
		},
		Data: DataConfig{
			FXFile: "./data/fx.csv",
		},
		Portfolio: PortfolioConfig{
			TenorYears:       3,
			Mix:              MixConfig{CCS: 0.7, NDF: 0.3},
			Weighting:        "equal",
			NotionalUSDTotal: 100_000_000,
		},
		Credit: CreditConfig{
			PDScenariosAnnual: []float64{0.02, 0.05, 0.10},
			LGD:               1.0,
			DefaultTiming:     "constant_hazard",
			FXDefaultDependence: FXDefaultDependenceConfig{
				Method: "copula",
			},
		},
		Guarantee: GuaranteeConfig{
			Trigger:               "default_only",
			CoveragePct:           1.0,
			Payout:                "mtm_at_default",
			Collateralisation:     "unfunded",
			AttachmentPctNotional: 0.0,
			DetachmentPctNotional: 0.15,
		},
		Economics: EconomicsConfig{
			ClientFeeBpsPA:    250,
			OpexBpsPA:         30,
			NDFCostAddonBpsPA: 10,
			ReserveBuildBpsPA: 5,
		},
		Curves: CurvesConfig{
			USDRate:         0.03,
			LCYRate:         0.06,
			CCSFixedUSDRate: 0.03,
			CCSFixedLCYRate: 0.06,
		},
		CapitalTarget: CapitalTargetConfig{
			Label:            "A-equivalent",
			Method:           "ES",
			Confidence:       0.99,
			SeverityQuantile: 0.995,
			HorizonYears:     1,
			AddonPct:         0.10,
			TargetROE:        0.15,
			ConcentrationLimits: ConcentrationLimitsConfig{
				MaxCurrencyWeight:           0.35,
				MaxSingleCounterpartyWeight: 0.10,
			},
		},
		CapitalStack: []StackLayer{
			{Name: "First loss equity", Type: "equity", AttachPct: 0, DetachPct: 0.05},
			{Name: "Mezzanine", Type: "mezz", AttachPct: 0.05, DetachPct: 0.08, CouponPct: ptr(0.09)},
			{
				Name: "Counter-guarantee", Type: "counter_guarantee", AttachPct: 0.08, DetachPct: 0.15,
				FeeBpsOnGuaranteedAmount: ptr(150), GuarantorCapitalFactor: ptr(0.2),
			},
		},
	}
}
