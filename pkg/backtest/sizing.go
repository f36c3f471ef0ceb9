package backtest

import "github.com/shopspring/decimal"

// SizingKind selects which of spec.md's three position-sizing modes a
// SizingMode applies.
type SizingKind string

const (
	SizingFixed            SizingKind = "fixed"
	SizingKelly            SizingKind = "kelly"
	SizingConfidenceScaled SizingKind = "confidence_scaled"
)

// SizingMode is the discriminated union spec.md's data model calls
// SizingMode: Fixed(amount), Kelly(fraction), ConfidenceScaled(base,multiplier).
// Exactly one set of fields is meaningful for a given Kind.
type SizingMode struct {
	Kind SizingKind

	// Fixed
	Amount decimal.Decimal

	// Kelly — f is a pre-configured fraction of equity (typically <= 0.25),
	// not derived from trade history; spec.md's Kelly(f) takes f as
	// configured input, so no win-rate/avg-win estimation runs here.
	Fraction float64

	// ConfidenceScaled
	Base       float64
	Multiplier float64
}

// FixedSizing builds a Fixed(amount) sizing mode.
func FixedSizing(amount decimal.Decimal) SizingMode {
	return SizingMode{Kind: SizingFixed, Amount: amount}
}

// KellySizing builds a Kelly(fraction) sizing mode.
func KellySizing(fraction float64) SizingMode {
	return SizingMode{Kind: SizingKelly, Fraction: fraction}
}

// ConfidenceScaledSizing builds a ConfidenceScaled(base,multiplier) sizing mode.
func ConfidenceScaledSizing(base, multiplier float64) SizingMode {
	return SizingMode{Kind: SizingConfidenceScaled, Base: base, Multiplier: multiplier}
}

// RiskAmount computes the dollar amount to risk on a Buy signal of the
// given confidence against the current equity, per spec.md §4.2:
//
//	Fixed(amount)            -> min(amount, equity)
//	Kelly(f)                 -> f * equity * confidence
//	ConfidenceScaled(b, m)   -> b * equity * (1 + m*(confidence-0.3))
//
// The result is always capped to the available equity.
func (s SizingMode) RiskAmount(equity decimal.Decimal, confidence float64) decimal.Decimal {
	var risk decimal.Decimal

	switch s.Kind {
	case SizingFixed:
		risk = decimal.Min(s.Amount, equity)
	case SizingKelly:
		risk = decimal.NewFromFloat(s.Fraction * confidence).Mul(equity)
	case SizingConfidenceScaled:
		factor := s.Base * (1 + s.Multiplier*(confidence-0.3))
		risk = decimal.NewFromFloat(factor).Mul(equity)
	default:
		return decimal.Zero
	}

	if risk.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(risk, equity)
}
