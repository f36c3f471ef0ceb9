package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ajitpratap0/polydiscover/internal/signals"
	"github.com/ajitpratap0/polydiscover/pkg/backtest"
	"github.com/shopspring/decimal"
)

// fingerprintInput is the full key spec §4.3's per-backtest loop dedupes
// on: `fingerprint(candidate, symbol, days, initial_capital, sizing_mode)`.
// Field order is fixed (unlike a map) so json.Marshal is already
// deterministic; sizingModeKey() below further canonicalizes the sizing
// parameters that matter to the fill model.
type fingerprintInput struct {
	Strategy       json.RawMessage `json:"strategy"`
	Symbol         string          `json:"symbol"`
	Days           int             `json:"days"`
	InitialCapital string          `json:"initial_capital"`
	SizingMode     string          `json:"sizing_mode"`
}

// Fingerprint computes the store's dedup key for one candidate backtest
// configuration. Same strategy + same symbol/days/capital/sizing always
// produces the same fingerprint, regardless of struct field or map
// iteration order (signals.StrategyConfig.Fingerprint already canonicalizes
// the strategy's own JSON).
func Fingerprint(cfg signals.StrategyConfig, symbol string, days int, initialCapital decimal.Decimal, sizing backtest.SizingMode) (string, error) {
	strategyJSON, err := cfg.Fingerprint()
	if err != nil {
		return "", fmt.Errorf("fingerprint strategy config: %w", err)
	}

	input := fingerprintInput{
		Strategy:       json.RawMessage(strategyJSON),
		Symbol:         symbol,
		Days:           days,
		InitialCapital: initialCapital.String(),
		SizingMode:     sizingModeKey(sizing),
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint input: %w", err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// sizingModeKey canonicalizes a SizingMode's parameters relevant to its
// own Kind only, so two SizingModes of different Kind (or different
// Fraction/Amount/Base/Multiplier) never collide.
func sizingModeKey(s backtest.SizingMode) string {
	switch s.Kind {
	case backtest.SizingFixed:
		return fmt.Sprintf("fixed:%s", s.Amount.String())
	case backtest.SizingKelly:
		return fmt.Sprintf("kelly:%g", s.Fraction)
	case backtest.SizingConfidenceScaled:
		return fmt.Sprintf("confidence_scaled:%g:%g", s.Base, s.Multiplier)
	default:
		return fmt.Sprintf("unknown:%s", s.Kind)
	}
}
