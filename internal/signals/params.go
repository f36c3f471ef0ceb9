package signals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// StrategyKind identifies one of the ~10 single-indicator families.
type StrategyKind string

const (
	KindRSI        StrategyKind = "rsi"
	KindBollinger  StrategyKind = "bollinger"
	KindMACD       StrategyKind = "macd"
	KindEMACross   StrategyKind = "ema_cross"
	KindStochastic StrategyKind = "stochastic"
	KindATRRevert  StrategyKind = "atr_mean_reversion"
	KindVWAP       StrategyKind = "vwap_deviation"
	KindOBV        StrategyKind = "obv_sma"
	KindWilliamsR  StrategyKind = "williams_r"
	KindADX        StrategyKind = "adx"
)

// AllKinds enumerates every single-indicator family, in a fixed order used
// by the random generator and the grid-scan cycle schedule.
var AllKinds = []StrategyKind{
	KindRSI, KindBollinger, KindMACD, KindEMACross, KindStochastic,
	KindATRRevert, KindVWAP, KindOBV, KindWilliamsR, KindADX,
}

// VoteMode is how a Dynamic Combo resolves its children's signals into one.
type VoteMode string

const (
	VoteUnanimous        VoteMode = "unanimous"
	VoteMajority         VoteMode = "majority"
	VotePrimaryConfirmed VoteMode = "primary_confirmed"
)

// WebStrategyID identifies one of the five web-researched heuristics.
type WebStrategyID string

const (
	WebProbabilityEdge    WebStrategyID = "probability_edge"
	WebCatalystMomentum   WebStrategyID = "catalyst_momentum"
	WebFavoriteCompounder WebStrategyID = "favorite_compounder"
	WebMarketMakingSim    WebStrategyID = "market_making_sim"
	WebMeanReversionPoly  WebStrategyID = "mean_reversion_poly"
)

// StrategyType discriminates the four shapes a StrategyConfig can take.
type StrategyType string

const (
	TypeSingle   StrategyType = "single"
	TypeCombo    StrategyType = "combo"
	TypeWeb      StrategyType = "web"
	TypeGabagool StrategyType = "gabagool"
)

// SingleConfig parameterizes one single-indicator generator.
type SingleConfig struct {
	Kind   StrategyKind       `json:"kind"`
	Params map[string]float64 `json:"params"`
}

// ComboConfig parameterizes a Dynamic Combo of 2-4 single-indicator
// children voting under one VoteMode.
type ComboConfig struct {
	Children []SingleConfig `json:"children"`
	Mode     VoteMode       `json:"mode"`
}

// WebConfig parameterizes one of the five web-researched heuristics.
type WebConfig struct {
	ID     WebStrategyID      `json:"id"`
	Params map[string]float64 `json:"params"`
}

// GabagoolConfig parameterizes the binary-arbitrage path.
type GabagoolConfig struct {
	Params map[string]float64 `json:"params"`
}

// StrategyConfig is the discriminated union every candidate strategy is
// described by, and the unit that gets canonically fingerprinted for
// dedup in the result store (spec §4.4/§5). Exactly one of the four
// pointer fields matching Type is populated.
type StrategyConfig struct {
	Type     StrategyType    `json:"type"`
	Single   *SingleConfig   `json:"single,omitempty"`
	Combo    *ComboConfig    `json:"combo,omitempty"`
	Web      *WebConfig      `json:"web,omitempty"`
	Gabagool *GabagoolConfig `json:"gabagool,omitempty"`
}

// Fingerprint returns the canonical JSON encoding of cfg: keys sorted
// alphabetically, no insignificant whitespace, deterministic number
// formatting. Two StrategyConfigs with the same semantic content produce
// byte-identical fingerprints regardless of struct field order or map
// iteration order, which is what the store's unique constraint relies on.
//
// Mechanism: marshal to JSON, then unmarshal into a generic
// map[string]interface{}/[]interface{} tree and re-marshal. encoding/json
// already sorts map[string]interface{} keys alphabetically on marshal, so
// the round-trip is sufficient; json.Number preserves exact numeric text
// instead of re-formatting through float64.
func (cfg StrategyConfig) Fingerprint() (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal strategy config: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var generic interface{}
	if err := decoder.Decode(&generic); err != nil {
		return "", fmt.Errorf("decode strategy config for canonicalization: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("canonicalize strategy config: %w", err)
	}
	return string(canonical), nil
}

// sortedParamKeys returns params' keys in sorted order, for deterministic
// iteration over a params map. Nothing in the package calls it.
func sortedParamKeys(params map[string]float64) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
