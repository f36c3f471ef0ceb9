package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "validation errors: " + strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator provides validation utilities
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// Errors returns all validation errors
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
}

// MinLength validates minimum string length
func (v *Validator) MinLength(field, value string, min int) {
	if len(value) < min {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", min))
	}
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) {
	if len(value) > max {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// MinValue validates minimum numeric value
func (v *Validator) MinValue(field string, value, min float64) {
	if value < min {
		v.AddError(field, fmt.Sprintf("must be at least %v", min))
	}
}

// MaxValue validates maximum numeric value
func (v *Validator) MaxValue(field string, value, max float64) {
	if value > max {
		v.AddError(field, fmt.Sprintf("must be at most %v", max))
	}
}

// Positive validates that a number is positive
func (v *Validator) Positive(field string, value float64) {
	if value <= 0 {
		v.AddError(field, "must be positive")
	}
}

// NonNegative validates that a number is non-negative
func (v *Validator) NonNegative(field string, value float64) {
	if value < 0 {
		v.AddError(field, "must be non-negative")
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// Symbol validates a Binance-style trading pair symbol (e.g. BTCUSDT), the
// format internal/candles fetches and the result store keys on.
func (v *Validator) Symbol(field, value string) {
	symbolRegex := regexp.MustCompile(`^[A-Z0-9]{5,20}$`)
	if !symbolRegex.MatchString(value) {
		v.AddError(field, "must be a valid symbol (e.g. BTCUSDT)")
	}
}

// Alphanumeric validates that a string contains only alphanumeric characters
func (v *Validator) Alphanumeric(field, value string) {
	alphanumericRegex := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	if !alphanumericRegex.MatchString(value) {
		v.AddError(field, "must contain only alphanumeric characters")
	}
}

// DiscoveryRequestValidator validates a discovery start request (spec
// §4.3's start(...) arguments: symbols, lookback window, capital, sizing).
type DiscoveryRequestValidator struct {
	*Validator
}

// NewDiscoveryRequestValidator creates a validator for discovery start requests.
func NewDiscoveryRequestValidator() *DiscoveryRequestValidator {
	return &DiscoveryRequestValidator{Validator: NewValidator()}
}

// ValidateSymbols checks that at least one symbol was given and each one
// looks like a Binance-style pair.
func (v *DiscoveryRequestValidator) ValidateSymbols(symbols []string) {
	if len(symbols) == 0 {
		v.AddError("symbols", "at least one symbol is required")
		return
	}
	for _, s := range symbols {
		v.Symbol("symbols", s)
	}
}

// ValidateDays checks the candle lookback window is within a sane range.
func (v *DiscoveryRequestValidator) ValidateDays(days int) {
	v.Positive("days", float64(days))
	v.MaxValue("days", float64(days), 3650) // 10 years
}

// ValidateInitialCapital checks the starting capital is positive and
// within a sane range for a simulated backtest.
func (v *DiscoveryRequestValidator) ValidateInitialCapital(capital float64) {
	v.Positive("initial_capital", capital)
	v.MaxValue("initial_capital", capital, 1_000_000_000)
}

// ValidateSizingMode checks the sizing mode name is one backtest.SizingMode
// actually supports.
func (v *DiscoveryRequestValidator) ValidateSizingMode(mode string) {
	before := len(v.Errors())
	v.Required("sizing.mode", mode)
	if len(v.Errors()) > before {
		return
	}
	v.OneOf("sizing.mode", mode, []string{"fixed", "kelly", "confidence_scaled", "confidence"})
}

// SanitizeSymbol normalizes a trading symbol to the Binance-style form
// internal/candles expects: uppercase, no separators.
func SanitizeSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	symbol = strings.ReplaceAll(symbol, " ", "")
	symbol = strings.ReplaceAll(symbol, "/", "")
	symbol = strings.ReplaceAll(symbol, "-", "")
	return symbol
}
