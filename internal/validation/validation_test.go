package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Required(t *testing.T) {
	v := NewValidator()

	v.Required("field", "")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "field", v.Errors()[0].Field)
	assert.Contains(t, v.Errors()[0].Message, "required")

	v = NewValidator()
	v.Required("field", "  ")
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.Required("field", "value")
	assert.False(t, v.HasErrors())
}

func TestValidator_MinLength(t *testing.T) {
	v := NewValidator()

	v.MinLength("field", "ab", 3)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.MinLength("field", "abc", 3)
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.MinLength("field", "abcd", 3)
	assert.False(t, v.HasErrors())
}

func TestValidator_MaxLength(t *testing.T) {
	v := NewValidator()

	v.MaxLength("field", "abcd", 3)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.MaxLength("field", "abc", 3)
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.MaxLength("field", "ab", 3)
	assert.False(t, v.HasErrors())
}

func TestValidator_MinValue(t *testing.T) {
	v := NewValidator()

	v.MinValue("field", 5.0, 10.0)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.MinValue("field", 10.0, 10.0)
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.MinValue("field", 15.0, 10.0)
	assert.False(t, v.HasErrors())
}

func TestValidator_MaxValue(t *testing.T) {
	v := NewValidator()

	v.MaxValue("field", 15.0, 10.0)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.MaxValue("field", 10.0, 10.0)
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.MaxValue("field", 5.0, 10.0)
	assert.False(t, v.HasErrors())
}

func TestValidator_Positive(t *testing.T) {
	v := NewValidator()

	v.Positive("field", -1.0)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.Positive("field", 0.0)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.Positive("field", 1.0)
	assert.False(t, v.HasErrors())
}

func TestValidator_NonNegative(t *testing.T) {
	v := NewValidator()

	v.NonNegative("field", -1.0)
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.NonNegative("field", 0.0)
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.NonNegative("field", 1.0)
	assert.False(t, v.HasErrors())
}

func TestValidator_OneOf(t *testing.T) {
	v := NewValidator()

	v.OneOf("field", "invalid", []string{"a", "b", "c"})
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.OneOf("field", "b", []string{"a", "b", "c"})
	assert.False(t, v.HasErrors())
}

func TestValidator_Symbol(t *testing.T) {
	v := NewValidator()

	v.Symbol("field", "btcusdt") // lowercase should fail
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.Symbol("field", "BTCUSDT")
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.Symbol("field", "ETHBTC")
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.Symbol("field", "BTC/USDT") // slash not allowed
	assert.True(t, v.HasErrors())
}

func TestValidator_Alphanumeric(t *testing.T) {
	v := NewValidator()

	v.Alphanumeric("field", "abc123")
	assert.False(t, v.HasErrors())

	v = NewValidator()
	v.Alphanumeric("field", "abc-123")
	assert.True(t, v.HasErrors())

	v = NewValidator()
	v.Alphanumeric("field", "abc 123")
	assert.True(t, v.HasErrors())
}

func TestDiscoveryRequestValidator_ValidateSymbols(t *testing.T) {
	v := NewDiscoveryRequestValidator()
	v.ValidateSymbols(nil)
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateSymbols([]string{"BTCUSDT", "ETHUSDT"})
	assert.False(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateSymbols([]string{"btc/usdt"})
	assert.True(t, v.HasErrors())
}

func TestDiscoveryRequestValidator_ValidateDays(t *testing.T) {
	v := NewDiscoveryRequestValidator()
	v.ValidateDays(0)
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateDays(4000)
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateDays(90)
	assert.False(t, v.HasErrors())
}

func TestDiscoveryRequestValidator_ValidateInitialCapital(t *testing.T) {
	v := NewDiscoveryRequestValidator()
	v.ValidateInitialCapital(0)
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateInitialCapital(10000)
	assert.False(t, v.HasErrors())
}

func TestDiscoveryRequestValidator_ValidateSizingMode(t *testing.T) {
	v := NewDiscoveryRequestValidator()
	v.ValidateSizingMode("")
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateSizingMode("unknown")
	assert.True(t, v.HasErrors())

	v = NewDiscoveryRequestValidator()
	v.ValidateSizingMode("kelly")
	assert.False(t, v.HasErrors())
}

func TestSanitizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", SanitizeSymbol("btc/usdt"))
	assert.Equal(t, "BTCUSDT", SanitizeSymbol("BTC USDT"))
	assert.Equal(t, "BTCUSDT", SanitizeSymbol("btc-usdt"))
}

func TestValidationErrors(t *testing.T) {
	errors := ValidationErrors{}
	assert.False(t, errors.HasErrors())
	assert.Equal(t, "", errors.Error())

	errors = ValidationErrors{
		ValidationError{Field: "field1", Message: "error1"},
	}
	assert.True(t, errors.HasErrors())
	assert.Contains(t, errors.Error(), "field1")

	errors = ValidationErrors{
		ValidationError{Field: "field1", Message: "error1"},
		ValidationError{Field: "field2", Message: "error2"},
	}
	assert.True(t, errors.HasErrors())
	assert.Contains(t, errors.Error(), "field1")
	assert.Contains(t, errors.Error(), "field2")
}
