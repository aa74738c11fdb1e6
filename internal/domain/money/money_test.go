package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"exact cents untouched", 10.25, 10.25},
		{"half cent rounds up", 1.005, 1.01},
		{"float artifact rounds down", 2.00499999, 2.00},
		{"repeating third", 100.0 / 3, 33.33},
		{"zero", 0, 0},
		{"negative half cent", -1.005, -1.01},
		{"large total", 123456.789, 123456.79},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Round2(tt.in), 1e-9)
		})
	}
}

func TestRound2_Idempotent(t *testing.T) {
	inputs := []float64{1.005, 0.1 + 0.2, 999.994999, 1000.0 / 7, -55.555}
	for _, x := range inputs {
		once := Round2(x)
		assert.Equal(t, once, Round2(once), "Round2 must be idempotent for %v", x)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	inputs := []float64{0, 0.01, 1.005, 250.00, 750.00, 100.01, 0.1 + 0.2}
	for _, x := range inputs {
		assert.InDelta(t, Round2(x), FromCents(ToCents(x)), 1e-9,
			"FromCents(ToCents(%v)) must equal Round2(%v)", x, x)
	}
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(100001), ToCents(1000.01))
	assert.Equal(t, int64(101), ToCents(1.005))
	assert.Equal(t, int64(0), ToCents(0))
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "1000.00 USD", Amount{ValueCents: 100000, Currency: "USD"}.String())
	assert.Equal(t, "33.35 USD", Amount{ValueCents: 3335, Currency: "USD"}.String())
}

func TestAmount_Validate(t *testing.T) {
	assert.NoError(t, Amount{ValueCents: 0, Currency: "USD"}.Validate())
	assert.Error(t, Amount{ValueCents: -1, Currency: "USD"}.Validate())
	assert.Error(t, Amount{ValueCents: 100, Currency: "US"}.Validate())
}

func TestNonNegative(t *testing.T) {
	assert.NoError(t, NonNegative("total", 0))
	assert.NoError(t, NonNegative("total", 12.34))
	assert.Error(t, NonNegative("total", -0.01))
}
