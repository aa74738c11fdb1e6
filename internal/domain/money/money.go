// Package money provides exact cent-level arithmetic for booking totals.
// Amounts cross the wire as float64 dollars but are persisted and reconciled
// as integer cents; the helpers here are the only sanctioned conversion path.
package money

import (
	"fmt"
	"math"

	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
)

// epsilon counteracts binary floating-point representation error before
// rounding, so 1.005 rounds to 1.01 rather than 1.00 (1.005 is stored as
// 1.00499999... in IEEE 754).
const epsilon = 1e-9

// Round2 rounds a dollar amount to the nearest cent. Idempotent:
// Round2(Round2(x)) == Round2(x).
func Round2(n float64) float64 {
	if n >= 0 {
		return math.Floor((n+epsilon)*100+0.5) / 100
	}
	return -math.Floor((-n+epsilon)*100+0.5) / 100
}

// ToCents converts a dollar amount to integer cents.
func ToCents(dollars float64) int64 {
	return int64(math.Round(Round2(dollars) * 100))
}

// FromCents converts integer cents to a dollar amount. The round trip
// FromCents(ToCents(x)) == Round2(x) holds for any representable x.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Amount represents a monetary amount in the smallest currency unit.
type Amount struct {
	ValueCents int64
	Currency   string
}

// String returns a human-readable representation of the amount.
func (a Amount) String() string {
	whole := a.ValueCents / 100
	frac := a.ValueCents % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, a.Currency)
}

// Validate checks that the amount is non-negative with a plausible currency.
func (a Amount) Validate() error {
	if a.ValueCents < 0 {
		return domainErrors.NewValidationError("amount", "cannot be negative")
	}
	if len(a.Currency) != 3 {
		return domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	return nil
}

// NonNegative validates a dollar input at an API boundary. Clamping money
// silently is more dangerous than failing loudly, so negatives are rejected.
func NonNegative(field string, dollars float64) error {
	if dollars < 0 {
		return domainErrors.NewValidationError(field, "cannot be negative")
	}
	return nil
}
