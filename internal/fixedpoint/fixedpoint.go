// Package fixedpoint holds the arithmetic primitives shared by the round
// calculator and the cap-table simulator. Money is a decimal.Decimal in whole
// currency units and ownership is an integer count of basis points, so no
// value that takes part in an ownership or share-count invariant ever passes
// through float64.
//
// Rounding policy: every division rounds half away from zero.
package fixedpoint

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bps is an ownership percentage in basis points. 10000 bps = 100%.
type Bps int64

const (
	// Full is 100% in basis points.
	Full Bps = 10000
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
)

var bpsScale = decimal.NewFromInt(int64(Full))

// Valid reports whether b lies in [0, Full].
func (b Bps) Valid() bool {
	return b >= 0 && b <= Full
}

// Decimal returns b as a fraction of one, e.g. 2000 -> 0.2.
func (b Bps) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(b)).Div(bpsScale)
}

// Percent returns b as a percentage with two decimals, e.g. 2000 -> "20.00".
func (b Bps) Percent() string {
	return decimal.New(int64(b), -2).StringFixed(2)
}

// RequireNonNegative returns ErrInvalidArgument when d < 0.
func RequireNonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidArgument, name, d.String())
	}
	return nil
}

// DivRound divides num by den and rounds half away from zero to places
// decimal places. A zero denominator yields zero.
func DivRound(num, den decimal.Decimal, places int32) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, places)
}

// ToBps converts the fraction num/den into basis points, rounding half away
// from zero. A zero denominator yields 0 bps.
func ToBps(num, den decimal.Decimal) (Bps, error) {
	if err := RequireNonNegative("numerator", num); err != nil {
		return 0, err
	}
	if err := RequireNonNegative("denominator", den); err != nil {
		return 0, err
	}
	q := DivRound(num.Mul(bpsScale), den, 0)
	return Bps(q.IntPart()), nil
}

// Scale computes b * numer / denom exactly and rounds it half away from zero.
// The second return value is the signed amount rounding added: rounded minus
// exact, expressed as a numerator over denom (so it lies in (-denom/2, denom/2]).
func Scale(b Bps, numer, denom int64) (Bps, int64) {
	if denom == 0 {
		return 0, 0
	}
	product := int64(b) * numer
	q := product / denom
	r := product % denom
	// round half away from zero on the remainder
	if 2*abs(r) >= abs(denom) {
		if (r < 0) != (denom < 0) {
			q--
		} else {
			q++
		}
	}
	return Bps(q), q*denom - product
}

// SplitBps distributes total across weights in proportion; see Split.
func SplitBps(total Bps, weights []decimal.Decimal) ([]Bps, error) {
	parts, err := Split(int64(total), weights)
	if err != nil {
		return nil, err
	}
	out := make([]Bps, len(parts))
	for i, p := range parts {
		out[i] = Bps(p)
	}
	return out, nil
}

// Split distributes total across weights in proportion, using the largest
// remainder rule so the parts always sum to total. Ties go to the earlier
// weight. Weights must be non-negative; if they sum to zero the split is even.
func Split(total int64, weights []decimal.Decimal) ([]int64, error) {
	parts := make([]int64, len(weights))
	if len(weights) == 0 {
		return parts, nil
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: split total must not be negative, got %d", ErrInvalidArgument, total)
	}
	sum := decimal.Zero
	for i, w := range weights {
		if err := RequireNonNegative(fmt.Sprintf("weight[%d]", i), w); err != nil {
			return nil, err
		}
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		weights = make([]decimal.Decimal, len(weights))
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		sum = decimal.NewFromInt(int64(len(weights)))
	}

	// remainders share the denominator sum, so they compare directly
	remainders := make([]decimal.Decimal, len(weights))
	var assigned int64
	t := decimal.NewFromInt(total)
	for i, w := range weights {
		q, r := t.Mul(w).QuoRem(sum, 0)
		parts[i] = q.IntPart()
		remainders[i] = r
		assigned += parts[i]
	}

	for left := total - assigned; left > 0; left-- {
		best := -1
		for i := range remainders {
			if best < 0 || remainders[i].GreaterThan(remainders[best]) {
				best = i
			}
		}
		parts[best]++
		remainders[best] = decimal.NewFromInt(-1)
	}
	return parts, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
