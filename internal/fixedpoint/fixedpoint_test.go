package fixedpoint

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestToBps(t *testing.T) {
	cases := []struct {
		name     string
		num, den decimal.Decimal
		want     Bps
	}{
		{"exact 20%", d(1_000_000), d(5_000_000), 2000},
		{"rounds down", d(500_000), d(5_500_000), 909}, // 909.09
		{"half rounds away from zero", d(1), d(20_000), 1}, // 0.5
		{"just under half", d(49_999), d(1_000_000_000), 0},
		{"full", d(7), d(7), Full},
		{"zero numerator", d(0), d(10), 0},
		{"zero denominator is zero", d(10), d(0), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToBps(tc.num, tc.den)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToBpsRejectsNegative(t *testing.T) {
	_, err := ToBps(d(-1), d(10))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ToBps(d(1), d(-10))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDivRound(t *testing.T) {
	assert.True(t, DivRound(d(4_000_000), d(0), 6).IsZero())
	assert.Equal(t, "0.666667", DivRound(d(2), d(3), 6).String())
	assert.Equal(t, "3", DivRound(d(5), d(2), 0).String())
	assert.Equal(t, "-3", DivRound(d(-5), d(2), 0).String())
}

func TestScale(t *testing.T) {
	// 8000 * 9091 / 10000 = 7272.8
	got, diff := Scale(8000, 9091, 10000)
	assert.Equal(t, Bps(7273), got)
	assert.Equal(t, int64(2000), diff) // rounded up by 0.2

	// 2000 * 9091 / 10000 = 1818.2
	got, diff = Scale(2000, 9091, 10000)
	assert.Equal(t, Bps(1818), got)
	assert.Equal(t, int64(-2000), diff)

	// exact half goes up
	got, diff = Scale(1, 5000, 10000)
	assert.Equal(t, Bps(1), got)
	assert.Equal(t, int64(5000), diff)

	got, diff = Scale(1234, 10000, 10000)
	assert.Equal(t, Bps(1234), got)
	assert.Zero(t, diff)

	got, _ = Scale(1234, 1, 0)
	assert.Zero(t, got)
}

func TestSplitBps(t *testing.T) {
	parts, err := SplitBps(2000, []decimal.Decimal{d(600_000), d(400_000)})
	require.NoError(t, err)
	assert.Equal(t, []Bps{1200, 800}, parts)

	// 1000 / 3 -> 333.33 each; one leftover goes to the first
	parts, err = SplitBps(1000, []decimal.Decimal{d(1), d(1), d(1)})
	require.NoError(t, err)
	assert.Equal(t, []Bps{334, 333, 333}, parts)

	// largest remainder wins over position
	parts, err = SplitBps(10, []decimal.Decimal{d(1), d(2)})
	require.NoError(t, err)
	assert.Equal(t, []Bps{3, 7}, parts)

	parts, err = SplitBps(5, []decimal.Decimal{d(0), d(0)})
	require.NoError(t, err)
	assert.Equal(t, []Bps{3, 2}, parts)

	_, err = SplitBps(5, []decimal.Decimal{d(-1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBpsHelpers(t *testing.T) {
	assert.True(t, Bps(0).Valid())
	assert.True(t, Full.Valid())
	assert.False(t, Bps(-1).Valid())
	assert.False(t, Bps(10001).Valid())

	assert.Equal(t, "20.00", Bps(2000).Percent())
	assert.Equal(t, "9.09", Bps(909).Percent())
	assert.Equal(t, "0.2", Bps(2000).Decimal().String())
}

func TestSplitShares(t *testing.T) {
	parts, err := Split(2_000_001, []decimal.Decimal{d(1), d(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{1_000_001, 1_000_000}, parts)

	parts, err = Split(0, []decimal.Decimal{d(3), d(7)})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, parts)

	_, err = Split(-1, []decimal.Decimal{d(1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
