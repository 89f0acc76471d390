// Package fixed implements the unsigned 16.16 fixed-point number used for every
// on-chain price. Arithmetic on the aggregation path is integer only so that
// independent executions produce bit-identical results.
package fixed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FracBits is the number of fractional bits.
const FracBits = 16

const one = uint64(1) << FracBits

var (
	// ErrNegative is returned when converting a value below zero.
	ErrNegative = errors.New("fixed: negative value")
	// ErrOverflow is returned when a value does not fit in 16 integer bits.
	ErrOverflow = errors.New("fixed: value out of range")

	scale = decimal.NewFromInt(int64(one))
)

// U16F16 is a non-negative number with 16 integer and 16 fractional bits,
// stored as its raw bit pattern.
type U16F16 uint32

// Zero is the genesis value of every price slot.
const Zero U16F16 = 0

// Max is the largest representable value (65535.9999847...).
const Max U16F16 = 1<<32 - 1

// FromBits wraps a raw bit pattern.
func FromBits(bits uint32) U16F16 { return U16F16(bits) }

// FromInt returns the fixed-point value of an integer.
func FromInt(v uint16) U16F16 { return U16F16(uint32(v) << FracBits) }

// FromDecimal converts d to 16 fractional bits, rounding to nearest with ties
// to even.
func FromDecimal(d decimal.Decimal) (U16F16, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegative, d.String())
	}
	raw := d.Mul(scale).RoundBank(0)
	if raw.GreaterThan(decimal.NewFromInt(int64(Max))) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return U16F16(raw.IntPart()), nil
}

// Parse converts a decimal literal such as "0.0123" or "1e-2".
func Parse(s string) (U16F16, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("fixed: parse %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) U16F16 {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromFloat64 converts a float. Only used at the edges (CLI, tests); the
// aggregation path never touches floats.
func FromFloat64(f float64) (U16F16, error) {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Bits returns the raw bit pattern.
func (v U16F16) Bits() uint32 { return uint32(v) }

// Decimal returns the exact decimal value. Every 16.16 value has a finite
// decimal expansion of at most 16 places.
func (v U16F16) Decimal() decimal.Decimal {
	return decimal.New(int64(v), 0).DivRound(scale, FracBits)
}

// Float64 is an approximation for display and metrics.
func (v U16F16) Float64() float64 {
	return float64(v) / float64(one)
}

func (v U16F16) String() string {
	return v.Decimal().String()
}

// MarshalText renders the value as a decimal string.
func (v U16F16) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a decimal string.
func (v *U16F16) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Sum adds values in a 64-bit accumulator. It cannot overflow for fewer than
// 2^32 values.
func Sum(values []U16F16) uint64 {
	var sum uint64
	for _, v := range values {
		sum += uint64(v)
	}
	return sum
}

// Mean returns the arithmetic mean of values rounded half to even. The mean
// of an empty slice is zero.
func Mean(values []U16F16) U16F16 {
	n := uint64(len(values))
	if n == 0 {
		return Zero
	}
	sum := Sum(values)
	q, r := sum/n, sum%n
	switch {
	case 2*r > n:
		q++
	case 2*r == n && q&1 == 1:
		q++
	}
	return U16F16(q)
}
