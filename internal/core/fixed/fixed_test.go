package fixed

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		bits uint32
	}{
		{"integer", "100", 100 << 16},
		{"half", "0.5", 1 << 15},
		{"smallest step", "0.0000152587890625", 1},
		{"exponent form", "25e1", 250 << 16},
		{"rounds down below half step", "0.000007", 0},
		{"rounds up above half step", "0.000008", 1},
		{"max", "65535.9999847412109375", 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.bits, v.Bits())
		})
	}
}

func TestParseTiesToEven(t *testing.T) {
	// Exactly half a step: 0.5 / 65536.
	v, err := Parse("0.00000762939453125")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v.Bits())

	// One and a half steps rounds to two.
	v, err = Parse("0.00002288818359375")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v.Bits())
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("-1")
	require.ErrorIs(t, err, ErrNegative)

	_, err = Parse("65536")
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Parse("abc")
	require.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "0.5", "123.25", "0.0000152587890625", "65535.9999847412109375"} {
		v := MustParse(s)
		assert.Equal(t, s, v.String())
		back, err := Parse(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestFromDecimalMatchesFromInt(t *testing.T) {
	v, err := FromDecimal(decimal.NewFromInt(42))
	require.NoError(t, err)
	assert.Equal(t, FromInt(42), v)
}

func TestMean(t *testing.T) {
	assert.Equal(t, Zero, Mean(nil))
	assert.Equal(t, FromInt(200), Mean([]U16F16{FromInt(200)}))
	assert.Equal(t, FromInt(250), Mean([]U16F16{FromInt(200), FromInt(300)}))

	// 1 + 2 raw bits: mean 1.5 rounds to even (2).
	assert.Equal(t, U16F16(2), Mean([]U16F16{1, 2}))
	// 0 + 1 raw bits: mean 0.5 rounds to even (0).
	assert.Equal(t, U16F16(0), Mean([]U16F16{0, 1}))
	// 1 + 1 + 2 raw bits: mean 1.33 rounds down.
	assert.Equal(t, U16F16(1), Mean([]U16F16{1, 1, 2}))
	// 1 + 2 + 2 raw bits: mean 1.67 rounds up.
	assert.Equal(t, U16F16(2), Mean([]U16F16{1, 2, 2}))
}

func TestMeanAtMaxDoesNotOverflow(t *testing.T) {
	values := make([]U16F16, 1000)
	for i := range values {
		values[i] = Max
	}
	assert.Equal(t, Max, Mean(values))
}

func TestMeanIsDeterministic(t *testing.T) {
	values := []U16F16{MustParse("0.0123"), MustParse("0.0456"), MustParse("0.0789")}
	first := Mean(values)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Mean(values))
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Price U16F16 `json:"price"`
	}
	out, err := json.Marshal(wrapper{Price: MustParse("250.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"250.5"}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal(out, &in))
	assert.Equal(t, MustParse("250.5"), in.Price)
}
