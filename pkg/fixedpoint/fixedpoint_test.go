package fixedpoint

import (
	"math"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint64
		want    uint64
		wantErr error
	}{
		{name: "simple", a: 1000, b: 50, c: 100, want: 500},
		{name: "floor rounding", a: 10, b: 1, c: 3, want: 3},
		{name: "zero numerator", a: 0, b: 12345, c: 678, want: 0},
		{name: "full ratio", a: 1000, b: 100, c: 100, want: 1000},
		{name: "intermediate exceeds 64 bits", a: math.MaxUint64, b: 1 << 32, c: 1 << 33, want: math.MaxUint64 / 2},
		{name: "quotient overflow", a: math.MaxUint64, b: 2, c: 1, wantErr: ErrOverflow},
		{name: "division by zero", a: 1, b: 1, c: 0, wantErr: ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDiv(tt.a, tt.b, tt.c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulDivNeverRoundsUp(t *testing.T) {
	// floor(a*b/c) * c <= a*b must hold for every representable case
	cases := [][3]uint64{
		{1000, 33, 100},
		{7, 3, 11},
		{1, 1, math.MaxUint64},
		{math.MaxUint64, 1, 3},
	}
	for _, c := range cases {
		q, err := MulDiv(c[0], c[1], c[2])
		require.NoError(t, err)
		hiQ, loQ := bits.Mul64(q, c[2])
		hiP, loP := bits.Mul64(c[0], c[1])
		assert.True(t, hiQ < hiP || (hiQ == hiP && loQ <= loP),
			"MulDiv(%d,%d,%d) rounded up", c[0], c[1], c[2])
	}
}

func TestCheckedAdd(t *testing.T) {
	got, err := CheckedAdd(40, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err = CheckedAdd(math.MaxUint64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)
}

func TestCheckedSub(t *testing.T) {
	got, err := CheckedSub(42, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), got)

	_, err = CheckedSub(1, 2)
	assert.ErrorIs(t, err, ErrUnderflow)

	got, err = CheckedSub(7, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint64(5), Clamp(3, 5, 10))
	assert.Equal(t, uint64(10), Clamp(15, 5, 10))
	assert.Equal(t, uint64(7), Clamp(7, 5, 10))
}
