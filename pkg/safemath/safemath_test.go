package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaturating(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAddU64(math.MaxUint64, 1))
	assert.Equal(t, uint64(3), SaturatingAddU64(1, 2))
	assert.Equal(t, uint64(0), SaturatingSubU64(1, 2))
	assert.Equal(t, uint64(1), SaturatingSubU64(3, 2))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingMulU64(math.MaxUint64, 2))
	assert.Equal(t, uint64(6), SaturatingMulU64(2, 3))
}

func TestChecked(t *testing.T) {
	_, err := CheckedAddU64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedMulU64(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := CheckedAddI32(-5, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), v)

	_, err = CheckedAddI32(math.MaxInt32, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedAddI32(math.MinInt32, -1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedI32(math.MaxInt32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}
