package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidScale(t *testing.T) {
	tests := []struct {
		name  string
		scale int32
	}{
		{"negative scale", -1},
		{"scale over max", MaxScale + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromString("1.00", tt.scale)
			assert.Error(t, err)
		})
	}
}

func TestNewFromString_RejectsNonNumeric(t *testing.T) {
	_, err := NewFromString("not-a-number", 2)
	assert.Error(t, err)
}

func TestAdd_WidensScale(t *testing.T) {
	a, err := NewFromString("1.5", 1)
	require.NoError(t, err)
	b, err := NewFromString("2.25", 2)
	require.NoError(t, err)

	sum, err := a.Add(b, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Scale())
	assert.Equal(t, "3.75", sum.String())
}

func TestMul_DefaultsToLeftScale(t *testing.T) {
	a, err := NewFromString("10.00", 2)
	require.NoError(t, err)
	b, err := NewFromString("0.00002", 5)
	require.NoError(t, err)

	product, err := a.Mul(b, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, product.Scale())
	assert.Equal(t, "0.00", product.String())
}

func TestDiv_RejectsDivideByZero(t *testing.T) {
	a, err := NewFromString("1", 2)
	require.NoError(t, err)
	zero, err := Zero(2)
	require.NoError(t, err)

	_, err = a.Div(zero, -1)
	assert.Error(t, err)
}

func TestDiv_RoundsHalfUp(t *testing.T) {
	a, err := NewFromString("1", 0)
	require.NoError(t, err)
	b, err := NewFromString("3", 0)
	require.NoError(t, err)

	q, err := a.Div(b, 2)
	require.NoError(t, err)
	assert.Equal(t, "0.33", q.String())
}

func TestRescale_RoundsHalfUp(t *testing.T) {
	a, err := NewFromString("1.005", 3)
	require.NoError(t, err)

	rounded, err := a.Rescale(2)
	require.NoError(t, err)
	assert.Equal(t, "1.01", rounded.String())
}
