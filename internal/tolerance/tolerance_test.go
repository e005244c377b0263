package tolerance

import (
	"testing"

	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s, ResidualScale)
	require.NoError(t, err)
	return d
}

func TestResidual(t *testing.T) {
	actual := mustDec(t, "110")
	desired := mustDec(t, "100")
	r, err := Residual(actual, desired)
	require.NoError(t, err)
	assert.Equal(t, "0.100000000000000000", r.String())
}

func TestResidual_ZeroDesired(t *testing.T) {
	_, err := Residual(mustDec(t, "1"), mustDec(t, "0"))
	assert.Error(t, err)
}

func TestInWindow(t *testing.T) {
	window := Window{Min: mustDec(t, "-0.01"), Max: mustDec(t, "0.02")}

	cases := []struct {
		name     string
		residual decimal.Decimal
		want     bool
	}{
		{"within", mustDec(t, "0.015"), true},
		{"at lower edge", mustDec(t, "-0.01"), true},
		{"at upper edge", mustDec(t, "0.02"), true},
		{"within epsilon below lower", mustDec(t, "-0.0100005"), true},
		{"beyond upper", mustDec(t, "0.05"), false},
		{"beyond lower", mustDec(t, "-0.05"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, err := InWindow(c.residual, window)
			require.NoError(t, err)
			assert.Equal(t, c.want, ok)
		})
	}
}

func TestEvaluate(t *testing.T) {
	window := Window{Min: mustDec(t, "-0.01"), Max: mustDec(t, "0.02")}
	residual, ok, err := Evaluate(mustDec(t, "101"), mustDec(t, "100"), window)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0.010000000000000000", residual.String())
}
