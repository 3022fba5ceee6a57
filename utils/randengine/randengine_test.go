package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/randengine"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := randengine.New(42)
	b := randengine.New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(7), b.Pick(7))
	}
}

func TestPickRange(t *testing.T) {
	e := randengine.New(1)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		v := e.Pick(3)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
	assert.Panics(t, func() { e.Pick(0) })
}

func TestDiscreteDistributionSkipsZeroWeights(t *testing.T) {
	e := randengine.New(7)
	for i := 0; i < 200; i++ {
		v := e.DiscreteDistribution([]float64{0, 1, 0})
		assert.Equal(t, int32(1), v)
	}
	assert.Panics(t, func() { e.DiscreteDistribution([]float64{0, 0}) })
}
