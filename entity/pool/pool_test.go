package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/pool"
)

type car struct {
	id      int
	spawned int
}

func cars(amount int, expandable bool) pool.Kind[*car] {
	next := 0
	return pool.Kind[*car]{
		Tag:        "cars",
		Amount:     amount,
		Expandable: expandable,
		New: func() *car {
			next++
			return &car{id: next}
		},
		OnSpawn: func(c *car) { c.spawned++ },
	}
}

func TestExhaustAfterExactlyK(t *testing.T) {
	p := pool.New(cars(3, false))
	seen := make(map[*car]bool)
	for i := 0; i < 3; i++ {
		c, err := p.Acquire("cars")
		require.NoError(t, err)
		assert.False(t, seen[c], "handle returned twice")
		seen[c] = true
	}
	_, err := p.Acquire("cars")
	assert.ErrorIs(t, err, entity.ErrResourceExhausted)
	assert.Equal(t, 3, p.Size("cars"))
	assert.Equal(t, 3, p.InUse("cars"))
}

func TestReleaseMakesHandleAcquirable(t *testing.T) {
	p := pool.New(cars(2, false))
	a, _ := p.Acquire("cars")
	b, _ := p.Acquire("cars")
	require.NoError(t, p.Release(a))
	c, err := p.Acquire("cars")
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, 2, a.spawned, "on-spawn runs on every acquire")
	assert.Equal(t, 1, b.spawned)
}

func TestFirstFitLeastRecentlyUsed(t *testing.T) {
	p := pool.New(cars(3, false))
	a, _ := p.Acquire("cars")
	b, _ := p.Acquire("cars")
	require.NoError(t, p.Release(a))
	require.NoError(t, p.Release(b))
	// 未使用过的第三个排在最前
	c, _ := p.Acquire("cars")
	assert.Equal(t, 3, c.id)
	d, _ := p.Acquire("cars")
	assert.Same(t, a, d)
}

func TestReleaseErrors(t *testing.T) {
	p := pool.New(cars(1, false))
	a, _ := p.Acquire("cars")
	require.NoError(t, p.Release(a))
	assert.ErrorIs(t, p.Release(a), pool.ErrNotInUse)
	assert.ErrorIs(t, p.Release(&car{}), pool.ErrUnknownHandle)
	assert.Equal(t, 0, p.InUse("cars"))

	_, err := p.Acquire("trucks")
	assert.ErrorIs(t, err, pool.ErrUnknownTag)
}

func TestExpandable(t *testing.T) {
	p := pool.New(cars(2, true))
	for i := 0; i < 2; i++ {
		_, err := p.Acquire("cars")
		require.NoError(t, err)
	}
	c, err := p.Acquire("cars")
	require.NoError(t, err)
	assert.Equal(t, 3, c.id)
	assert.Equal(t, 4, p.Size("cars"))
	assert.Equal(t, 3, p.InUse("cars"))
}

func TestNewPanicsOnBadKind(t *testing.T) {
	assert.Panics(t, func() { pool.New(cars(0, false)) })
	assert.Panics(t, func() { pool.New(cars(1, false), cars(1, false)) })
}
