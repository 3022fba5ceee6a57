package light_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/light"
)

func TestInitialRedAndAccumulation(t *testing.T) {
	l := light.New(0, "N")
	assert.Equal(t, entity.LightRed, l.State())
	assert.False(t, l.IsOpen())
	last := 0.
	for i := 0; i < 10; i++ {
		l.Update(0.5)
		assert.GreaterOrEqual(t, l.TimeSinceOpened(), last)
		last = l.TimeSinceOpened()
	}
	assert.Equal(t, 5., l.TimeSinceOpened())
}

func TestGreenResetsAndYellowHolds(t *testing.T) {
	l := light.New(0, "N")
	l.Update(7)
	require.NoError(t, l.SetState(entity.LightYellow))
	l.Update(3)
	assert.Equal(t, 7., l.TimeSinceOpened(), "only accumulates while red")
	require.NoError(t, l.SetState(entity.LightGreen))
	assert.True(t, l.IsOpen())
	assert.Equal(t, 0., l.TimeSinceOpened())
	l.Update(10)
	assert.Equal(t, 0., l.TimeSinceOpened())
	require.NoError(t, l.SetState(entity.LightRed))
	l.Update(1)
	assert.Equal(t, 1., l.TimeSinceOpened())
}

func TestSetStateAlwaysRunsHooks(t *testing.T) {
	l := light.New(1, "E")
	var seen []entity.LightState
	l.OnChange(func(l *light.Light) { seen = append(seen, l.State()) })
	require.NoError(t, l.SetState(entity.LightRed))
	require.NoError(t, l.SetState(entity.LightRed))
	require.NoError(t, l.SetState(entity.LightGreen))
	assert.Equal(t, []entity.LightState{entity.LightRed, entity.LightRed, entity.LightGreen}, seen)
}

func TestUnknownStateLeavesLightUnchanged(t *testing.T) {
	l := light.New(2, "S")
	require.NoError(t, l.SetState(entity.LightYellow))
	err := l.SetState(entity.LightState(7))
	assert.ErrorIs(t, err, entity.ErrInvariantViolation)
	assert.Equal(t, entity.LightYellow, l.State())
}
