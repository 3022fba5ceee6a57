package trafficlight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/clock"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/light"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

type fakeSegment struct {
	name     string
	idling   int
	capacity int
	light    *light.Light
}

func (s *fakeSegment) ID() int32            { return s.light.ID() }
func (s *fakeSegment) Name() string         { return s.name }
func (s *fakeSegment) Light() entity.ILight { return s.light }
func (s *fakeSegment) SignalOpen() bool     { return s.light.IsOpen() }
func (s *fakeSegment) AddVehicle(*entity.SegmentMember) {}
func (s *fakeSegment) RemoveVehicle(*entity.SegmentMember) {}
func (s *fakeSegment) Vehicles() []*entity.SegmentMember { return nil }
func (s *fakeSegment) IdlingCount() int                  { return s.idling }
func (s *fakeSegment) Capacity() int                     { return s.capacity }
func (s *fakeSegment) TotalVehicleCount() int            { return 0 }
func (s *fakeSegment) Priority() float64 {
	return float64(s.idling) * s.light.TimeSinceOpened()
}

// approaches 四个进口道，waited为各自的红灯时长
func approaches(idling [4]int, waited [4]float64) []entity.ISegment {
	res := make([]entity.ISegment, 4)
	for i := range res {
		l := light.New(int32(i), entity.ApproachNames[i])
		l.Update(waited[i])
		res[i] = &fakeSegment{name: entity.ApproachNames[i], idling: idling[i], capacity: 8, light: l}
	}
	return res
}

func defaultTL() config.TrafficLight {
	return config.Default().TrafficLight
}

func TestFixedRoundRobin(t *testing.T) {
	p := trafficlight.NewFixedPolicy(defaultTL())
	as := approaches([4]int{9, 9, 9, 9}, [4]float64{100, 100, 100, 100})
	assert.True(t, p.Ready(as))
	for cycle := 0; cycle < 3; cycle++ {
		for want := 0; want < 4; want++ {
			i, open, ok := p.Choose(as)
			require.True(t, ok)
			assert.Equal(t, want, i)
			assert.Equal(t, 10., open)
		}
	}
}

func TestAdaptiveHighestPriority(t *testing.T) {
	p := trafficlight.NewAdaptivePolicy(defaultTL())
	// A(北): 4辆怠速，等待50s；B(东): 1辆，等待5s
	as := approaches([4]int{4, 1, 0, 0}, [4]float64{50, 5, 0, 0})
	assert.True(t, p.Ready(as))
	i, open, ok := p.Choose(as)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, 5+(20-5)*0.5, open)
}

func TestAdaptiveStarvationGuardWins(t *testing.T) {
	p := trafficlight.NewAdaptivePolicy(defaultTL())
	// 南进口只有1辆车，但已经等了3×23s，优先于优先级更高的北进口
	as := approaches([4]int{4, 0, 1, 1}, [4]float64{50, 0, 69, 70})
	require.Greater(t, as[0].Priority(), as[2].Priority())
	i, open, ok := p.Choose(as)
	require.True(t, ok)
	assert.Equal(t, 2, i, "first starving approach in N,E,S,W order")
	assert.Equal(t, 5+15*(1./8), open)

	// 没有怠速车辆时不触发
	as = approaches([4]int{1, 0, 0, 0}, [4]float64{1, 0, 500, 0})
	i, _, _ = p.Choose(as)
	assert.Equal(t, 0, i)
}

func TestAdaptiveTiesAndBounds(t *testing.T) {
	p := trafficlight.NewAdaptivePolicy(defaultTL())
	as := approaches([4]int{}, [4]float64{})
	assert.False(t, p.Ready(as))
	i, open, _ := p.Choose(as)
	assert.Equal(t, 0, i)
	assert.Equal(t, 5., open)

	as = approaches([4]int{0, 2, 2, 0}, [4]float64{0, 10, 10, 0})
	i, _, _ = p.Choose(as)
	assert.Equal(t, 1, i)

	s := as[1].(*fakeSegment)
	s.idling = 20
	assert.Equal(t, 20., p.OpenTime(s), "ratio clamps at 1")
	s.capacity = 0
	assert.Equal(t, 20., p.OpenTime(s), "invalid capacity uses ratio 1")
}

func TestProtocolPhases(t *testing.T) {
	c := config.Default().Control
	clk := clock.New(c)
	p := trafficlight.NewProtocol(clk, 3, 10)
	l := light.New(0, "N")
	done := 0
	require.NoError(t, p.Run(l, 12.5, func() { done++ }))
	assert.Equal(t, entity.LightYellow, l.State())
	assert.ErrorIs(t, p.Run(l, 1, func() {}), trafficlight.ErrProtocolInFlight)

	states := map[int]entity.LightState{}
	for clk.T < 30 {
		clk.Step()
		l.Update(clk.DT)
		clk.Fire()
		states[int(clk.T*100+0.5)] = l.State()
	}
	assert.Equal(t, entity.LightYellow, states[290])
	assert.Equal(t, entity.LightGreen, states[310])
	assert.Equal(t, entity.LightGreen, states[1540])
	assert.Equal(t, entity.LightRed, states[1560])
	assert.Equal(t, 1, done)
	assert.False(t, p.InFlight())
}

func TestProtocolStopsWhenEnded(t *testing.T) {
	clk := clock.New(config.Default().Control)
	p := trafficlight.NewProtocol(clk, 3, 10)
	l := light.New(0, "N")
	done := 0
	require.NoError(t, p.Run(l, 10, func() { done++ }))
	clk.End()
	for i := 0; i < 2000; i++ {
		clk.Step()
		clk.Fire()
	}
	assert.Equal(t, 0, done)
	assert.Equal(t, entity.LightYellow, l.State())
	assert.False(t, p.InFlight())
}

func TestZeroLengthProtocolAdvancesOnePhasePerStep(t *testing.T) {
	clk := clock.New(config.Default().Control)
	p := trafficlight.NewProtocol(clk, 0, 0)
	l := light.New(0, "N")
	done := 0
	var open func()
	open = func() {
		done++
		require.NoError(t, p.Run(l, 0, open))
	}
	clk.After(clk.DT, func() { require.NoError(t, p.Run(l, 0, open)) })

	clk.Step()
	clk.Fire()
	assert.Equal(t, entity.LightYellow, l.State())
	clk.Step()
	clk.Fire()
	assert.Equal(t, entity.LightGreen, l.State())
	clk.Step()
	clk.Fire()
	assert.Equal(t, entity.LightRed, l.State())
	assert.Equal(t, 0, done)
	clk.Step()
	clk.Fire()
	assert.Equal(t, 1, done)
	assert.Equal(t, entity.LightYellow, l.State())
}
