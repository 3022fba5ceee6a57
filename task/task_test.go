package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/task"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
)

func newTask(t *testing.T, cfg config.Config, sc input.Scenario) *task.Context {
	ctx, err := task.NewContextWithScenario("test", cfg, &sc)
	require.NoError(t, err)
	return ctx
}

func stepUntil(ctx *task.Context, t float64) {
	for ctx.Clock().T < t-1e-9 {
		if ctx.Step() {
			return
		}
	}
}

func TestFixedPolicyRun(t *testing.T) {
	cfg := config.Default()
	cfg.Control.SampleMinutes = 1
	ctx := newTask(t, cfg, input.Default())

	r := ctx.Run(context.Background())
	assert.True(t, ctx.Finished())
	assert.Equal(t, "normal", r.Policy)
	// 10s启动等待后每23s放行一个进口道：10, 33, 56
	require.Len(t, r.Openings, 3)
	for i, o := range r.Openings {
		assert.Equal(t, entity.ApproachNames[i], o.Approach)
		assert.InDelta(t, 10+23*float64(i), o.At, 0.021)
	}
	assert.InDelta(t, 60.1/60, r.ElapsedMinutes, 0.001)
	assert.GreaterOrEqual(t, r.ThroughputPerMinute, 0.)

	// 结束时所有车辆都已归还对象池
	assert.Zero(t, ctx.Vehicles().Len())
	assert.Zero(t, ctx.Vehicles().Pool().InUse("cars"))
}

func TestPoolExhaustionSkipsSpawn(t *testing.T) {
	cfg := config.Default()
	cfg.Pools = []config.PoolRequest{{Tag: "cars", Amount: 3}}
	sc := input.Default()
	sc.Spawners = sc.Spawners[:1]
	sc.Spawners[0].Frequency = 30
	ctx := newTask(t, cfg, sc)
	ctx.Init()

	p := ctx.Vehicles().Pool()
	for i := 0; i < 3; i++ {
		_, err := p.Acquire("cars")
		require.NoError(t, err)
	}
	_, err := ctx.VehicleManager().Spawn("cars", sc.Spawners[0].Paths[0], sc.Spawners[0].Origin, sc.Spawners[0].Heading)
	assert.ErrorIs(t, err, entity.ErrResourceExhausted)

	sp := ctx.Spawners().Spawners()[0]
	assert.Equal(t, 2., sp.Interval())
	stepUntil(ctx, 2.05)
	assert.Equal(t, 1, sp.Skipped())
	assert.Zero(t, sp.Spawned())
	assert.Equal(t, 3, p.Size("cars"))
	assert.Zero(t, ctx.Vehicles().Len())
}

func TestSelectPolicy(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	assert.ErrorIs(t, ctx.SelectPolicy("greedy"), config.ErrConfiguration)
	require.NoError(t, ctx.SelectPolicy("Smart"))
	ctx.Init()
	assert.Equal(t, "smart", ctx.Scheduler().Policy())
	assert.True(t, ctx.Scheduler().Adaptive())

	err := ctx.SelectPolicy("normal")
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	assert.Equal(t, "smart", ctx.Scheduler().Policy())
}

func TestPauseFreezesEverything(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	ctx.Init()
	stepUntil(ctx, 5)
	clk := ctx.Clock()
	pending := clk.Pending()
	live := ctx.Vehicles().Len()

	ctx.Pause()
	for i := 0; i < 50; i++ {
		assert.False(t, ctx.Step())
	}
	assert.InDelta(t, 5, clk.T, 1e-9)
	assert.Equal(t, pending, clk.Pending())
	assert.Equal(t, live, ctx.Vehicles().Len())

	ctx.Resume()
	ctx.Step()
	assert.InDelta(t, 5.02, clk.T, 1e-9)
}

func TestEndDrainsAndReports(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	ctx.Init()
	stepUntil(ctx, 2)
	ctx.Pause()
	ctx.End()

	n := 0
	for !ctx.Step() {
		n++
		require.Less(t, n, 20)
	}
	assert.True(t, ctx.Finished())
	assert.InDelta(t, 2.12/60, ctx.Report().ElapsedMinutes, 0.001)
	assert.Empty(t, ctx.Report().Openings)
	// 结束之后继续调用不再推进
	assert.True(t, ctx.Step())
	assert.InDelta(t, 2.12, ctx.Clock().T, 1e-9)
}

func TestCancelledRunStillReports(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	c, cancel := context.WithCancel(context.Background())
	cancel()
	r := ctx.Run(c)
	assert.True(t, ctx.Finished())
	assert.Less(t, r.ElapsedMinutes, 0.01)
}

func TestPostRunsOnNextStep(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	ctx.Init()
	done := make(chan struct{})
	go func() {
		ctx.Post(func(c *task.Context) {
			c.SetSpeed(50)
			c.Pause()
		})
		close(done)
	}()
	<-done
	ctx.Step()
	assert.True(t, ctx.Clock().Paused())
	assert.Equal(t, config.MaxSpeed, ctx.Clock().Speed())
	assert.Zero(t, ctx.Clock().T)
}

func TestSetSampleDuration(t *testing.T) {
	ctx := newTask(t, config.Default(), input.Default())
	assert.ErrorIs(t, ctx.SetSampleDuration(0), config.ErrConfiguration)
	require.NoError(t, ctx.SetSampleDuration(2))
	assert.Equal(t, 120., ctx.Clock().SampleDuration)
}

func TestNewContextRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Control.Speed = 100
	_, err := task.NewContextWithScenario("test", cfg, &input.Scenario{})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestZeroLengthPhasesRejected(t *testing.T) {
	cfg := config.Default()
	cfg.TrafficLight = config.TrafficLight{GreenRange: [2]float64{5, 20}}
	_, err := task.NewContextWithScenario("test", cfg, &input.Scenario{})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestShortPhasesKeepStepping(t *testing.T) {
	cfg := config.Default()
	// 黄灯与绿灯为0，每次放行只靠红灯占用时间
	cfg.TrafficLight = config.TrafficLight{Red: 1, GreenRange: [2]float64{0, 0}}
	ctx := newTask(t, cfg, input.Default())
	ctx.Init()
	for i := 0; i < 250; i++ {
		assert.False(t, ctx.Step())
	}
	assert.InDelta(t, 5, ctx.Clock().T, 1e-9)
	// 1s启动等待后，每次放行约1s红灯加两步零时长阶段
	h := ctx.Scheduler().History()
	require.Len(t, h, 4)
	assert.InDelta(t, 1, h[0].At, 1e-6)
	assert.InDelta(t, 2.04, h[1].At, 1e-6)
}
