package task

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/clock"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/junction"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/segment"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/spawner"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/output"
)

var log = logrus.WithField("module", "task")

// 仿真结束后，留给在途过程收尾的时间（秒）
const finishGrace = 0.1

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：组合根，按依赖顺序创建时钟、路段、车辆、路口调度器与生成点，并持有控制接口
type Context struct {
	// 任务名
	job string

	// 时钟
	clock *clock.Clock
	// 运行时配置
	runtimeConfig *config.RuntimeConfig
	// 路口场景
	scenario *input.Scenario

	// 路段管理器
	segmentManager *segment.Manager
	// 车辆管理器
	vehicleManager *vehicle.Manager
	// 路口调度器
	junction *junction.Junction
	// 生成点管理器
	spawnerManager *spawner.Manager

	// 结果输出（可为nil）
	sink *output.Sink
	// 跨goroutine的控制指令，在下一步开始时执行
	commands chan func(*Context)

	initialized bool
	finished    bool
	report      junction.Report
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置、加载路口场景并创建所有组件
// 参数：job-任务名，c-配置对象
// 返回：上下文；配置非法时返回ErrConfiguration
// 说明：场景加载失败时panic
func NewContext(job string, c config.Config) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := newContext(job, rc, input.Init(rc.All.Input))
	ctx.sink = output.New(rc.All.Output)
	return ctx, nil
}

// NewContextWithScenario 使用给定场景创建上下文，不连接任何数据库
func NewContextWithScenario(job string, c config.Config, sc *input.Scenario) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return newContext(job, rc, sc), nil
}

func newContext(job string, rc *config.RuntimeConfig, sc *input.Scenario) *Context {
	ctx := &Context{
		job:           job,
		runtimeConfig: rc,
		scenario:      sc,
		commands:      make(chan func(*Context), 16),
	}
	ctx.clock = clock.New(rc.C)

	// 新建各类模拟对象
	ctx.segmentManager = segment.NewManager()
	ctx.vehicleManager = vehicle.NewManager(ctx)
	ctx.junction = junction.New(ctx)
	ctx.spawnerManager = spawner.NewManager(ctx)
	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) SegmentManager() entity.ISegmentManager {
	return ctx.segmentManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) Junction() entity.IJunction {
	return ctx.junction
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Scenario() *input.Scenario {
	return ctx.scenario
}

// Vehicles 车辆管理器（具体类型，供展示层读取车辆状态）
func (ctx *Context) Vehicles() *vehicle.Manager {
	return ctx.vehicleManager
}

// Segments 路段管理器（具体类型，供展示层读取信号灯与优先级）
func (ctx *Context) Segments() *segment.Manager {
	return ctx.segmentManager
}

// Scheduler 路口调度器（具体类型，供展示层注册结果回调）
func (ctx *Context) Scheduler() *junction.Junction {
	return ctx.junction
}

func (ctx *Context) Spawners() *spawner.Manager {
	return ctx.spawnerManager
}

// Init 初始化并启动所有协作任务
// 算法说明：
// 1. 重置时钟（清空时间线）
// 2. 按场景建立路段表，按对象池配置预分配车辆
// 3. 按选定策略初始化路口调度器，建立生成点
// 4. 启动调度循环、生成循环与结束监控
func (ctx *Context) Init() {
	if ctx.initialized {
		log.Warn("task already initialized")
		return
	}
	ctx.clock.Init()
	rc := ctx.runtimeConfig
	sc := ctx.scenario
	log.Infof("job %s: scenario %q, policy %s, sample %.0fs, dt %vs",
		ctx.job, sc.Name, rc.Policy, ctx.clock.SampleDuration, ctx.clock.DT)

	ctx.segmentManager.Init(sc.Segments)
	ctx.vehicleManager.Init(rc.All.Pools)
	ctx.junction.Init(rc.Policy, ctx.segmentManager.Approaches())
	ctx.spawnerManager.Init(sc.Spawners, rc.All.Pools[0].Tag, rc.C.Seed)

	ctx.junction.Start()
	ctx.spawnerManager.Start()
	ctx.monitor()
	ctx.initialized = true
}

// monitor 结束监控
// 功能：采样时长到达或收到结束指令后，等待一个收尾间隔再汇总结果并停止主循环
func (ctx *Context) monitor() {
	clk := ctx.clock
	clk.When(func() bool {
		return clk.Ended || clk.T >= clk.SampleDuration
	}, func() {
		if !clk.Ended {
			log.Infof("[%s] sample duration reached", clk)
		}
		clk.End()
		clk.After(finishGrace, ctx.finish)
	})
}

// finish 汇总结果、回收车辆并写出结果
func (ctx *Context) finish() {
	ctx.report = ctx.junction.Finish()
	ctx.vehicleManager.ReleaseAll()
	ctx.finished = true

	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	record := output.Record{Job: ctx.job, Scenario: ctx.scenario.Name, Report: ctx.report}
	if err := ctx.sink.Write(c, record); err != nil {
		log.Errorf("write results: %v", err)
	}
}

// Close 释放外部资源
func (ctx *Context) Close() {
	ctx.sink.Close()
}

// Finished 主循环是否已停止
func (ctx *Context) Finished() bool {
	return ctx.finished
}

// Report 最终结果，Finished之前为零值
func (ctx *Context) Report() junction.Report {
	return ctx.report
}

// Pause 暂停，所有等待原地挂起
func (ctx *Context) Pause() {
	ctx.clock.Pause()
	log.Infof("[%s] paused", ctx.clock)
}

// Resume 恢复
func (ctx *Context) Resume() {
	ctx.clock.Resume()
	log.Infof("[%s] resumed", ctx.clock)
}

// SetSpeed 设置倍速，限制在[1,20]
func (ctx *Context) SetSpeed(x float64) {
	ctx.clock.SetSpeed(x)
	ctx.runtimeConfig.C.Speed = ctx.clock.Speed()
}

// SelectPolicy 选择信控策略
// 说明：只能在Init之前调用
func (ctx *Context) SelectPolicy(mode string) error {
	if ctx.initialized {
		return fmt.Errorf("%w: policy must be selected before the simulation starts", entity.ErrConfiguration)
	}
	p, err := config.ParsePolicy(mode)
	if err != nil {
		return err
	}
	ctx.runtimeConfig.Policy = p
	ctx.runtimeConfig.C.Policy = string(p)
	return nil
}

// SetSampleDuration 设置采样时长（分钟）
func (ctx *Context) SetSampleDuration(minutes int) error {
	if err := ctx.clock.SetSampleDuration(minutes); err != nil {
		return err
	}
	ctx.runtimeConfig.C.SampleMinutes = minutes
	return nil
}

// End 结束仿真，监控任务在下一步汇总结果
// 说明：暂停中结束时自动恢复，使在途过程可以收尾
func (ctx *Context) End() {
	ctx.clock.End()
	ctx.clock.Resume()
}

// Post 从其他goroutine提交控制指令，在下一步开始时于主循环中执行
func (ctx *Context) Post(fn func(*Context)) {
	ctx.commands <- fn
}
