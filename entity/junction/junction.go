package junction

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

// Opening 一次放行记录
type Opening struct {
	Approach string  `bson:"approach" yaml:"approach"`
	At       float64 `bson:"at" yaml:"at"`               // 放行过程开始（黄灯）的仿真时间
	OpenTime float64 `bson:"open_time" yaml:"open_time"` // 绿灯时长
}

// Report 仿真结果
type Report struct {
	Policy              string    `bson:"policy" yaml:"policy"`
	VehiclesPassed      int       `bson:"vehicles_passed" yaml:"vehicles_passed"`
	IdleTimeTotal       float64   `bson:"idle_time_total" yaml:"idle_time_total"`
	IdleTimeAvg         float64   `bson:"idle_time_avg" yaml:"idle_time_avg"`
	ThroughputPerMinute float64   `bson:"throughput_per_minute" yaml:"throughput_per_minute"`
	ElapsedMinutes      float64   `bson:"elapsed_minutes" yaml:"elapsed_minutes"`
	Openings            []Opening `bson:"openings" yaml:"openings"`
}

func (r Report) String() string {
	return fmt.Sprintf("policy=%s passed=%d idle_avg=%.2fs throughput=%.2f/min elapsed=%.2fmin openings=%d",
		r.Policy, r.VehiclesPassed, r.IdleTimeAvg, r.ThroughputPerMinute, r.ElapsedMinutes, len(r.Openings))
}

// Junction 路口信号调度器
// 功能：持有四个进口道，按策略循环选择放行的进口道并执行黄-绿-红过程，汇总仿真指标
type Junction struct {
	ctx entity.ITaskContext

	policy     trafficlight.IPolicy
	protocol   *trafficlight.Protocol
	approaches []entity.ISegment
	started    bool

	vehiclesPassed int
	idleTimeTotal  float64
	history        []Opening
	onResults      []func(Report)
}

// New 创建调度器
func New(ctx entity.ITaskContext) *Junction {
	return &Junction{
		ctx:       ctx,
		history:   make([]Opening, 0),
		onResults: make([]func(Report), 0),
	}
}

// Init 根据策略初始化调度器
// 参数：policy-策略，approaches-四个进口道（N,E,S,W）
func (j *Junction) Init(policy config.Policy, approaches []entity.ISegment) {
	tl := j.ctx.RuntimeConfig().TL
	switch policy {
	case config.PolicySmart:
		j.policy = trafficlight.NewAdaptivePolicy(tl)
	case config.PolicyNormal:
		j.policy = trafficlight.NewFixedPolicy(tl)
	default:
		log.Panicf("unknown policy %q", policy)
	}
	if len(approaches) != entity.ApproachCount {
		log.Panicf("junction needs %d approaches, got %d", entity.ApproachCount, len(approaches))
	}
	j.approaches = approaches
	j.protocol = trafficlight.NewProtocol(j.ctx.Clock(), tl.Yellow, tl.Red)
	j.started = false
}

// Policy 策略名
func (j *Junction) Policy() string {
	return j.policy.Name()
}

// Adaptive 是否为自适应策略（需要每步计算进口道优先级）
func (j *Junction) Adaptive() bool {
	_, ok := j.policy.(*trafficlight.AdaptivePolicy)
	return ok
}

// Start 启动调度循环
// 说明：先等待一个红灯时长；策略尚未就绪（自适应策略下所有优先级为0）时继续等待
func (j *Junction) Start() {
	if j.started {
		log.Warn("junction already started")
		return
	}
	j.started = true
	clk := j.ctx.Clock()
	clk.After(j.ctx.RuntimeConfig().TL.Red, func() {
		if j.policy.Ready(j.approaches) {
			j.cycle()
			return
		}
		clk.When(func() bool {
			return clk.Ended || j.policy.Ready(j.approaches)
		}, j.cycle)
	})
}

// cycle 一个调度周期：选择进口道并执行放行过程，完成后进入下一个周期
func (j *Junction) cycle() {
	clk := j.ctx.Clock()
	if clk.Ended {
		return
	}
	i, openTime, ok := j.policy.Choose(j.approaches)
	if !ok {
		log.Error("policy made no choice, retry next cycle")
		clk.After(clk.DT, j.cycle)
		return
	}
	s := j.approaches[i]
	if err := j.protocol.Run(s.Light(), openTime, j.cycle); err != nil {
		if errors.Is(err, trafficlight.ErrProtocolInFlight) {
			// 在途过程完成时会再次进入调度周期
			log.Errorf("%v: open %s: %v", entity.ErrInvariantViolation, s.Name(), err)
			return
		}
		log.Errorf("open %s: %v, retry next cycle", s.Name(), err)
		clk.After(clk.DT, j.cycle)
		return
	}
	j.history = append(j.history, Opening{Approach: s.Name(), At: clk.T, OpenTime: openTime})
	log.Debugf("[%s] open %s for %.2fs (idling=%d priority=%.1f)", clk, s.Name(), openTime, s.IdlingCount(), s.Priority())
}

// VehicleFinishedPath 车辆完成路径
func (j *Junction) VehicleFinishedPath() {
	j.vehiclesPassed++
}

// AddIdlingTime 累加车辆的怠速时间
func (j *Junction) AddIdlingTime(t float64) {
	j.idleTimeTotal += t
}

// History 放行记录
func (j *Junction) History() []Opening {
	return j.history
}

// OnResults 注册结果回调
func (j *Junction) OnResults(fn func(Report)) {
	j.onResults = append(j.onResults, fn)
}

// Report 计算当前的仿真指标
// 说明：没有车辆完成时平均怠速为0，仿真时长为0时通过率为0
func (j *Junction) Report() Report {
	elapsed := j.ctx.Clock().ElapsedMinutes()
	r := Report{
		Policy:         j.Policy(),
		VehiclesPassed: j.vehiclesPassed,
		IdleTimeTotal:  j.idleTimeTotal,
		ElapsedMinutes: elapsed,
		Openings:       append([]Opening(nil), j.history...),
	}
	if j.vehiclesPassed > 0 {
		r.IdleTimeAvg = j.idleTimeTotal / float64(j.vehiclesPassed)
	}
	if elapsed > 0 {
		r.ThroughputPerMinute = float64(j.vehiclesPassed) / elapsed
	}
	return r
}

// Finish 生成最终结果并通知所有回调
func (j *Junction) Finish() Report {
	r := j.Report()
	log.Infof("results: %v", r)
	for _, fn := range j.onResults {
		fn(r)
	}
	return r
}
