package vehicle

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/physics"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

// agentSnapshot 每步开始时保存的状态，供其他车辆与路段读取
type agentSnapshot struct {
	position geometry.Point
	heading  float64
	speed    float64
	idling   bool
}

// Agent 车辆驾驶员
// 功能：沿路点路径行驶，根据信号灯与前车决定目标速度，输出转向与油门刹车
// 说明：由对象池持有；取出并分配路径后在场，完成路径或仿真结束后归还
type Agent struct {
	container.IncrementalItemBase

	ctx     entity.ITaskContext
	manager *Manager

	id   int32
	tag  string
	attr config.Vehicle
	body *physics.Body

	// 路径
	path          entity.Path
	pathIndex     int
	target        entity.RoadPoint
	waitForSignal bool
	segment       entity.ISegment
	member        *entity.SegmentMember

	// 驾驶状态
	alive       bool
	idling      bool
	braking     bool // 由速度与目标速度推导
	probeHit    bool
	targetSpeed float64
	steer       float64 // 前轮转向角（度）
	accelT      float64 // 油门爬升计时，刹车时清零
	drag        float64
	brakeLight  bool
	idleTime    float64 // 累计怠速时间

	snapshot agentSnapshot
}

func newAgent(ctx entity.ITaskContext, m *Manager, id int32, tag string, attr config.Vehicle) *Agent {
	return &Agent{
		ctx:     ctx,
		manager: m,
		id:      id,
		tag:     tag,
		attr:    attr,
		body:    physics.NewBody(0),
	}
}

// onSpawn 从对象池取出时的初始化
func (a *Agent) onSpawn() {
	a.path = nil
	a.pathIndex = 0
	a.segment = nil
	a.member = nil
	a.alive = false
	a.idling = false
	a.braking = false
	a.probeHit = false
	a.targetSpeed = 0
	a.steer = 0
	a.accelT = 0
	a.drag = 0
	a.brakeLight = false
	a.idleTime = 0
}

// start 放置到起点并开始沿路径行驶
func (a *Agent) start(path entity.Path, origin geometry.Point, heading float64) {
	a.path = path
	a.body.Reset(origin, heading)
	a.alive = true
	a.setTarget(0)
	a.targetSpeed = a.attr.MaxSpeed
	a.prepare()
}

// setTarget 以第i个路点为当前目标，跨入新路段时更新路段成员
func (a *Agent) setTarget(i int) {
	a.pathIndex = i
	wp := a.path[i]
	a.target = wp.Point
	a.waitForSignal = wp.WaitForSignal
	if a.segment != nil && a.segment.ID() == wp.Point.Segment {
		return
	}
	a.leaveSegment()
	a.segment = a.ctx.SegmentManager().Get(wp.Point.Segment)
	a.member = entity.NewSegmentMember(a)
	a.segment.AddVehicle(a.member)
}

func (a *Agent) leaveSegment() {
	if a.segment != nil && a.member != nil {
		a.segment.RemoveVehicle(a.member)
	}
	a.segment = nil
	a.member = nil
}

// prepare 保存快照
func (a *Agent) prepare() {
	a.snapshot = agentSnapshot{
		position: a.body.Position(),
		heading:  a.body.Heading(),
		speed:    a.body.Speed(),
		idling:   a.idling,
	}
}

// update 更新阶段
// 功能：依次执行驾驶决策、路点推进、转向与动力控制
func (a *Agent) update(dt float64) {
	if a.ctx.Clock().Ended {
		a.manager.release(a, false)
		return
	}
	a.updateDriverState(dt)
	if a.updatePathProgress() {
		return
	}
	a.updateEngine(dt)
}

func (a *Agent) ID() int32 {
	return a.id
}

// IsIdling 上一步是否处于怠速等待（快照）
func (a *Agent) IsIdling() bool {
	return a.snapshot.idling
}

func (a *Agent) Alive() bool {
	return a.alive
}

// Position 上一步的位置（快照）
func (a *Agent) Position() geometry.Point {
	return a.snapshot.position
}

func (a *Agent) Tag() string {
	return a.tag
}

func (a *Agent) Speed() float64 {
	return a.body.Speed()
}

func (a *Agent) Heading() float64 {
	return a.body.Heading()
}

func (a *Agent) TargetSpeed() float64 {
	return a.targetSpeed
}

func (a *Agent) Idling() bool {
	return a.idling
}

func (a *Agent) Braking() bool {
	return a.braking
}

// BrakeLight 刹车灯是否点亮
func (a *Agent) BrakeLight() bool {
	return a.brakeLight
}

func (a *Agent) Drag() float64 {
	return a.drag
}

func (a *Agent) Steer() float64 {
	return a.steer
}

func (a *Agent) IdleTime() float64 {
	return a.idleTime
}

func (a *Agent) PathIndex() int {
	return a.pathIndex
}

// Target 当前目标路点
func (a *Agent) Target() entity.RoadPoint {
	return a.target
}

// IsWaitingSignal 当前目标路点是否需要等待信号灯
func (a *Agent) IsWaitingSignal() bool {
	return a.waitForSignal
}

// Segment 当前所在路段
func (a *Agent) Segment() entity.ISegment {
	return a.segment
}

func (a *Agent) String() string {
	return fmt.Sprintf("Vehicle{%d %s wp=%d/%d v=%.2f target=%.2f idling=%v}",
		a.id, a.tag, a.pathIndex, len(a.path), a.body.Speed(), a.targetSpeed, a.idling)
}
