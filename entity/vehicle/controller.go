package vehicle

import (
	"flag"
	"math"

	"github.com/samber/lo"
)

var (
	idleDistance      = flag.Float64("vehicle.idle_distance", 4.5, "红灯前开始怠速等待的距离")
	signalReach       = flag.Float64("vehicle.signal_reach_distance", 1.8, "信号灯路点的到达判定距离")
	probeIdleRatio    = flag.Float64("vehicle.probe_idle_ratio", .55, "前车距离/探测距离不超过该比例时怠速等待")
	turnAngleDegree   = flag.Float64("vehicle.turn_angle", 15, "转向角超过该值（度）时按转弯速度行驶")
	signalLookAhead   = flag.Float64("vehicle.signal_look_ahead", 25, "最大速度下提前减速的距离")
	probeMinRange     = 2.35
	probeMaxRange     = 10.
	idleSpeedLimit    = 1.  // 目标速度不超过该值时才累计怠速时间
	signalOpenSpeedUp = 1.5 // 绿灯时通过信号灯路点的速度倍率
)

// updateDriverState 驾驶决策
// 功能：决定目标速度与怠速状态
// 算法说明（按优先级）：
// 1. 当前路点需要等信号灯、信号灯未放行且距离不超过怠速距离 -> 怠速，目标速度为0
// 2. 前向探测到其他车辆：距离比例不超过阈值 -> 怠速，否则按转弯速度行驶
// 3. 转向角超过阈值 -> 转弯速度
// 4. 接近信号灯路点（按速度缩放的提前距离）-> 转弯速度，绿灯时乘1.5
// 5. 其余情况 -> 最大速度
// 说明：刹车状态由当前速度是否超过目标速度推导
func (a *Agent) updateDriverState(dt float64) {
	speed := a.body.Speed()
	dist := a.distanceToTarget()
	open := a.segment.SignalOpen()

	a.probeHit = false
	a.idling = false
	if a.waitForSignal && !open && dist <= *idleDistance {
		a.idling = true
		a.targetSpeed = 0
	} else {
		maxDist := lo.Clamp(speed/a.attr.MaxSpeed*10, probeMinRange, probeMaxRange)
		if hit, ok := a.manager.probe(a, maxDist); ok {
			a.probeHit = true
			if hit/maxDist <= *probeIdleRatio {
				a.idling = true
				a.targetSpeed = 0
			} else {
				a.targetSpeed = a.attr.TurnSpeed
			}
		} else if math.Abs(a.steer) > *turnAngleDegree {
			a.targetSpeed = a.attr.TurnSpeed
		} else if a.waitForSignal && dist <= *signalLookAhead*speed/a.attr.MaxSpeed {
			a.targetSpeed = a.attr.TurnSpeed
			if open {
				a.targetSpeed *= signalOpenSpeedUp
			}
		} else {
			a.targetSpeed = a.attr.MaxSpeed
		}
	}

	a.braking = speed > a.targetSpeed
	if a.braking {
		a.accelT = 0
	}
	if a.idling && a.targetSpeed <= idleSpeedLimit {
		a.idleTime += dt
	}
	a.updateBrakeState(speed)
}

// updateBrakeState 根据速度差决定阻尼档位与刹车灯
func (a *Agent) updateBrakeState(speed float64) {
	delta := math.Abs(a.targetSpeed - speed)
	a.drag = 0
	if delta >= 10 && a.braking {
		a.drag = 0.15
	}
	if (delta >= 6.35 || a.waitForSignal) && a.idling {
		a.drag = 2
	}
	if a.idling && a.probeHit {
		a.drag = 3.5
	}
	a.brakeLight = a.braking && delta >= 1
}

// updatePathProgress 路点推进
// 返回：是否已完成路径（车辆已归还对象池）
func (a *Agent) updatePathProgress() bool {
	dist := a.distanceToTarget()
	var reached bool
	if a.waitForSignal {
		reached = dist < *signalReach && !a.idling
	} else {
		reached = dist <= a.attr.WaypointThreshold
	}
	if !reached {
		return false
	}
	if a.pathIndex+1 >= len(a.path) {
		a.manager.release(a, true)
		return true
	}
	a.setTarget(a.pathIndex + 1)
	return false
}

func (a *Agent) distanceToTarget() float64 {
	p := a.body.Position()
	return math.Hypot(a.target.Position.X-p.X, a.target.Position.Y-p.Y)
}
