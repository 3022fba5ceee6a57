package vehicle

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossway-sim/physics"
)

const (
	maxSteerDegree = 40.
	frontMotorGain = 100.
	rearMotorGain  = 850.
	brakeTorqueK   = 1000. // 配置中的刹车扭矩以千为单位
)

// Ramp 油门爬升曲线
// 功能：把[0,1]的进度映射为[0,1]的油门系数，单调不减（smoothstep）
func Ramp(t float64) float64 {
	t = lo.Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// steerTo 计算指向目标的前轮转向角
// 说明：转向角为目标在车身坐标系中的横向分量比例乘以40度，目标与车重合时为0
func (a *Agent) steerTo() float64 {
	x, y := a.body.ToLocal(a.target.Position)
	r := math.Hypot(x, y)
	if r == 0 {
		return 0
	}
	return x / r * maxSteerDegree
}

// updateEngine 转向与动力控制
// 算法说明：
// 1. 油门量为目标速度与当前速度之差，限制在[0, 最大加速度]
// 2. 油门量乘以爬升曲线系数，爬升计时在刹车时清零
// 3. 刹车或怠速时四轮施加刹车扭矩，刹车时前轮不出力
func (a *Agent) updateEngine(dt float64) {
	a.steer = a.steerTo()
	speed := a.body.Speed()

	if !a.braking {
		a.accelT = math.Min(a.accelT+dt, a.attr.AccelerationTime)
	}
	move := lo.Clamp(a.targetSpeed-speed, 0, a.attr.MaxAcceleration)
	move *= Ramp(a.accelT / a.attr.AccelerationTime)

	var act physics.Actuation
	act.Drag = a.drag
	brake := 0.
	if a.braking || a.idling {
		brake = a.attr.BrakeTorque * brakeTorqueK
	}
	front := frontMotorGain * move
	if a.braking {
		front = 0
	}
	act.Wheels[physics.FrontLeft] = physics.Wheel{Steer: a.steer, Motor: front, Brake: brake}
	act.Wheels[physics.FrontRight] = physics.Wheel{Steer: a.steer, Motor: front, Brake: brake}
	act.Wheels[physics.RearLeft] = physics.Wheel{Motor: rearMotorGain * move, Brake: brake}
	act.Wheels[physics.RearRight] = physics.Wheel{Motor: rearMotorGain * move, Brake: brake}
	a.body.Apply(act, dt)
}
