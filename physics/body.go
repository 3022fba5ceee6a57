// 最小化的车辆运动学模型，只用于在没有物理引擎时驱动车辆
package physics

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

const (
	// 驱动扭矩到加速度的换算，四个车轮合计1900单位扭矩对应1m/s²
	MotorAccelPerTorque = 1. / 1900
	// 刹车扭矩到减速度的换算，默认刹车（4×3000）约为8m/s²
	BrakeDecelPerTorque = 1. / 1500
	// 默认轴距（米）
	DefaultWheelBase = 2.6
)

// 车轮下标
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight
)

// Wheel 单个车轮的控制量
type Wheel struct {
	Steer float64 // 转向角（度），正值向右
	Motor float64 // 驱动扭矩
	Brake float64 // 刹车扭矩
}

// Actuation 一步的全部控制量
type Actuation struct {
	Wheels [4]Wheel
	Drag   float64 // 线性阻尼系数（1/秒）
}

// Body 车辆刚体
// 功能：自行车模型，前轮转向，不倒车
type Body struct {
	position  geometry.Point
	heading   float64 // 航向角（弧度），0为+X方向，逆时针为正
	speed     float64
	wheelBase float64
}

// NewBody 创建刚体
func NewBody(wheelBase float64) *Body {
	if wheelBase <= 0 {
		wheelBase = DefaultWheelBase
	}
	return &Body{wheelBase: wheelBase}
}

// Reset 放置到指定位姿并静止
func (b *Body) Reset(position geometry.Point, heading float64) {
	b.position = position
	b.heading = heading
	b.speed = 0
}

func (b *Body) Position() geometry.Point {
	return b.position
}

func (b *Body) Heading() float64 {
	return b.heading
}

func (b *Body) Speed() float64 {
	return b.speed
}

// Apply 施加控制量并积分一步
// 算法说明：
// 1. 驱动扭矩与刹车扭矩分别换算为加减速度，阻尼按速度线性衰减
// 2. 刹车与阻尼最多把速度减到0
// 3. 前轮平均转向角决定横摆角速度，正转向角使航向顺时针转动
// 4. 按新的航向与速度推进位置
func (b *Body) Apply(a Actuation, dt float64) {
	if dt <= 0 {
		return
	}
	motor := lo.SumBy(a.Wheels[:], func(w Wheel) float64 { return w.Motor })
	brake := lo.SumBy(a.Wheels[:], func(w Wheel) float64 { return w.Brake })

	v := b.speed + motor*MotorAccelPerTorque*dt
	decel := brake*BrakeDecelPerTorque + a.Drag*v
	v = math.Max(0, v-decel*dt)

	steer := (a.Wheels[FrontLeft].Steer + a.Wheels[FrontRight].Steer) / 2 * math.Pi / 180
	b.heading -= v / b.wheelBase * math.Tan(steer) * dt
	b.heading = math.Remainder(b.heading, 2*math.Pi)

	b.speed = v
	b.position.X += v * math.Cos(b.heading) * dt
	b.position.Y += v * math.Sin(b.heading) * dt
}

// ToLocal 将世界坐标转换到车身坐标系
// 返回：x-右侧为正，y-前方为正
func (b *Body) ToLocal(p geometry.Point) (x, y float64) {
	dx, dy := p.X-b.position.X, p.Y-b.position.Y
	sin, cos := math.Sincos(b.heading)
	// 右方向为(sin h, -cos h)，前方向为(cos h, sin h)
	return dx*sin - dy*cos, dx*cos + dy*sin
}
