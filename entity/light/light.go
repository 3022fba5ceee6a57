package light

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
)

var log = logrus.WithField("module", "light")

// Light 单个进口道的信号灯
// 功能：维护红/黄/绿状态与"距上次绿灯的时长"
// 说明：只由调度器改变状态，自身不持有定时器；初始为红灯
type Light struct {
	id   int32
	name string

	state           entity.LightState
	timeSinceOpened float64 // 绿灯时清零，只在红灯期间累加

	hooks []func(*Light) // 状态设置回调（供展示层使用）
}

// New 创建信号灯
func New(id int32, name string) *Light {
	return &Light{
		id:    id,
		name:  name,
		state: entity.LightRed,
		hooks: make([]func(*Light), 0),
	}
}

func (l *Light) ID() int32 {
	return l.id
}

func (l *Light) Name() string {
	return l.name
}

func (l *Light) State() entity.LightState {
	return l.state
}

// IsOpen 是否放行（绿灯）
func (l *Light) IsOpen() bool {
	return l.state == entity.LightGreen
}

func (l *Light) TimeSinceOpened() float64 {
	return l.timeSinceOpened
}

// OnChange 注册状态设置回调
// 说明：每次SetState都会调用，即使状态没有变化
func (l *Light) OnChange(fn func(*Light)) {
	l.hooks = append(l.hooks, fn)
}

// SetState 设置信号灯状态
// 功能：幂等地设置状态并重新执行所有回调
// 参数：s-目标状态
// 返回：未知状态时返回ErrInvariantViolation，状态保持不变
func (l *Light) SetState(s entity.LightState) error {
	if !s.Valid() {
		err := fmt.Errorf("%w: light %s: unknown state %v", entity.ErrInvariantViolation, l.name, s)
		log.Error(err)
		return err
	}
	if s == entity.LightGreen {
		l.timeSinceOpened = 0
	}
	l.state = s
	for _, hook := range l.hooks {
		hook(l)
	}
	return nil
}

// Update 更新阶段，红灯期间累计等待时长
func (l *Light) Update(dt float64) {
	if l.state == entity.LightRed {
		l.timeSinceOpened += dt
	}
}

func (l *Light) String() string {
	return fmt.Sprintf("Light{%s %v waited=%.2f}", l.name, l.state, l.timeSinceOpened)
}
