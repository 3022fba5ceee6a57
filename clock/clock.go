package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

// Clock 仿真时钟
// 功能：管理仿真时间推进、暂停与倍速，并驱动挂在时间线上的协作任务
// 说明：仿真时间按固定步长DT推进；倍速只影响实时模式下的墙钟节拍，不改变DT，
// 暂停时Step返回0，所有等待中的任务原地挂起，恢复后从中断处继续
type Clock struct {
	DT           float64 // 每步仿真时间间隔（秒）
	T            float64 // 当前仿真时间（秒）
	InternalStep int32   // 当前步数

	SampleDuration float64 // 采样时长（秒），到时由监控任务结束仿真
	Ended          bool    // 仿真结束标志

	speed    float64
	paused   bool
	timeline *timeline
}

// New 根据配置创建新的时钟实例
// 参数：c-控制配置，包含步长、倍速与采样时长
func New(c config.Control) *Clock {
	clk := &Clock{
		DT:             c.Step.Interval,
		SampleDuration: float64(c.SampleMinutes) * 60,
		speed:          config.ClampSpeed(c.Speed),
		timeline:       newTimeline(),
	}
	clk.Init()
	return clk
}

// Init 重置时钟状态
// 说明：同时清空时间线上所有等待中的任务
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
	c.Ended = false
	c.paused = false
	c.timeline = newTimeline()
}

// Step 推进一步
// 返回：本步有效的时间间隔，暂停时为0且时间不前进
func (c *Clock) Step() float64 {
	if c.paused {
		return 0
	}
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
	return c.DT
}

// Fire 触发所有到期的等待
// 说明：在每步的实体更新之后调用
func (c *Clock) Fire() {
	if c.paused {
		return
	}
	c.timeline.advance(c.T)
}

// After 在d秒仿真时间后执行fn
func (c *Clock) After(d float64, fn func()) *Timer {
	return c.timeline.after(c.T+d, fn)
}

// When 等待pred成立后执行fn
// 说明：条件在每步Fire时检查，注册当步不检查
func (c *Clock) When(pred func() bool, fn func()) *Timer {
	return c.timeline.when(pred, fn)
}

// Pending 时间线上等待中的任务数
func (c *Clock) Pending() int {
	return c.timeline.pending()
}

// Pause 暂停（时间源倍率置0）
func (c *Clock) Pause() {
	c.paused = true
}

// Resume 恢复
func (c *Clock) Resume() {
	c.paused = false
}

// Paused 是否暂停
func (c *Clock) Paused() bool {
	return c.paused
}

// SetSpeed 设置倍速，限制在[1,20]
func (c *Clock) SetSpeed(x float64) {
	c.speed = config.ClampSpeed(x)
}

// Speed 当前倍速
func (c *Clock) Speed() float64 {
	return c.speed
}

// SetSampleDuration 设置采样时长（分钟）
func (c *Clock) SetSampleDuration(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: sample duration must be > 0 minutes, got %d", config.ErrConfiguration, minutes)
	}
	c.SampleDuration = float64(minutes) * 60
	return nil
}

// End 设置结束标志
func (c *Clock) End() {
	c.Ended = true
}

// ElapsedMinutes 已仿真的分钟数
func (c *Clock) ElapsedMinutes() float64 {
	return c.T / 60
}

// String 获取时钟的字符串表示（HH:MM:SS）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
