// 自适应策略：每个周期选取优先级（怠速车辆数 × 距上次绿灯的时长）最大的进口道
// 绿灯时长按进口道的占用比例在[最小绿灯, 最大绿灯]之间插值
package trafficlight

import (
	"flag"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

var (
	starvationFactor = flag.Float64("tl.starvation_factor", 3, "自适应策略防饿死阈值（固定周期绿+黄+红的倍数）")
)

// AdaptivePolicy 按优先级自适应的策略
// 说明：优先级公式与3倍周期的防饿死阈值是经验设定，阈值可通过flag调整
type AdaptivePolicy struct {
	greenRange [2]float64
	nominal    float64 // 固定周期下一个进口道的完整时长（绿+黄+红）
}

// NewAdaptivePolicy 创建自适应策略
func NewAdaptivePolicy(tl config.TrafficLight) *AdaptivePolicy {
	return &AdaptivePolicy{
		greenRange: tl.GreenRange,
		nominal:    tl.Green + tl.Yellow + tl.Red,
	}
}

func (p *AdaptivePolicy) Name() string {
	return string(config.PolicySmart)
}

// Ready 至少一个进口道优先级不为0
func (p *AdaptivePolicy) Ready(approaches []entity.ISegment) bool {
	return lo.SomeBy(approaches, func(s entity.ISegment) bool { return s.Priority() != 0 })
}

// Choose 选择放行的进口道
// 算法说明：
// 1. 防饿死：按扫描顺序找到第一个有怠速车辆且红灯时长达到阈值的进口道，直接选中
// 2. 否则选择优先级最大的进口道，相同时取扫描顺序靠前的
// 3. 绿灯时长 = lerp(最小绿灯, 最大绿灯, clamp(怠速车辆数/容量, 0, 1))
func (p *AdaptivePolicy) Choose(approaches []entity.ISegment) (int, float64, bool) {
	if len(approaches) == 0 {
		return 0, 0, false
	}
	threshold := *starvationFactor * p.nominal
	chosen := -1
	for i, s := range approaches {
		if s.IdlingCount() > 0 && s.Light() != nil && s.Light().TimeSinceOpened() >= threshold {
			chosen = i
			log.Debugf("starvation guard opens %s (waited %.1fs)", s.Name(), s.Light().TimeSinceOpened())
			break
		}
	}
	if chosen < 0 {
		chosen = 0
		for i, s := range approaches {
			if s.Priority() > approaches[chosen].Priority() {
				chosen = i
			}
		}
	}
	return chosen, p.OpenTime(approaches[chosen]), true
}

// OpenTime 按占用比例计算绿灯时长
func (p *AdaptivePolicy) OpenTime(s entity.ISegment) float64 {
	ratio := 1.
	if s.Capacity() > 0 {
		ratio = lo.Clamp(float64(s.IdlingCount())/float64(s.Capacity()), 0, 1)
	} else {
		log.Error(fmt.Errorf("%w: segment %s has capacity %d", entity.ErrInvariantViolation, s.Name(), s.Capacity()))
	}
	return p.greenRange[0] + (p.greenRange[1]-p.greenRange[0])*ratio
}
