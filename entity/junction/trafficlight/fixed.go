package trafficlight

import (
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

// FixedPolicy 固定周期策略
// 功能：按N,E,S,W轮流放行，每次绿灯时长相同
type FixedPolicy struct {
	green float64
	next  int
}

// NewFixedPolicy 创建固定周期策略
func NewFixedPolicy(tl config.TrafficLight) *FixedPolicy {
	return &FixedPolicy{green: tl.Green}
}

func (p *FixedPolicy) Name() string {
	return string(config.PolicyNormal)
}

func (p *FixedPolicy) Ready([]entity.ISegment) bool {
	return true
}

func (p *FixedPolicy) Choose(approaches []entity.ISegment) (int, float64, bool) {
	if len(approaches) == 0 {
		return 0, 0, false
	}
	i := p.next % len(approaches)
	p.next = i + 1
	return i, p.green, true
}
