package trafficlight

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/crossway-sim/clock"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
)

var (
	ErrProtocolInFlight = errors.New("trafficlight: previous opening has not finished")
)

// Protocol 单个进口道的放行过程
// 功能：黄灯 -> 保持黄灯时长 -> 绿灯 -> 保持绿灯时长 -> 红灯 -> 保持红灯时长 -> 通知完成
// 说明：同一时刻只允许一个过程在进行；仿真结束后在下一个检查点停止，不再通知完成
type Protocol struct {
	clk      *clock.Clock
	yellow   float64
	red      float64
	inFlight bool
}

// NewProtocol 创建放行过程
func NewProtocol(clk *clock.Clock, yellow, red float64) *Protocol {
	return &Protocol{clk: clk, yellow: yellow, red: red}
}

// InFlight 是否有过程正在进行
func (p *Protocol) InFlight() bool {
	return p.inFlight
}

// Run 开始一次放行
// 参数：l-进口道信号灯，openTime-绿灯时长，done-完成回调
// 返回：已有过程在进行时返回ErrProtocolInFlight；进口道没有信号灯时返回ErrInvariantViolation
func (p *Protocol) Run(l entity.ILight, openTime float64, done func()) error {
	if l == nil {
		return fmt.Errorf("%w: approach has no signal light", entity.ErrInvariantViolation)
	}
	if p.inFlight {
		return ErrProtocolInFlight
	}
	p.inFlight = true
	p.set(l, entity.LightYellow)
	p.clk.After(p.yellow, func() {
		if p.stopped() {
			return
		}
		p.set(l, entity.LightGreen)
		p.clk.After(openTime, func() {
			if p.stopped() {
				return
			}
			p.set(l, entity.LightRed)
			p.clk.After(p.red, func() {
				if p.stopped() {
					return
				}
				p.inFlight = false
				done()
			})
		})
	})
	return nil
}

func (p *Protocol) stopped() bool {
	if p.clk.Ended {
		p.inFlight = false
		return true
	}
	return false
}

func (p *Protocol) set(l entity.ILight, s entity.LightState) {
	// 出错时信号灯保持原状态，已在灯内记录日志
	_ = l.SetState(s)
}
