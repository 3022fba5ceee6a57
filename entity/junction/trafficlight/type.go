// 单路口信号调度策略与黄-绿-红放行过程
package trafficlight

import (
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
)

var log = logrus.WithField("module", "trafficlight")

// IPolicy 调度策略
// 说明：approaches按N,E,S,W顺序传入，返回的下标也基于该顺序
type IPolicy interface {
	Name() string
	// Ready 首个周期是否可以开始，不可以时调度器等待其成立
	Ready(approaches []entity.ISegment) bool
	// Choose 选择下一个放行的进口道与绿灯时长
	Choose(approaches []entity.ISegment) (index int, openTime float64, ok bool)
}
