package clock

import (
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

// 触发时间比较的容差，避免浮点累加误差导致晚一步触发
const eps = 1e-9

// Timer 时间线上的一个等待
type Timer struct {
	fn      func()
	pred    func() bool // 非nil时表示条件等待
	stopped bool
	fired   bool
}

// Stop 取消等待
// 返回：取消前是否仍在等待
func (t *Timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Waiting 是否仍在等待
func (t *Timer) Waiting() bool {
	return !t.stopped && !t.fired
}

// timeline 协作任务时间线
// 功能：每个任务都拆成"等待 + 后续动作"，由时钟在每步末尾统一推进
// 算法说明：
// 1. 定时等待按(触发时间, 注册顺序)存放在最小堆中，到期即执行
// 2. 条件等待按注册顺序轮询，成立即执行并移除
// 3. 推进期间新注册的条件等待从下一步开始检查
// 4. 推进期间新注册且已到期的定时等待（时长为0）推迟到下一步执行，保证每步有限
type timeline struct {
	timers *container.PriorityQueue[*Timer]
	conds  []*Timer

	now      float64
	firing   bool
	deferred []*Timer
}

func newTimeline() *timeline {
	return &timeline{
		timers: container.NewPriorityQueue[*Timer](),
		conds:  make([]*Timer, 0),
	}
}

func (tl *timeline) after(deadline float64, fn func()) *Timer {
	t := &Timer{fn: fn}
	if tl.firing && deadline <= tl.now+eps {
		tl.deferred = append(tl.deferred, t)
		return t
	}
	tl.timers.HeapPush(t, deadline)
	return t
}

func (tl *timeline) when(pred func() bool, fn func()) *Timer {
	t := &Timer{fn: fn, pred: pred}
	tl.conds = append(tl.conds, t)
	return t
}

func (tl *timeline) pending() int {
	n := 0
	for _, t := range tl.conds {
		if t.Waiting() {
			n++
		}
	}
	// 堆中已取消的等待会在出堆时丢弃，这里只能近似计数
	return n + tl.timers.Len() + len(tl.deferred)
}

func (tl *timeline) fireDue(now float64) {
	for tl.timers.Len() > 0 {
		if _, deadline := tl.timers.First(); deadline > now+eps {
			return
		}
		t, _ := tl.timers.HeapPop()
		if t.stopped {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func (tl *timeline) advance(now float64) {
	tl.now = now
	tl.firing = true
	defer func() {
		tl.firing = false
		for _, t := range tl.deferred {
			tl.timers.HeapPush(t, now)
		}
		tl.deferred = tl.deferred[:0]
	}()
	tl.fireDue(now)
	conds := tl.conds
	tl.conds = make([]*Timer, 0)
	keep := make([]*Timer, 0, len(conds))
	for _, t := range conds {
		if t.stopped {
			continue
		}
		if !t.pred() {
			keep = append(keep, t)
			continue
		}
		t.fired = true
		t.fn()
		tl.fireDue(now)
	}
	// 本步新注册的条件排在原有条件之后
	tl.conds = append(keep, tl.conds...)
}
