package task

import (
	"context"
	"flag"
	"time"

	"github.com/tsinghua-fib-lab/crossway-sim/entity/junction"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 500, "心跳日志间隔步数")
	pausedPoll        = flag.Duration("task.paused_poll", 20*time.Millisecond, "暂停时主循环的轮询间隔")
)

// Step 推进一步
// 功能：一个固定步长的仿真步骤
// 算法说明：
// 1. 执行其他goroutine提交的控制指令
// 2. 推进时钟，暂停时直接返回
// 3. 准备阶段：应用上一步的车辆生成与离场，保存车辆快照，
// 路段按上一步的成员统计怠速车辆与优先级
// 4. 更新阶段：推进信号灯计时，更新所有车辆
// 5. 触发时间线上到期的等待（信号过程、生成计时、结束监控）
//
// 返回：主循环是否已停止
func (ctx *Context) Step() bool {
	ctx.drain()
	if ctx.finished {
		return true
	}
	dt := ctx.clock.Step()
	if dt == 0 {
		return false
	}
	ctx.prepare()
	ctx.update(dt)
	ctx.clock.Fire()
	return ctx.finished
}

func (ctx *Context) drain() {
	for {
		select {
		case fn := <-ctx.commands:
			fn(ctx)
		default:
			return
		}
	}
}

// prepare 准备阶段
func (ctx *Context) prepare() {
	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(%s) vehicles=%d",
			ctx.clock.InternalStep, ctx.clock, ctx.vehicleManager.Len(),
		)
	}
	ctx.vehicleManager.PrepareNode()
	ctx.vehicleManager.Prepare()
	ctx.segmentManager.Prepare(ctx.junction.Adaptive())
}

// update 更新阶段
func (ctx *Context) update(dt float64) {
	ctx.segmentManager.Update(dt)
	ctx.vehicleManager.Update(dt)
}

// Run 运行
// 功能：初始化并循环推进，直到监控任务汇总结果
// 参数：c-取消时结束仿真（仍会汇总结果）
// 返回：最终结果
// 说明：实时模式下每步按DT/倍速的墙钟时间节拍，否则尽快推进
func (ctx *Context) Run(c context.Context) junction.Report {
	if !ctx.initialized {
		ctx.Init()
	}
	cancelled := false
	for !ctx.Step() {
		if !cancelled && c.Err() != nil {
			cancelled = true
			log.Infof("[%s] cancelled: %v", ctx.clock, context.Cause(c))
			ctx.End()
		}
		switch {
		case ctx.clock.Paused():
			time.Sleep(*pausedPoll)
		case ctx.runtimeConfig.C.Realtime:
			time.Sleep(time.Duration(ctx.clock.DT / ctx.clock.Speed() * float64(time.Second)))
		}
	}
	log.Infof("engine complete at %s (step %d)", ctx.clock, ctx.clock.InternalStep)
	return ctx.report
}
