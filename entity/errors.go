package entity

import (
	"errors"

	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

// 仿真中可恢复的错误类型，均只记录日志，不中断仿真循环
var (
	// ErrConfiguration 配置错误（如生成车辆时路径为空）
	ErrConfiguration = config.ErrConfiguration
	// ErrResourceExhausted 对象池中某类实体全部在用
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrInvariantViolation 不变量被破坏（如未知的信号灯状态），属于程序缺陷
	ErrInvariantViolation = errors.New("invariant violation")
)
