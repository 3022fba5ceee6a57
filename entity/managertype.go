package entity

import "git.fiblab.net/general/common/v2/geometry"

// Manager依赖倒置

// entity/segment/manager.go的依赖倒置
type ISegmentManager interface {
	// 输入路段下标，查找路段，如果不存在则panic
	Get(id int32) ISegment
	// 输入路段下标，查找路段，如果不存在则返回error
	GetOrError(id int32) (ISegment, error)
	// 四个进口道（N,E,S,W）
	Approaches() []ISegment

	Prepare(adaptive bool) // 准备阶段：应用上一步的成员变化，统计怠速车辆与优先级
	Update(dt float64)     // 更新阶段：推进信号灯计时
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 从对象池取出tag类车辆并分配路径
	// 池耗尽返回ErrResourceExhausted，路径为空返回ErrConfiguration（车辆已归还）
	Spawn(tag string, path Path, origin geometry.Point, heading float64) (IVehicle, error)
	// 在场车辆数
	Len() int
	// 仿真结束时回收所有车辆，不计入完成数
	ReleaseAll()

	PrepareNode()      // 准备阶段：在场车辆集合更新
	Prepare()          // 准备阶段：snapshot更新
	Update(dt float64) // 更新阶段
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	IMetricsRecorder
	Policy() string
}
