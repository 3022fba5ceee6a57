package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

// 进口道编号，调度按此顺序扫描
const (
	North int32 = iota
	East
	South
	West

	ApproachCount = 4
)

// ApproachNames 进口道名称
var ApproachNames = [ApproachCount]string{"N", "E", "S", "W"}

// LightState 信号灯状态
type LightState int32

const (
	LightRed LightState = iota
	LightYellow
	LightGreen
)

func (s LightState) String() string {
	switch s {
	case LightRed:
		return "Red"
	case LightYellow:
		return "Yellow"
	case LightGreen:
		return "Green"
	default:
		return fmt.Sprintf("LightState(%d)", int32(s))
	}
}

// Valid 是否为合法状态
func (s LightState) Valid() bool {
	return s == LightRed || s == LightYellow || s == LightGreen
}

// RoadPoint 路点位置
// 说明：Segment是所属路段在路段表中的下标，不持有路段指针
type RoadPoint struct {
	ID       int32          `yaml:"id" bson:"id"`
	Position geometry.Point `yaml:"position" bson:"position"`
	Segment  int32          `yaml:"segment" bson:"segment"`
}

// Waypoint 路径上的一个路点，创建后不可修改
type Waypoint struct {
	Point         RoadPoint `yaml:"point" bson:"point"`
	WaitForSignal bool      `yaml:"wait_for_signal" bson:"wait_for_signal"` // 是否需要等待所属路段的信号灯
}

// Path 有序路点序列
type Path []Waypoint

// entity/light/light.go的依赖倒置
type ILight interface {
	ID() int32
	State() LightState
	SetState(s LightState) error
	IsOpen() bool
	TimeSinceOpened() float64
}

// entity/vehicle/agent.go的依赖倒置，路段只读取车辆快照
type IVehicle interface {
	ID() int32
	IsIdling() bool // 上一步是否处于怠速等待
	Alive() bool
	Position() geometry.Point
}

// SegmentMember 路段成员
// 说明：车辆每次进入路段都新建一个成员，避免同一车辆在两个增量数组中共用下标
type SegmentMember struct {
	container.IncrementalItemBase
	Vehicle IVehicle
}

// NewSegmentMember 创建路段成员
func NewSegmentMember(v IVehicle) *SegmentMember {
	return &SegmentMember{Vehicle: v}
}

// entity/segment/segment.go的依赖倒置
type ISegment interface {
	ID() int32
	Name() string
	Light() ILight    // 出口路段为nil
	SignalOpen() bool // 出口路段恒为true

	AddVehicle(m *SegmentMember)
	RemoveVehicle(m *SegmentMember)
	Vehicles() []*SegmentMember

	IdlingCount() int
	Capacity() int
	Priority() float64
	TotalVehicleCount() int
}

// 车辆完成路径后上报的统计接口
type IMetricsRecorder interface {
	VehicleFinishedPath()
	AddIdlingTime(t float64)
}
