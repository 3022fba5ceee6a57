package segment

import (
	"fmt"

	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/light"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

// DefaultCapacity 未指定容量时的路段容量
const DefaultCapacity = 9

// Segment 路段
// 功能：记录当前位于路段上的车辆，统计怠速车辆数并计算调度优先级
// 说明：成员变化先写入缓冲，下一步prepare时生效，因此同一步内的统计总是基于上一步的成员
type Segment struct {
	id   int32
	name string

	light    *light.Light // 出口路段为nil
	vehicles *container.IncrementalArray[*entity.SegmentMember]
	capacity int

	idlingCount       int
	priority          float64
	totalVehicleCount int // 累计进入过该路段的车辆数
}

func newSegment(id int32, name string, l *light.Light, capacity int) *Segment {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return &Segment{
		id:       id,
		name:     name,
		light:    l,
		vehicles: container.NewIncrementalArray[*entity.SegmentMember](),
		capacity: capacity,
	}
}

func (s *Segment) ID() int32 {
	return s.id
}

func (s *Segment) Name() string {
	return s.name
}

// Light 路段的信号灯，出口路段返回nil
func (s *Segment) Light() entity.ILight {
	if s.light == nil {
		return nil
	}
	return s.light
}

// SignalOpen 信号灯是否放行，没有信号灯的路段总是放行
func (s *Segment) SignalOpen() bool {
	return s.light == nil || s.light.IsOpen()
}

// AddVehicle 车辆进入路段（下一步生效）
func (s *Segment) AddVehicle(m *entity.SegmentMember) {
	s.vehicles.Add(m)
	s.totalVehicleCount++
}

// RemoveVehicle 车辆离开路段（下一步生效）
func (s *Segment) RemoveVehicle(m *entity.SegmentMember) {
	s.vehicles.Remove(m)
}

// Vehicles 已生效的成员列表
func (s *Segment) Vehicles() []*entity.SegmentMember {
	return s.vehicles.Data()
}

func (s *Segment) IdlingCount() int {
	return s.idlingCount
}

func (s *Segment) Capacity() int {
	return s.capacity
}

// Priority 调度优先级 = 怠速车辆数 × 距上次绿灯的时长
// 说明：只在自适应策略下更新，否则保持上一次的值
func (s *Segment) Priority() float64 {
	return s.priority
}

func (s *Segment) TotalVehicleCount() int {
	return s.totalVehicleCount
}

// prepare 准备阶段
// 功能：应用成员变化，重新统计怠速车辆数，自适应策略下重新计算优先级
// 参数：adaptive-是否为自适应策略
func (s *Segment) prepare(adaptive bool) {
	s.vehicles.Prepare()
	s.idlingCount = 0
	for _, m := range s.vehicles.Data() {
		if m.Vehicle.IsIdling() {
			s.idlingCount++
		}
	}
	if adaptive && s.light != nil {
		s.priority = float64(s.idlingCount) * s.light.TimeSinceOpened()
	}
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment{%d %s vehicles=%d idling=%d priority=%.1f}",
		s.id, s.name, s.vehicles.Len(), s.idlingCount, s.priority)
}
