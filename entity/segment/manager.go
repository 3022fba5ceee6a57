package segment

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/light"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
)

// Manager 路段管理器
// 功能：以下标为键的路段表，路点通过下标引用所属路段
type Manager struct {
	segments   []*Segment
	approaches []entity.ISegment // N,E,S,W四个进口道
	lights     []*light.Light
}

// NewManager 创建路段管理器
func NewManager() *Manager {
	return &Manager{
		segments:   make([]*Segment, 0),
		approaches: make([]entity.ISegment, 0),
		lights:     make([]*light.Light, 0),
	}
}

// Init 初始化所有路段及信号灯
// 功能：按描述顺序建立路段表，下标即路段ID
// 参数：specs-路段描述列表
// 说明：前四个路段必须是带信号灯的进口道（N,E,S,W），其余为出口路段，否则panic
func (m *Manager) Init(specs []input.Segment) {
	if err := Validate(specs); err != nil {
		log.Panicf("init segments: %v", err)
	}
	m.segments = lo.Map(specs, func(spec input.Segment, i int) *Segment {
		var l *light.Light
		if spec.Signal {
			l = light.New(int32(i), spec.Name)
			m.lights = append(m.lights, l)
		}
		return newSegment(int32(i), spec.Name, l, spec.Capacity)
	})
	m.approaches = lo.Map(m.segments[:entity.ApproachCount], func(s *Segment, _ int) entity.ISegment {
		return s
	})
	log.Infof("init %d segments (%d approaches)", len(m.segments), len(m.approaches))
}

// Validate 检查路段描述
func Validate(specs []input.Segment) error {
	if len(specs) < entity.ApproachCount {
		return fmt.Errorf("%w: need at least %d segments, got %d", entity.ErrConfiguration, entity.ApproachCount, len(specs))
	}
	for i, spec := range specs {
		if approach := i < entity.ApproachCount; spec.Signal != approach {
			return fmt.Errorf("%w: segment %d (%s): signal=%v, want the first %d segments signalled and the rest not",
				entity.ErrConfiguration, i, spec.Name, spec.Signal, entity.ApproachCount)
		}
		if spec.Capacity < 0 {
			return fmt.Errorf("%w: segment %d (%s): negative capacity %d", entity.ErrConfiguration, i, spec.Name, spec.Capacity)
		}
	}
	return nil
}

// Get 输入路段下标，查找路段，如果不存在则panic
func (m *Manager) Get(id int32) entity.ISegment {
	s, err := m.GetOrError(id)
	if err != nil {
		log.Panic(err)
	}
	return s
}

// GetOrError 输入路段下标，查找路段，如果不存在则返回error
func (m *Manager) GetOrError(id int32) (entity.ISegment, error) {
	if id < 0 || int(id) >= len(m.segments) {
		return nil, fmt.Errorf("no id %d in segment data", id)
	}
	return m.segments[id], nil
}

// Approaches 四个进口道，按N,E,S,W顺序
func (m *Manager) Approaches() []entity.ISegment {
	return m.approaches
}

// Lights 所有信号灯，按进口道顺序
func (m *Manager) Lights() []*light.Light {
	return m.lights
}

// Len 路段数
func (m *Manager) Len() int {
	return len(m.segments)
}

// Prepare 准备阶段
// 功能：应用上一步的成员变化并统计怠速与优先级
func (m *Manager) Prepare(adaptive bool) {
	for _, s := range m.segments {
		s.prepare(adaptive)
	}
}

// Update 更新阶段，推进信号灯计时
func (m *Manager) Update(dt float64) {
	for _, l := range m.lights {
		l.Update(dt)
	}
}
