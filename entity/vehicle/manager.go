package vehicle

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/pool"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

// Manager 车辆管理器
// 功能：持有车辆对象池与在场车辆集合，负责生成、回收与逐步更新
type Manager struct {
	ctx entity.ITaskContext

	pool   *pool.Pool[*Agent]
	agents *container.IncrementalArray[*Agent] // 在场车辆，下一步PrepareNode时生效
	nextID int32
}

// NewManager 创建车辆管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:    ctx,
		agents: container.NewIncrementalArray[*Agent](),
	}
}

// Init 按对象池配置预分配车辆
// 参数：requests-对象池请求，每个标签一类车辆
func (m *Manager) Init(requests []config.PoolRequest) {
	attr := m.ctx.RuntimeConfig().V
	kinds := lo.Map(requests, func(r config.PoolRequest, _ int) pool.Kind[*Agent] {
		return pool.Kind[*Agent]{
			Tag:        r.Tag,
			Amount:     r.Amount,
			Expandable: r.Expandable,
			New: func() *Agent {
				m.nextID++
				return newAgent(m.ctx, m, m.nextID, r.Tag, attr)
			},
			OnSpawn: (*Agent).onSpawn,
		}
	})
	m.pool = pool.New(kinds...)
}

// Pool 车辆对象池
func (m *Manager) Pool() *pool.Pool[*Agent] {
	return m.pool
}

// Spawn 从对象池取出车辆并分配路径
// 参数：tag-车辆类别，path-路点路径，origin-起点位置，heading-起点朝向
// 返回：在场车辆；池耗尽返回ErrResourceExhausted；路径为空或引用了不存在的路段返回ErrConfiguration，车辆原样归还
func (m *Manager) Spawn(tag string, path entity.Path, origin geometry.Point, heading float64) (entity.IVehicle, error) {
	a, err := m.pool.Acquire(tag)
	if err != nil {
		return nil, err
	}
	if err := m.checkPath(path); err != nil {
		err = fmt.Errorf("vehicle %d: %w", a.id, err)
		log.Error(err)
		if releaseErr := m.pool.Release(a); releaseErr != nil {
			log.Errorf("return unused vehicle %d: %v", a.id, releaseErr)
		}
		return nil, err
	}
	a.start(path, origin, heading)
	m.agents.Add(a)
	return a, nil
}

func (m *Manager) checkPath(path entity.Path) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: path is empty", entity.ErrConfiguration)
	}
	for i, wp := range path {
		if _, err := m.ctx.SegmentManager().GetOrError(wp.Point.Segment); err != nil {
			return fmt.Errorf("%w: waypoint %d: %v", entity.ErrConfiguration, i, err)
		}
	}
	return nil
}

// release 车辆离场
// 功能：完成路径时上报完成数与怠速时间，离开路段并归还对象池
// 参数：completed-是否完成了路径（仿真结束时的回收不计入）
func (m *Manager) release(a *Agent, completed bool) {
	if !a.alive {
		return
	}
	if completed {
		recorder := m.ctx.Junction()
		recorder.VehicleFinishedPath()
		recorder.AddIdlingTime(a.idleTime)
	}
	a.leaveSegment()
	a.alive = false
	a.idling = false
	a.braking = false
	a.prepare()
	m.agents.Remove(a)
	if err := m.pool.Release(a); err != nil {
		log.Errorf("release vehicle %d: %v", a.id, err)
	}
}

// ReleaseAll 回收所有在场车辆，不计入完成数
func (m *Manager) ReleaseAll() {
	m.agents.Prepare()
	for _, a := range append([]*Agent(nil), m.agents.Data()...) {
		m.release(a, false)
	}
	m.agents.Prepare()
}

// Len 在场车辆数（已生效的部分）
func (m *Manager) Len() int {
	return m.agents.Len()
}

// Agents 在场车辆
func (m *Manager) Agents() []*Agent {
	return m.agents.Data()
}

// PrepareNode 准备阶段：应用上一步的生成与离场
func (m *Manager) PrepareNode() {
	m.agents.Prepare()
}

// Prepare 准备阶段：保存所有车辆快照
func (m *Manager) Prepare() {
	for _, a := range m.agents.Data() {
		a.prepare()
	}
}

// Update 更新阶段
func (m *Manager) Update(dt float64) {
	for _, a := range m.agents.Data() {
		if a.alive {
			a.update(dt)
		}
	}
}

// probe 前向探测
// 功能：从车头沿朝向发出射线，找到最近的其他车辆
// 参数：self-发出探测的车辆，maxDist-探测距离
// 返回：到前车车尾的距离，是否探测到
// 算法说明：只使用其他车辆的快照；横向偏移不超过对方半车宽的车辆才会被射线命中
func (m *Manager) probe(self *Agent, maxDist float64) (float64, bool) {
	sin, cos := math.Sincos(self.body.Heading())
	p := self.body.Position()
	sensor := geometry.Point{X: p.X + cos*self.attr.Length/2, Y: p.Y + sin*self.attr.Length/2}
	best := mathutil.INF
	for _, o := range m.agents.Data() {
		if o == self || !o.alive {
			continue
		}
		dx, dy := o.snapshot.position.X-sensor.X, o.snapshot.position.Y-sensor.Y
		along := dx*cos + dy*sin
		lateral := math.Abs(dx*sin - dy*cos)
		if along <= 0 || lateral > o.attr.Width/2 {
			continue
		}
		d := math.Max(0, along-o.attr.Length/2)
		if d <= maxDist && d < best {
			best = d
		}
	}
	return best, best < mathutil.INF
}
