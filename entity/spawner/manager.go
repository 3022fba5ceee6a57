package spawner

import (
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/randengine"
)

// Manager 生成点管理器
type Manager struct {
	ctx      entity.ITaskContext
	spawners []*Spawner
}

// NewManager 创建生成点管理器
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{ctx: ctx, spawners: make([]*Spawner, 0)}
}

// Init 初始化所有生成点
// 参数：specs-生成点描述，tag-对象池标签，seed-随机种子（每个生成点使用seed+下标）
// 说明：描述非法时panic
func (m *Manager) Init(specs []input.Spawner, tag string, seed uint64) {
	m.spawners = make([]*Spawner, 0, len(specs))
	for i, spec := range specs {
		s, err := New(m.ctx, spec, tag, randengine.New(seed+uint64(i)))
		if err != nil {
			log.Panicf("init spawner: %v", err)
		}
		m.spawners = append(m.spawners, s)
	}
	log.Infof("init %d spawners", len(m.spawners))
}

// Start 启动所有生成点
func (m *Manager) Start() {
	for _, s := range m.spawners {
		s.Start()
	}
}

// Spawners 所有生成点
func (m *Manager) Spawners() []*Spawner {
	return m.spawners
}
