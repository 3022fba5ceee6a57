package spawner

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/randengine"
)

var log = logrus.WithField("module", "spawner")

// DefaultClearance 新车离开生成点多远之后才安排下一次生成
const DefaultClearance = 6.

// Spawner 车辆生成点
// 功能：每隔60/频率秒从对象池取一辆车，随机分配路径放入仿真，
// 等新车离开生成点足够远后再开始下一次计时
type Spawner struct {
	ctx entity.ITaskContext

	name      string
	tag       string
	origin    geometry.Point
	heading   float64
	interval  float64
	clearance float64
	paths     []entity.Path
	weights   []float64
	generator *randengine.Engine

	spawned int
	skipped int
}

// New 创建生成点
// 参数：spec-生成点描述，tag-对象池标签，generator-随机数引擎
// 返回：频率非正、没有路径或权重与路径数量不一致时返回ErrConfiguration
func New(ctx entity.ITaskContext, spec input.Spawner, tag string, generator *randengine.Engine) (*Spawner, error) {
	if spec.Frequency <= 0 {
		return nil, fmt.Errorf("%w: spawner %s: frequency must be > 0, got %v", entity.ErrConfiguration, spec.Name, spec.Frequency)
	}
	if len(spec.Paths) == 0 {
		return nil, fmt.Errorf("%w: spawner %s has no path", entity.ErrConfiguration, spec.Name)
	}
	if len(spec.Weights) != 0 && len(spec.Weights) != len(spec.Paths) {
		return nil, fmt.Errorf("%w: spawner %s: %d weights for %d paths", entity.ErrConfiguration, spec.Name, len(spec.Weights), len(spec.Paths))
	}
	clearance := spec.Clearance
	if clearance == 0 {
		clearance = DefaultClearance
	}
	return &Spawner{
		ctx:       ctx,
		name:      spec.Name,
		tag:       tag,
		origin:    spec.Origin,
		heading:   spec.Heading,
		interval:  60 / spec.Frequency,
		clearance: clearance,
		paths:     spec.Paths,
		weights:   spec.Weights,
		generator: generator,
	}, nil
}

// Start 开始生成循环
func (s *Spawner) Start() {
	s.schedule()
}

func (s *Spawner) Name() string {
	return s.name
}

// Interval 生成间隔（秒）
func (s *Spawner) Interval() float64 {
	return s.interval
}

// Spawned 成功生成的车辆数
func (s *Spawner) Spawned() int {
	return s.spawned
}

// Skipped 因对象池耗尽或路径错误跳过的次数
func (s *Spawner) Skipped() int {
	return s.skipped
}

func (s *Spawner) schedule() {
	if s.ctx.Clock().Ended {
		return
	}
	s.ctx.Clock().After(s.interval, s.spawn)
}

// spawn 一次生成
// 算法说明：
// 1. 取车失败（池耗尽或路径错误）时跳过本次，等待下一个间隔
// 2. 成功时等待新车离开生成点清空距离（或已离场），再安排下一次
func (s *Spawner) spawn() {
	clk := s.ctx.Clock()
	if clk.Ended {
		return
	}
	path := s.pick()
	v, err := s.ctx.VehicleManager().Spawn(s.tag, path, s.origin, s.heading)
	if err != nil {
		s.skipped++
		log.Debugf("[%s] spawner %s skips this interval: %v", clk, s.name, err)
		s.schedule()
		return
	}
	s.spawned++
	clk.When(func() bool {
		if clk.Ended || !v.Alive() {
			return true
		}
		p := v.Position()
		return math.Hypot(p.X-s.origin.X, p.Y-s.origin.Y) >= s.clearance
	}, s.schedule)
}

// pick 选择路径：有权重时按权重，否则均匀选取
func (s *Spawner) pick() entity.Path {
	if len(s.weights) > 0 {
		return s.paths[s.generator.DiscreteDistribution(s.weights)]
	}
	return s.paths[s.generator.Pick(len(s.paths))]
}
