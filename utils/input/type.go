package input

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
)

// Segment 路段描述
// 说明：带信号灯的四个进口道必须按N,E,S,W顺序排在最前
type Segment struct {
	Name     string `yaml:"name" bson:"name"`
	Signal   bool   `yaml:"signal" bson:"signal"`                         // 是否有信号灯（进口道）
	Capacity int    `yaml:"capacity,omitempty" bson:"capacity,omitempty"` // 容量，0表示默认值
}

// Spawner 车辆生成点描述
type Spawner struct {
	Name      string         `yaml:"name" bson:"name"`
	Origin    geometry.Point `yaml:"origin" bson:"origin"`                           // 生成位置
	Heading   float64        `yaml:"heading" bson:"heading"`                         // 生成朝向（弧度，0为+X，逆时针）
	Frequency float64        `yaml:"frequency" bson:"frequency"`                     // 每分钟生成数
	Clearance float64        `yaml:"clearance,omitempty" bson:"clearance,omitempty"` // 清空距离，0表示默认值
	Paths     []entity.Path  `yaml:"paths" bson:"paths"`                             // 可选路径
	Weights   []float64      `yaml:"weights,omitempty" bson:"weights,omitempty"`     // 路径权重，为空时均匀选取
}

// Scenario 路口场景
type Scenario struct {
	Name     string    `yaml:"name" bson:"name"`
	Segments []Segment `yaml:"segments" bson:"segments"`
	Spawners []Spawner `yaml:"spawners" bson:"spawners"`
}
