package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 说明：File优先于MongoDB；两者都为空时使用内置的十字路口场景
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 场景名（MongoDB中按name字段查找）
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定模拟器所有输入数据的配置项
type Input struct {
	URI      string    `yaml:"uri,omitempty"`      // MongoDB连接字符串
	Scenario InputPath `yaml:"scenario,omitempty"` // 路口场景（路段、路点、生成器）
}

// Output 仿真结果输出配置
// 说明：URI为空时只输出日志
type Output struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串
	DB  string `yaml:"db,omitempty"`  // 数据库名
	Col string `yaml:"col,omitempty"` // 集合名
}

func (o Output) GetDb() string {
	return o.DB
}

func (o Output) GetColl() string {
	return o.Col
}

// ControlStep 指定模拟器时间间隔的配置项
type ControlStep struct {
	Interval float64 `yaml:"interval"` // 每步的仿真时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step          ControlStep `yaml:"step"`
	Policy        string      `yaml:"policy"`             // 信控策略：normal|smart
	SampleMinutes int         `yaml:"sample_minutes"`     // 采样时长（分钟），到时结束仿真
	Speed         float64     `yaml:"speed"`              // 仿真倍速[1,20]
	Realtime      bool        `yaml:"realtime,omitempty"` // 是否按墙钟时间节拍运行
	Seed          uint64      `yaml:"seed,omitempty"`     // 随机种子
}

// TrafficLight 信号灯时长配置（秒）
type TrafficLight struct {
	Green      float64    `yaml:"green"`       // 固定周期绿灯时长
	Yellow     float64    `yaml:"yellow"`      // 黄灯时长
	Red        float64    `yaml:"red"`         // 红灯时长（同时是启动时的等待时长）
	GreenRange [2]float64 `yaml:"green_range"` // 自适应策略绿灯时长范围[min,max]
}

// Vehicle 车辆属性配置
type Vehicle struct {
	MaxSpeed          float64 `yaml:"max_speed"`          // 最大速度（米/秒）
	TurnSpeed         float64 `yaml:"turn_speed"`         // 转弯速度（米/秒）
	MaxAcceleration   float64 `yaml:"max_acceleration"`   // 最大加速度（米/秒²）
	BrakeTorque       float64 `yaml:"brake_torque"`       // 刹车扭矩（千单位）
	WaypointThreshold float64 `yaml:"waypoint_threshold"` // 普通路点到达判定距离（米）
	AccelerationTime  float64 `yaml:"acceleration_time"`  // 油门爬升曲线时长（秒）
	Length            float64 `yaml:"length"`             // 车长（米）
	Width             float64 `yaml:"width"`              // 车宽（米）
}

// PoolRequest 对象池预分配请求
type PoolRequest struct {
	Tag        string `yaml:"tag"`
	Amount     int    `yaml:"amount"`
	Expandable bool   `yaml:"expandable,omitempty"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input        Input         `yaml:"input,omitempty"`  // 输入
	Output       Output        `yaml:"output,omitempty"` // 输出
	Control      Control       `yaml:"control"`          // 模拟过程控制
	TrafficLight TrafficLight  `yaml:"traffic_light"`    // 信控时长
	Vehicle      Vehicle       `yaml:"vehicle"`          // 车辆属性
	Pools        []PoolRequest `yaml:"pools"`            // 对象池
}
