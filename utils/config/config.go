package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrConfiguration 配置错误（启动时校验失败、路径为空等）
var ErrConfiguration = errors.New("configuration error")

// Policy 信控策略
type Policy string

const (
	PolicyNormal Policy = "normal" // 固定周期
	PolicySmart  Policy = "smart"  // 按优先级自适应
)

const (
	MinSpeed = 1.  // 最小仿真倍速
	MaxSpeed = 20. // 最大仿真倍速
)

// ParsePolicy 解析策略名（大小写不敏感）
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyNormal, PolicySmart:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q (want normal|smart)", ErrConfiguration, s)
	}
}

// ClampSpeed 将倍速限制在[MinSpeed, MaxSpeed]
func ClampSpeed(x float64) float64 {
	return lo.Clamp(x, MinSpeed, MaxSpeed)
}

// RuntimeConfig 运行时配置
// 功能：存储校验并补全默认值之后的配置
type RuntimeConfig struct {
	All    Config       // 全部配置
	C      Control      // 全局控制配置
	Policy Policy       // 解析后的策略
	TL     TrafficLight // 信控时长
	V      Vehicle      // 车辆属性
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：补全默认值、校验取值范围
// 参数：config-原始配置对象
// 返回：运行时配置指针；配置非法时返回ErrConfiguration
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	config = WithDefaults(config)
	if err := Validate(config); err != nil {
		return nil, err
	}
	policy, err := ParsePolicy(config.Control.Policy)
	if err != nil {
		return nil, err
	}
	rc := &RuntimeConfig{
		All:    config,
		C:      config.Control,
		Policy: policy,
		TL:     config.TrafficLight,
		V:      config.Vehicle,
	}
	rc.C.Speed = ClampSpeed(rc.C.Speed)
	return rc, nil
}

// NominalCycle 固定周期一个相位的完整时长（绿+黄+红）
func (rc *RuntimeConfig) NominalCycle() float64 {
	return rc.TL.Green + rc.TL.Yellow + rc.TL.Red
}

// Default 默认配置
// 说明：与内置的十字路口场景配套
func Default() Config {
	return Config{
		Control: Control{
			Step:          ControlStep{Interval: 0.02},
			Policy:        string(PolicyNormal),
			SampleMinutes: 5,
			Speed:         1,
			Seed:          1,
		},
		TrafficLight: TrafficLight{
			Green:      10,
			Yellow:     3,
			Red:        10,
			GreenRange: [2]float64{5, 20},
		},
		Vehicle: Vehicle{
			MaxSpeed:          12,
			TurnSpeed:         5,
			MaxAcceleration:   3,
			BrakeTorque:       3,
			WaypointThreshold: 3,
			AccelerationTime:  1,
			Length:            4.2,
			Width:             1.8,
		},
		Pools: []PoolRequest{{Tag: "cars", Amount: 40}},
	}
}

// WithDefaults 为未设置（零值）的字段填入默认值
func WithDefaults(c Config) Config {
	d := Default()
	if c.Control.Step.Interval == 0 {
		c.Control.Step.Interval = d.Control.Step.Interval
	}
	if c.Control.Policy == "" {
		c.Control.Policy = d.Control.Policy
	}
	if c.Control.SampleMinutes == 0 {
		c.Control.SampleMinutes = d.Control.SampleMinutes
	}
	if c.Control.Speed == 0 {
		c.Control.Speed = d.Control.Speed
	}
	if c.TrafficLight == (TrafficLight{}) {
		c.TrafficLight = d.TrafficLight
	}
	if c.Vehicle == (Vehicle{}) {
		c.Vehicle = d.Vehicle
	}
	if len(c.Pools) == 0 {
		c.Pools = d.Pools
	}
	return c
}

// Validate 检查配置取值范围
func Validate(c Config) error {
	var errs []error
	if c.Control.Step.Interval <= 0 {
		errs = append(errs, fmt.Errorf("control.step.interval must be > 0, got %v", c.Control.Step.Interval))
	}
	if c.Control.SampleMinutes <= 0 {
		errs = append(errs, fmt.Errorf("control.sample_minutes must be > 0, got %v", c.Control.SampleMinutes))
	}
	if c.Control.Speed < MinSpeed || c.Control.Speed > MaxSpeed {
		errs = append(errs, fmt.Errorf("control.speed must be in [%v,%v], got %v", MinSpeed, MaxSpeed, c.Control.Speed))
	}
	tl := c.TrafficLight
	if tl.Green < 0 || tl.Yellow < 0 || tl.Red < 0 {
		errs = append(errs, fmt.Errorf("traffic_light durations must be >= 0, got %+v", tl))
	}
	if tl.Yellow+tl.Red <= 0 {
		errs = append(errs, fmt.Errorf("traffic_light.yellow + traffic_light.red must be > 0, got %+v", tl))
	}
	if tl.GreenRange[0] < 0 || tl.GreenRange[0] > tl.GreenRange[1] {
		errs = append(errs, fmt.Errorf("traffic_light.green_range must satisfy 0 <= min <= max, got %v", tl.GreenRange))
	}
	v := c.Vehicle
	if v.MaxSpeed <= 0 || v.TurnSpeed <= 0 || v.MaxAcceleration <= 0 {
		errs = append(errs, fmt.Errorf("vehicle speeds and acceleration must be > 0, got %+v", v))
	}
	if v.AccelerationTime <= 0 || v.WaypointThreshold <= 0 {
		errs = append(errs, fmt.Errorf("vehicle acceleration_time and waypoint_threshold must be > 0, got %+v", v))
	}
	for _, p := range c.Pools {
		if p.Tag == "" || p.Amount <= 0 {
			errs = append(errs, fmt.Errorf("pool request needs a tag and amount > 0, got %+v", p))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}
