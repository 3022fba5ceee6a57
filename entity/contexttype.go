package entity

import (
	"github.com/tsinghua-fib-lab/crossway-sim/clock"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	SegmentManager() ISegmentManager
	VehicleManager() IVehicleManager
	Junction() IJunction
}
