package input

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
)

// 内置场景：中心在原点的十字路口，靠右行驶，车道中心距道路中线2米
// 以北进口为模板，其余进口按逆时针旋转90°得到

const (
	exitOffset   = entity.ApproachCount // 出口路段下标 = 4 + 去往的方向
	spawnDist    = 110.
	approachDist = 40.
	stopLine     = 9.
	exitDist     = 100.
)

// 北进口的车辆从北向南行驶，三种去向对应的出口方向
const (
	straightTo = 2 // 直行去往南
	rightTo    = 3 // 右转去往西
	leftTo     = 1 // 左转去往东
)

// 各进口的生成频率（辆/分钟）
var defaultFrequency = [entity.ApproachCount]float64{12, 8, 12, 6}

// rotate 绕原点逆时针旋转k个90°
func rotate(p geometry.Point, k int) geometry.Point {
	for i := 0; i < k%4; i++ {
		p = geometry.Point{X: -p.Y, Y: p.X, Z: p.Z}
	}
	return p
}

func point(x, y float64, segment int, k int, id *int32) entity.RoadPoint {
	*id++
	return entity.RoadPoint{ID: *id, Position: rotate(geometry.Point{X: x, Y: y}, k), Segment: int32(segment)}
}

// Default 内置的十字路口场景
func Default() Scenario {
	sc := Scenario{Name: "default-crossroad"}
	for i := 0; i < entity.ApproachCount; i++ {
		sc.Segments = append(sc.Segments, Segment{Name: entity.ApproachNames[i], Signal: true})
	}
	for i := 0; i < entity.ApproachCount; i++ {
		sc.Segments = append(sc.Segments, Segment{Name: "exit-" + entity.ApproachNames[i]})
	}
	// 北、东、南、西进口依次是北进口逆时针旋转0、3、2、1次
	turns := [entity.ApproachCount]int{0, 3, 2, 1}
	var id int32
	for a := 0; a < entity.ApproachCount; a++ {
		k := turns[a]
		exit := func(offset int) int {
			// 旋转k次后，北进口的出口方向d变为(d - k) mod 4（按N,E,S,W顺序）
			return exitOffset + ((offset-k)%4+4)%4
		}
		approach := func(gated bool, x, y float64) entity.Waypoint {
			return entity.Waypoint{Point: point(x, y, a, k, &id), WaitForSignal: gated}
		}
		to := func(offset int, x, y float64) entity.Waypoint {
			return entity.Waypoint{Point: point(x, y, exit(offset), k, &id)}
		}
		head := []entity.Waypoint{approach(false, -2, approachDist), approach(true, -2, stopLine)}
		paths := []entity.Path{
			append(append(entity.Path{}, head...), to(straightTo, -2, -stopLine), to(straightTo, -2, -exitDist)),
			append(append(entity.Path{}, head...), to(rightTo, -4, 5), to(rightTo, -9, 2), to(rightTo, -exitDist, 2)),
			append(append(entity.Path{}, head...), to(leftTo, 1, -1), to(leftTo, stopLine, -2), to(leftTo, exitDist, -2)),
		}
		sc.Spawners = append(sc.Spawners, Spawner{
			Name:      entity.ApproachNames[a],
			Origin:    rotate(geometry.Point{X: -2, Y: spawnDist}, k),
			Heading:   -math.Pi/2 + float64(k)*math.Pi/2,
			Frequency: defaultFrequency[a],
			Paths:     paths,
		})
	}
	return sc
}
