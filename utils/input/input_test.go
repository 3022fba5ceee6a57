package input_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/config"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
)

func TestDefaultScenario(t *testing.T) {
	sc := input.Default()
	require.NoError(t, sc.Validate())
	require.Len(t, sc.Segments, 8)
	require.Len(t, sc.Spawners, entity.ApproachCount)

	east := sc.Spawners[entity.East]
	assert.InDelta(t, 110, east.Origin.X, 1e-9)
	assert.InDelta(t, 2, east.Origin.Y, 1e-9)
	assert.InDelta(t, math.Pi, east.Heading, 1e-9)

	for a, sp := range sc.Spawners {
		require.Len(t, sp.Paths, 3)
		exits := map[int32]bool{}
		for _, path := range sp.Paths {
			assert.Equal(t, int32(a), path[1].Point.Segment)
			assert.True(t, path[1].WaitForSignal)
			last := path[len(path)-1].Point.Segment
			assert.GreaterOrEqual(t, last, int32(entity.ApproachCount))
			assert.NotEqual(t, int32(entity.ApproachCount+a), last, "no u-turn")
			exits[last] = true
		}
		assert.Len(t, exits, 3)
	}
	// 北进口直行驶向南出口
	assert.Equal(t, "exit-S", sc.Segments[sc.Spawners[entity.North].Paths[0][3].Point.Segment].Name)
}

func TestLoadFile(t *testing.T) {
	data := `
name: tiny
segments:
  - {name: N, signal: true}
  - {name: E, signal: true}
  - {name: S, signal: true}
  - {name: W, signal: true, capacity: 4}
  - {name: out}
spawners:
  - name: N
    origin: {x: -2, y: 50}
    heading: -1.5707963
    frequency: 20
    paths:
      - - point: {id: 1, position: {x: -2, y: 9}, segment: 0}
          wait_for_signal: true
        - point: {id: 2, position: {x: -2, y: -50}, segment: 4}
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	sc, err := input.LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, sc.Validate())
	assert.Equal(t, 4, sc.Segments[3].Capacity)
	assert.Equal(t, 9., sc.Spawners[0].Paths[0][0].Point.Position.Y)

	got := input.Init(config.Input{Scenario: config.InputPath{File: path}})
	assert.Equal(t, "tiny", got.Name)
	assert.Equal(t, "default-crossroad", input.Init(config.Input{}).Name)
}

func TestValidateRejectsDanglingSegment(t *testing.T) {
	sc := input.Default()
	sc.Spawners[0].Paths[0][0].Point.Segment = 42
	assert.ErrorIs(t, sc.Validate(), entity.ErrConfiguration)

	sc = input.Default()
	sc.Segments[5].Signal = true
	assert.ErrorIs(t, sc.Validate(), entity.ErrConfiguration)
}
