package segment_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/crossway-sim/entity"
	"github.com/tsinghua-fib-lab/crossway-sim/entity/segment"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/input"
)

type fakeVehicle struct {
	id     int32
	idling bool
}

func (v *fakeVehicle) ID() int32                { return v.id }
func (v *fakeVehicle) IsIdling() bool           { return v.idling }
func (v *fakeVehicle) Alive() bool              { return true }
func (v *fakeVehicle) Position() geometry.Point { return geometry.Point{} }

func newManager(t *testing.T) *segment.Manager {
	m := segment.NewManager()
	m.Init([]input.Segment{
		{Name: "N", Signal: true, Capacity: 8},
		{Name: "E", Signal: true},
		{Name: "S", Signal: true},
		{Name: "W", Signal: true},
		{Name: "exit"},
	})
	require.Len(t, m.Approaches(), entity.ApproachCount)
	return m
}

func TestMembershipAppliesNextPrepare(t *testing.T) {
	m := newManager(t)
	s := m.Get(entity.North)
	a := entity.NewSegmentMember(&fakeVehicle{id: 1, idling: true})
	b := entity.NewSegmentMember(&fakeVehicle{id: 2})
	s.AddVehicle(a)
	s.AddVehicle(b)
	assert.Empty(t, s.Vehicles(), "reads see the previous tick")
	assert.Equal(t, 0, s.IdlingCount())

	m.Prepare(false)
	assert.Len(t, s.Vehicles(), 2)
	assert.Equal(t, 1, s.IdlingCount())
	assert.Equal(t, 2, s.TotalVehicleCount())

	s.RemoveVehicle(a)
	assert.Equal(t, 1, s.IdlingCount())
	m.Prepare(false)
	assert.Equal(t, 0, s.IdlingCount())
	assert.Len(t, s.Vehicles(), 1)
}

func TestPriorityOnlyUnderAdaptive(t *testing.T) {
	m := newManager(t)
	s := m.Get(entity.North)
	for i := 0; i < 4; i++ {
		s.AddVehicle(entity.NewSegmentMember(&fakeVehicle{id: int32(i), idling: true}))
	}
	m.Update(50)
	m.Prepare(false)
	assert.Equal(t, 4, s.IdlingCount())
	assert.Equal(t, 0., s.Priority())

	m.Prepare(true)
	assert.Equal(t, 200., s.Priority())
	assert.Equal(t, 8, s.Capacity())
	assert.Equal(t, segment.DefaultCapacity, m.Get(entity.East).Capacity())
}

func TestExitSegmentAlwaysOpen(t *testing.T) {
	m := newManager(t)
	exit := m.Get(4)
	assert.Nil(t, exit.Light())
	assert.True(t, exit.SignalOpen())
	assert.False(t, m.Get(entity.West).SignalOpen())

	_, err := m.GetOrError(5)
	assert.Error(t, err)
	assert.Panics(t, func() { m.Get(-1) })
}

func TestValidate(t *testing.T) {
	err := segment.Validate([]input.Segment{{Name: "N", Signal: true}})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
	err = segment.Validate([]input.Segment{
		{Name: "N", Signal: true}, {Name: "x"}, {Name: "S", Signal: true}, {Name: "W", Signal: true},
	})
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}
