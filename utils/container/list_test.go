package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossway-sim/utils/container"
)

func TestListInit(t *testing.T) {
	l := &container.List[int]{}
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Values())
}

func TestListOperation(t *testing.T) {
	l := &container.List[int]{}

	// ^, 1, ^
	n1 := container.NewListNode(1)
	l.PushBack(n1)
	// ^, 2, 1, ^
	n2 := container.NewListNode(2)
	l.PushFront(n2)
	// ^, 3, 2, 1, ^
	n3 := container.NewListNode(3)
	n2.InsertBefore(n3)
	// ^, 3, 2, 1, 4, ^
	n4 := container.NewListNode(4)
	n1.InsertAfter(n4)
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, []int{3, 2, 1, 4}, l.Values())

	// test: first last next prev
	n := l.First()
	assert.Equal(t, n3, n)
	n = n.Next()
	assert.Equal(t, n2, n)
	n = n.Next()
	assert.Equal(t, n1, n)
	assert.Equal(t, n, n.Next().Prev())
	assert.Equal(t, n, n.Prev().Next())
	assert.Equal(t, n4, l.Last())
	assert.Equal(t, l, n4.Parent())

	// test: move to back
	l.MoveToBack(n3)
	assert.Equal(t, []int{2, 1, 4, 3}, l.Values())
	assert.Equal(t, n2, l.First())
	assert.Equal(t, n3, l.Last())
	l.MoveToBack(n3)
	assert.Equal(t, []int{2, 1, 4, 3}, l.Values())

	// test: find
	assert.Equal(t, n4, l.Find(func(v int) bool { return v > 2 }))
	assert.Nil(t, l.Find(func(v int) bool { return v > 10 }))

	// test: remove
	l.Remove(n4)
	assert.Nil(t, n4.Parent())
	assert.Equal(t, []int{2, 1, 3}, l.Values())
	l.Remove(n2)
	assert.Equal(t, n1, l.First())
	assert.Equal(t, 2, l.Len())
	l.PushFront(n4)
	assert.Equal(t, []int{4, 1, 3}, l.Values())
}

func TestListPanicsOnForeignNode(t *testing.T) {
	a := &container.List[int]{}
	b := &container.List[int]{}
	n := container.NewListNode(1)
	a.PushBack(n)
	assert.Panics(t, func() { b.Remove(n) })
	assert.Panics(t, func() { b.PushBack(n) })
}
